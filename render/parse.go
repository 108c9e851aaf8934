package render

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

var cullModes = map[string]gputypes.CullMode{
	"":      gputypes.CullModeNone,
	"none":  gputypes.CullModeNone,
	"front": gputypes.CullModeFront,
	"back":  gputypes.CullModeBack,
}

// ParseCullMode parses "none", "front" or "back". The empty string is "none".
func ParseCullMode(s string) (gputypes.CullMode, error) {
	m, ok := cullModes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return gputypes.CullModeNone, fmt.Errorf("render: unknown cull mode %q", s)
	}
	return m, nil
}

var blendFactors = map[string]gputypes.BlendFactor{
	"zero":                gputypes.BlendFactorZero,
	"one":                 gputypes.BlendFactorOne,
	"src":                 gputypes.BlendFactorSrc,
	"one-minus-src":       gputypes.BlendFactorOneMinusSrc,
	"src-alpha":           gputypes.BlendFactorSrcAlpha,
	"one-minus-src-alpha": gputypes.BlendFactorOneMinusSrcAlpha,
	"dst":                 gputypes.BlendFactorDst,
	"one-minus-dst":       gputypes.BlendFactorOneMinusDst,
	"dst-alpha":           gputypes.BlendFactorDstAlpha,
	"one-minus-dst-alpha": gputypes.BlendFactorOneMinusDstAlpha,
}

// ParseBlendFactor parses a kebab-case blend factor name such as "src-alpha".
func ParseBlendFactor(s string) (gputypes.BlendFactor, error) {
	f, ok := blendFactors[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return gputypes.BlendFactorZero, fmt.Errorf("render: unknown blend factor %q", s)
	}
	return f, nil
}

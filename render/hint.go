package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
)

// HintKind identifies a renderer feature option. A hint set holds at most one
// hint per kind.
type HintKind uint8

const (
	HintCallChecking HintKind = iota
	HintDepthTest
	HintCullFace
	HintWireframe
	HintMSAA
	HintSRGB
	HintBlending
)

func (k HintKind) String() string {
	switch k {
	case HintCallChecking:
		return "call-checking"
	case HintDepthTest:
		return "depth-test"
	case HintCullFace:
		return "cull-face"
	case HintWireframe:
		return "wireframe"
	case HintMSAA:
		return "msaa"
	case HintSRGB:
		return "srgb"
	case HintBlending:
		return "blending"
	default:
		return fmt.Sprintf("HintKind(%d)", uint8(k))
	}
}

// CallCheckMode selects how native API calls are checked for errors.
type CallCheckMode uint8

const (
	// CallCheckNone performs no checking.
	CallCheckNone CallCheckMode = iota
	// CallCheckAsync installs a driver debug callback delivered asynchronously.
	CallCheckAsync
	// CallCheckSync queries the error state after each checked call.
	CallCheckSync
	// CallCheckBoth installs a synchronous debug callback and also queries
	// the error state.
	CallCheckBoth
)

func (m CallCheckMode) String() string {
	switch m {
	case CallCheckNone:
		return "none"
	case CallCheckAsync:
		return "async"
	case CallCheckSync:
		return "sync"
	case CallCheckBoth:
		return "both"
	default:
		return fmt.Sprintf("CallCheckMode(%d)", uint8(m))
	}
}

// ParseCallCheckMode parses "none", "async", "sync" or "both".
func ParseCallCheckMode(s string) (CallCheckMode, error) {
	for m := CallCheckNone; m <= CallCheckBoth; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return CallCheckNone, fmt.Errorf("render: unknown call checking mode %q", s)
}

// Synchronous reports whether errors are queried after each call.
func (m CallCheckMode) Synchronous() bool { return m == CallCheckSync || m == CallCheckBoth }

// Debug reports whether the driver debug output is used.
func (m CallCheckMode) Debug() bool { return m == CallCheckAsync || m == CallCheckBoth }

// BlendFunc is a source/destination blend factor pair.
type BlendFunc struct {
	Src gputypes.BlendFactor
	Dst gputypes.BlendFactor
}

// AlphaBlend is the usual non-premultiplied alpha blend function.
var AlphaBlend = BlendFunc{Src: gputypes.BlendFactorSrcAlpha, Dst: gputypes.BlendFactorOneMinusSrcAlpha}

// Hint is one renderer feature option. Build hints with the constructors
// below; the zero Hint is CallChecking(CallCheckNone).
type Hint struct {
	Kind HintKind

	// Enabled is the on/off switch for depth test, wireframe, sRGB and blending.
	Enabled bool

	// CallCheck is the mode of a HintCallChecking hint.
	CallCheck CallCheckMode

	// Cull is the culled side of a HintCullFace hint. CullModeNone disables culling.
	Cull gputypes.CullMode

	// Samples is the sample count of a HintMSAA hint. Zero disables multisampling.
	Samples int

	// Blend is the blend function of a HintBlending hint, used when HasBlendFunc is set.
	Blend        BlendFunc
	HasBlendFunc bool
}

// CallChecking returns a call-checking hint.
func CallChecking(mode CallCheckMode) Hint {
	return Hint{Kind: HintCallChecking, CallCheck: mode, Enabled: mode != CallCheckNone}
}

// DepthTest returns a depth-test hint.
func DepthTest(on bool) Hint { return Hint{Kind: HintDepthTest, Enabled: on} }

// CullFace returns a face-culling hint. CullModeNone disables culling.
func CullFace(mode gputypes.CullMode) Hint {
	return Hint{Kind: HintCullFace, Cull: mode, Enabled: mode != gputypes.CullModeNone}
}

// Wireframe returns a wireframe hint.
func Wireframe(on bool) Hint { return Hint{Kind: HintWireframe, Enabled: on} }

// MSAA returns a multisampling hint. A count of zero disables it.
func MSAA(samples int) Hint {
	if samples < 0 {
		samples = 0
	}
	return Hint{Kind: HintMSAA, Samples: samples, Enabled: samples > 0}
}

// SRGB returns an sRGB framebuffer hint.
func SRGB(on bool) Hint { return Hint{Kind: HintSRGB, Enabled: on} }

// Blending returns a blending hint without a blend function.
func Blending(on bool) Hint { return Hint{Kind: HintBlending, Enabled: on} }

// BlendingWith returns an enabled blending hint with the given blend function.
func BlendingWith(fn BlendFunc) Hint {
	return Hint{Kind: HintBlending, Enabled: true, Blend: fn, HasBlendFunc: true}
}

func (h Hint) String() string {
	switch h.Kind {
	case HintCallChecking:
		return fmt.Sprintf("%s(%s)", h.Kind, h.CallCheck)
	case HintCullFace:
		return fmt.Sprintf("%s(%v)", h.Kind, h.Cull)
	case HintMSAA:
		return fmt.Sprintf("%s(%d)", h.Kind, h.Samples)
	case HintBlending:
		if h.HasBlendFunc {
			return fmt.Sprintf("%s(%t, %v, %v)", h.Kind, h.Enabled, h.Blend.Src, h.Blend.Dst)
		}
	}
	return fmt.Sprintf("%s(%t)", h.Kind, h.Enabled)
}

// Hints is a set of hints keyed by kind. Setting a kind twice overwrites the
// earlier hint. The zero value is an empty set ready to use.
type Hints struct {
	m map[HintKind]Hint
}

// Set inserts or overwrites the hint of h.Kind.
func (s *Hints) Set(h Hint) {
	if s.m == nil {
		s.m = make(map[HintKind]Hint)
	}
	s.m[h.Kind] = h
}

// Get returns the hint of the given kind.
func (s *Hints) Get(kind HintKind) (Hint, bool) {
	h, ok := s.m[kind]
	return h, ok
}

// Delete removes the hint of the given kind.
func (s *Hints) Delete(kind HintKind) {
	delete(s.m, kind)
}

// Len returns the number of hints in the set.
func (s *Hints) Len() int { return len(s.m) }

// All returns the hints ordered by kind. Call checking comes first so it
// covers the calls made while applying the rest.
func (s *Hints) All() []Hint {
	out := make([]Hint, 0, len(s.m))
	for _, h := range s.m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

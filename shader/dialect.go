package shader

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect is the shading language variant of a stage. It selects the
// compilation path a backend takes.
type Dialect uint8

const (
	// Glsl is plain GLSL text compiled by the driver.
	Glsl Dialect = iota
	// GlslSpirV is GLSL text written to be cross-compiled to SPIR-V.
	GlslSpirV
	// SpirV is a precompiled SPIR-V module.
	SpirV
	// Binary is a raw backend-native binary.
	Binary
	// Wgsl is WebGPU shading language text, translated with naga.
	Wgsl
)

func (d Dialect) String() string {
	switch d {
	case Glsl:
		return "GLSL"
	case GlslSpirV:
		return "GLSL (SPIR-V)"
	case SpirV:
		return "SPIR-V"
	case Binary:
		return "binary"
	case Wgsl:
		return "WGSL"
	default:
		return fmt.Sprintf("Dialect(%d)", uint8(d))
	}
}

// MinSpirVVersion is the lowest #version eligible for SPIR-V cross-compilation.
// Sources below it are treated as plain GLSL even when they carry portability
// markers.
const MinSpirVVersion = 410

// SpirVMagic is the first word of every SPIR-V module.
const SpirVMagic uint32 = 0x07230203

var (
	boundUniform = regexp.MustCompile(`layout\s*\([^)]*\bbinding\s*=\s*\d+[^)]*\)\s*uniform\b`)
	wgslEntry    = regexp.MustCompile(`@(vertex|fragment|compute)\b`)
)

// ParseVersion returns the number following the first "#version" directive.
func ParseVersion(src string) (int, bool) {
	_, rest, ok := strings.Cut(src, "#version")
	if !ok {
		return 0, false
	}
	rest = strings.TrimLeft(rest, " \t")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasPortabilityMarker reports whether src was written for SPIR-V: it
// references GL_SPIRV or Vulkan, or declares a uniform with an explicit binding.
func hasPortabilityMarker(src string) bool {
	return strings.Contains(src, "GL_SPIRV") ||
		strings.Contains(src, "Vulkan") ||
		boundUniform.MatchString(src)
}

// IsWGSL reports whether src looks like WGSL: no #version directive and at
// least one entry point attribute.
func IsWGSL(src string) bool {
	return !strings.Contains(src, "#version") && wgslEntry.MatchString(src)
}

// DetectDialect classifies shader text.
func DetectDialect(src string) Dialect {
	if IsWGSL(src) {
		return Wgsl
	}
	v, ok := ParseVersion(src)
	if ok && v >= MinSpirVVersion && hasPortabilityMarker(src) {
		return GlslSpirV
	}
	return Glsl
}

// DetectBinary classifies a binary by its header.
func DetectBinary(header []byte) Dialect {
	if len(header) >= 4 && binary.LittleEndian.Uint32(header) == SpirVMagic {
		return SpirV
	}
	return Binary
}

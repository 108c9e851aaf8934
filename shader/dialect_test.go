package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Dialect
	}{
		{"plain 330", vertexSource, Glsl},
		{"bound uniform 430", portableSource, GlslSpirV},
		{"vulkan macro 450", "#version 450\n#ifdef Vulkan\n#endif\nvoid main() {}", GlslSpirV},
		{"gl_spirv 460", "#version 460\n#if GL_SPIRV\n#endif\nvoid main() {}", GlslSpirV},
		{"marker below threshold", "#version 400\n#ifdef Vulkan\n#endif\nvoid main() {}", Glsl},
		{"410 without marker", "#version 410\nuniform mat4 m;\nvoid main() {}", Glsl},
		{"410 at threshold", "#version 410\nlayout(std140, binding = 2) uniform Block { float x; };\nvoid main() {}", GlslSpirV},
		{"wgsl", "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }", Wgsl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDialect(tt.src))
		})
	}
}

func TestDetectBinary(t *testing.T) {
	assert.Equal(t, SpirV, DetectBinary(spirvModule()))
	assert.Equal(t, Binary, DetectBinary([]byte{0x03, 0x02, 0x23}))
	assert.Equal(t, Binary, DetectBinary([]byte("GLSL")))
}

func TestParseVersion(t *testing.T) {
	v, ok := ParseVersion("// header\n#version   450 core\n")
	assert.True(t, ok)
	assert.Equal(t, 450, v)

	_, ok = ParseVersion("#version core")
	assert.False(t, ok)
	_, ok = ParseVersion("void main() {}")
	assert.False(t, ok)
}

// Package glbind implements opengl.GL with go-gl and registers the OpenGL
// backend. Import it for its side effect:
//
//	import _ "github.com/wave-engine/wave/backend/opengl/glbind"
package glbind

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/wave-engine/wave/backend/opengl"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
)

func init() {
	renderer.Register(render.OpenGL, func() renderer.Context {
		return opengl.NewContext(Functions{})
	})
}

// Functions calls the go-gl function table of the current context.
type Functions struct{}

var _ opengl.GL = Functions{}

func (Functions) Init(proc func(name string) unsafe.Pointer) error {
	return gl.InitWithProcAddrFunc(proc)
}

func (Functions) GetString(name uint32) string {
	return gl.GoStr(gl.GetString(name))
}

func (Functions) GetStringi(name, index uint32) string {
	return gl.GoStr(gl.GetStringi(name, index))
}

func (Functions) GetIntegerv(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func (Functions) GetIntegers(pname uint32, n int) []int32 {
	if n <= 0 {
		return nil
	}
	v := make([]int32, n)
	gl.GetIntegerv(pname, &v[0])
	return v
}

func (Functions) GetError() uint32 { return gl.GetError() }

func (Functions) DebugMessageCallback(fn opengl.DebugFunc) {
	gl.DebugMessageCallback(func(source, kind, id, severity uint32, length int32, message string, _ unsafe.Pointer) {
		fn(source, kind, id, severity, message)
	}, nil)
}

func (Functions) Enable(c uint32)               { gl.Enable(c) }
func (Functions) Disable(c uint32)              { gl.Disable(c) }
func (Functions) DepthFunc(fn uint32)           { gl.DepthFunc(fn) }
func (Functions) CullFace(mode uint32)          { gl.CullFace(mode) }
func (Functions) PolygonMode(face, mode uint32) { gl.PolygonMode(face, mode) }
func (Functions) BlendFunc(src, dst uint32)     { gl.BlendFunc(src, dst) }
func (Functions) Viewport(x, y, w, h int32)     { gl.Viewport(x, y, w, h) }
func (Functions) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Functions) Clear(mask uint32)             { gl.Clear(mask) }

func (Functions) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

func (Functions) ShaderSource(shader uint32, src string) {
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csrc, nil)
}

func (Functions) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Functions) ShaderBinary(shaders []uint32, format uint32, data []byte) {
	if len(shaders) == 0 || len(data) == 0 {
		return
	}
	gl.ShaderBinary(int32(len(shaders)), &shaders[0], format, gl.Ptr(data), int32(len(data)))
}

func (Functions) SpecializeShader(shader uint32, entry string) {
	gl.SpecializeShader(shader, gl.Str(entry+"\x00"), 0, nil, nil)
}

func (Functions) GetShaderiv(shader, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (Functions) GetShaderInfoLog(shader uint32) string {
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(shader, n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (Functions) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Functions) CreateProgram() uint32               { return gl.CreateProgram() }
func (Functions) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (Functions) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }
func (Functions) LinkProgram(program uint32)          { gl.LinkProgram(program) }
func (Functions) ValidateProgram(program uint32)      { gl.ValidateProgram(program) }

func (Functions) GetProgramiv(program, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (Functions) GetProgramInfoLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(program, n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (Functions) UseProgram(program uint32)    { gl.UseProgram(program) }
func (Functions) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Functions) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Functions) Uniform1ui(loc int32, v uint32) { gl.Uniform1ui(loc, v) }
func (Functions) Uniform1i(loc int32, v int32)   { gl.Uniform1i(loc, v) }
func (Functions) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }
func (Functions) Uniform1d(loc int32, v float64) { gl.Uniform1d(loc, v) }

func (Functions) UniformMatrix4fv(loc int32, m *[16]float32) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (Functions) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (Functions) UniformBlockBinding(program, index, binding uint32) {
	gl.UniformBlockBinding(program, index, binding)
}

func (Functions) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Functions) BindVertexArray(vao uint32)   { gl.BindVertexArray(vao) }
func (Functions) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (Functions) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (Functions) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (Functions) BufferData(target uint32, data []byte, usage uint32) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(target, len(data), ptr, usage)
}

func (Functions) BufferSubData(target uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target, offset, len(data), gl.Ptr(data))
}

func (Functions) BindBufferBase(target, index, buffer uint32) { gl.BindBufferBase(target, index, buffer) }
func (Functions) DeleteBuffer(buffer uint32)                  { gl.DeleteBuffers(1, &buffer) }
func (Functions) EnableVertexAttribArray(index uint32)        { gl.EnableVertexAttribArray(index) }

func (Functions) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (Functions) VertexAttribIPointer(index uint32, size int32, xtype uint32, stride int32, offset uintptr) {
	gl.VertexAttribIPointerWithOffset(index, size, xtype, stride, offset)
}

func (Functions) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElementsWithOffset(mode, count, xtype, offset)
}

func (Functions) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (Functions) ActiveTexture(unit uint32)                       { gl.ActiveTexture(unit) }
func (Functions) BindTexture(target, texture uint32)              { gl.BindTexture(target, texture) }
func (Functions) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }
func (Functions) GenerateMipmap(target uint32)                    { gl.GenerateMipmap(target) }
func (Functions) DeleteTexture(texture uint32)                    { gl.DeleteTextures(1, &texture) }

func (Functions) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr)
}

package opengl

import (
	"errors"
	"slices"
	"unsafe"

	"github.com/wave-engine/wave/render"
)

// fakeGL records calls made by the backend.
type fakeGL struct {
	initErr    error
	strings    map[uint32]string
	ints       map[uint32]int32
	extensions []string
	formats    []int32
	errs       []uint32

	next     uint32
	shaders  map[uint32]*fakeShader
	programs map[uint32]*fakeProgram
	buffers  map[uint32][]byte
	bound    map[uint32]uint32
	vaos     map[uint32]bool
	textures map[uint32]bool

	failCompile bool
	failLink    bool
	failCreate  bool
	locations   map[string]int32
	lookups     map[string]int
	uniforms    map[int32]any
	blocks      map[uint32]uint32

	enabled   map[uint32]bool
	depthFunc uint32
	cullFace  uint32
	polygon   uint32
	blend     [2]uint32
	viewport  [4]int32
	clears    int
	draws     int
	used      uint32
	debugFn   DebugFunc
	mipmaps   int
	texImages [][]byte
	binaries  []uint32
}

type fakeShader struct {
	kind        uint32
	src         string
	compiled    bool
	specialized string
}

type fakeProgram struct {
	attached []uint32
	linked   bool
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		strings: map[uint32]string{
			VENDOR:                   "Wave",
			RENDERER:                 "Fake Renderer",
			VERSION:                  "4.6.0 Fake",
			SHADING_LANGUAGE_VERSION: "4.60 Fake",
		},
		ints: map[uint32]int32{
			MAX_SAMPLES:               8,
			NUM_SHADER_BINARY_FORMATS: 1,
		},
		formats:   []int32{SHADER_BINARY_FORMAT_SPIR_V},
		shaders:   make(map[uint32]*fakeShader),
		programs:  make(map[uint32]*fakeProgram),
		buffers:   make(map[uint32][]byte),
		bound:     make(map[uint32]uint32),
		vaos:      make(map[uint32]bool),
		textures:  make(map[uint32]bool),
		locations: map[string]int32{ModelUniform: 0, "u_time": 1},
		lookups:   make(map[string]int),
		uniforms:  make(map[int32]any),
		blocks:    make(map[uint32]uint32),
		enabled:   make(map[uint32]bool),
	}
}

func (f *fakeGL) name() uint32 {
	f.next++
	return f.next
}

func (f *fakeGL) Init(proc func(name string) unsafe.Pointer) error { return f.initErr }
func (f *fakeGL) GetString(name uint32) string                     { return f.strings[name] }
func (f *fakeGL) GetStringi(name, index uint32) string             { return f.extensions[index] }

func (f *fakeGL) GetIntegerv(pname uint32) int32 {
	if pname == NUM_EXTENSIONS {
		return int32(len(f.extensions))
	}
	return f.ints[pname]
}

func (f *fakeGL) GetIntegers(pname uint32, n int) []int32 {
	return slices.Clone(f.formats[:min(n, len(f.formats))])
}

func (f *fakeGL) GetError() uint32 {
	if len(f.errs) == 0 {
		return NO_ERROR
	}
	code := f.errs[0]
	f.errs = f.errs[1:]
	return code
}

func (f *fakeGL) DebugMessageCallback(fn DebugFunc) { f.debugFn = fn }
func (f *fakeGL) Enable(c uint32)                   { f.enabled[c] = true }
func (f *fakeGL) Disable(c uint32)                  { f.enabled[c] = false }
func (f *fakeGL) DepthFunc(fn uint32)               { f.depthFunc = fn }
func (f *fakeGL) CullFace(mode uint32)              { f.cullFace = mode }
func (f *fakeGL) PolygonMode(face, mode uint32)     { f.polygon = mode }
func (f *fakeGL) BlendFunc(src, dst uint32)         { f.blend = [2]uint32{src, dst} }
func (f *fakeGL) Viewport(x, y, w, h int32)         { f.viewport = [4]int32{x, y, w, h} }
func (f *fakeGL) ClearColor(r, g, b, a float32)     {}
func (f *fakeGL) Clear(mask uint32)                 { f.clears++ }

func (f *fakeGL) CreateShader(kind uint32) uint32 {
	if f.failCreate {
		return 0
	}
	id := f.name()
	f.shaders[id] = &fakeShader{kind: kind}
	return id
}

func (f *fakeGL) ShaderSource(shader uint32, src string) { f.shaders[shader].src = src }

func (f *fakeGL) CompileShader(shader uint32) {
	f.shaders[shader].compiled = !f.failCompile
}

func (f *fakeGL) ShaderBinary(shaders []uint32, format uint32, data []byte) {
	f.binaries = append(f.binaries, format)
	if format != SHADER_BINARY_FORMAT_SPIR_V {
		for _, s := range shaders {
			f.shaders[s].compiled = true
		}
	}
}

func (f *fakeGL) SpecializeShader(shader uint32, entry string) {
	f.shaders[shader].specialized = entry
	f.shaders[shader].compiled = true
}

func (f *fakeGL) GetShaderiv(shader, pname uint32) int32 {
	if pname == COMPILE_STATUS && f.shaders[shader].compiled {
		return 1
	}
	return 0
}

func (f *fakeGL) GetShaderInfoLog(shader uint32) string {
	return "0:3(1): error: syntax error, unexpected '}'"
}

func (f *fakeGL) DeleteShader(shader uint32) { delete(f.shaders, shader) }

func (f *fakeGL) CreateProgram() uint32 {
	id := f.name()
	f.programs[id] = &fakeProgram{}
	return id
}

func (f *fakeGL) AttachShader(program, shader uint32) {
	p := f.programs[program]
	p.attached = append(p.attached, shader)
}

func (f *fakeGL) DetachShader(program, shader uint32) {
	p := f.programs[program]
	p.attached = slices.DeleteFunc(p.attached, func(s uint32) bool { return s == shader })
}

func (f *fakeGL) LinkProgram(program uint32) { f.programs[program].linked = !f.failLink }

func (f *fakeGL) ValidateProgram(program uint32) {}

func (f *fakeGL) GetProgramiv(program, pname uint32) int32 {
	if f.programs[program].linked {
		return 1
	}
	return 0
}

func (f *fakeGL) GetProgramInfoLog(program uint32) string {
	return "error: vertex output not read by fragment shader"
}

func (f *fakeGL) UseProgram(program uint32)    { f.used = program }
func (f *fakeGL) DeleteProgram(program uint32) { delete(f.programs, program) }

func (f *fakeGL) GetUniformLocation(program uint32, name string) int32 {
	f.lookups[name]++
	if loc, ok := f.locations[name]; ok {
		return loc
	}
	return -1
}

func (f *fakeGL) Uniform1ui(loc int32, v uint32) { f.uniforms[loc] = v }
func (f *fakeGL) Uniform1i(loc int32, v int32)   { f.uniforms[loc] = v }
func (f *fakeGL) Uniform1f(loc int32, v float32) { f.uniforms[loc] = v }
func (f *fakeGL) Uniform1d(loc int32, v float64) { f.uniforms[loc] = v }
func (f *fakeGL) UniformMatrix4fv(loc int32, m *[16]float32) {
	f.uniforms[loc] = *m
}

func (f *fakeGL) GetUniformBlockIndex(program uint32, name string) uint32 {
	if name == CameraBlock {
		return 0
	}
	return INVALID_INDEX
}

func (f *fakeGL) UniformBlockBinding(program, index, binding uint32) { f.blocks[program] = binding }

func (f *fakeGL) GenVertexArray() uint32 {
	id := f.name()
	f.vaos[id] = true
	return id
}

func (f *fakeGL) BindVertexArray(vao uint32)   {}
func (f *fakeGL) DeleteVertexArray(vao uint32) { delete(f.vaos, vao) }

func (f *fakeGL) GenBuffer() uint32 {
	id := f.name()
	f.buffers[id] = nil
	return id
}

func (f *fakeGL) BindBuffer(target, buffer uint32) { f.bound[target] = buffer }

func (f *fakeGL) BufferData(target uint32, data []byte, usage uint32) {
	f.buffers[f.bound[target]] = slices.Clone(data)
}

func (f *fakeGL) BufferSubData(target uint32, offset int, data []byte) {
	copy(f.buffers[f.bound[target]][offset:], data)
}

func (f *fakeGL) BindBufferBase(target, index, buffer uint32) {}
func (f *fakeGL) DeleteBuffer(buffer uint32)                  { delete(f.buffers, buffer) }
func (f *fakeGL) EnableVertexAttribArray(index uint32)        {}

func (f *fakeGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
}

func (f *fakeGL) VertexAttribIPointer(index uint32, size int32, xtype uint32, stride int32, offset uintptr) {
}

func (f *fakeGL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) { f.draws++ }

func (f *fakeGL) GenTexture() uint32 {
	id := f.name()
	f.textures[id] = true
	return id
}

func (f *fakeGL) ActiveTexture(unit uint32)                   {}
func (f *fakeGL) BindTexture(target, texture uint32)          {}
func (f *fakeGL) TexParameteri(target, pname uint32, p int32) {}
func (f *fakeGL) GenerateMipmap(target uint32)                { f.mipmaps++ }
func (f *fakeGL) DeleteTexture(texture uint32)                { delete(f.textures, texture) }

func (f *fakeGL) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	f.texImages = append(f.texImages, slices.Clone(pixels))
}

type surface struct{ w, h int }

func (s surface) FramebufferSize() (int, int)            { return s.w, s.h }
func (s surface) Show()                                  {}
func (s surface) Hide()                                  {}
func (s surface) ProcAddress(name string) unsafe.Pointer { return nil }

var _ render.Surface = surface{}

var errNoDriver = errors.New("no driver")

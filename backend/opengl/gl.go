package opengl

import "unsafe"

// DebugFunc receives driver debug messages.
type DebugFunc func(source, kind, id, severity uint32, message string)

// GL is the subset of OpenGL 4.6 core used by the backend.
type GL interface {
	// Init loads function pointers through proc.
	Init(proc func(name string) unsafe.Pointer) error

	GetString(name uint32) string
	GetStringi(name, index uint32) string
	GetIntegerv(pname uint32) int32
	GetIntegers(pname uint32, n int) []int32
	GetError() uint32
	DebugMessageCallback(fn DebugFunc)

	Enable(capability uint32)
	Disable(capability uint32)
	DepthFunc(fn uint32)
	CullFace(mode uint32)
	PolygonMode(face, mode uint32)
	BlendFunc(src, dst uint32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)

	CreateShader(kind uint32) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	ShaderBinary(shaders []uint32, format uint32, data []byte)
	SpecializeShader(shader uint32, entry string)
	GetShaderiv(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ValidateProgram(program uint32)
	GetProgramiv(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	Uniform1ui(location int32, v uint32)
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform1d(location int32, v float64)
	UniformMatrix4fv(location int32, m *[16]float32)
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, index, binding uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []byte, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)
	BindBufferBase(target, index, buffer uint32)
	DeleteBuffer(buffer uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	VertexAttribIPointer(index uint32, size int32, xtype uint32, stride int32, offset uintptr)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	GenerateMipmap(target uint32)
	DeleteTexture(texture uint32)
}

// OpenGL enumerants used by the backend.
const (
	VENDOR                   = 0x1F00
	RENDERER                 = 0x1F01
	VERSION                  = 0x1F02
	EXTENSIONS               = 0x1F03
	NUM_EXTENSIONS           = 0x821D
	SHADING_LANGUAGE_VERSION = 0x8B8C

	NO_ERROR                      = 0
	INVALID_ENUM                  = 0x0500
	INVALID_VALUE                 = 0x0501
	INVALID_OPERATION             = 0x0502
	STACK_OVERFLOW                = 0x0503
	STACK_UNDERFLOW               = 0x0504
	OUT_OF_MEMORY                 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION = 0x0506

	DEBUG_OUTPUT                = 0x92E0
	DEBUG_OUTPUT_SYNCHRONOUS    = 0x8242
	DEBUG_SEVERITY_HIGH         = 0x9146
	DEBUG_SEVERITY_MEDIUM       = 0x9147
	DEBUG_SEVERITY_LOW          = 0x9148
	DEBUG_SEVERITY_NOTIFICATION = 0x826B

	DEPTH_TEST       = 0x0B71
	LESS             = 0x0201
	CULL_FACE        = 0x0B44
	FRONT            = 0x0404
	BACK             = 0x0405
	FRONT_AND_BACK   = 0x0408
	LINE             = 0x1B01
	FILL             = 0x1B02
	MULTISAMPLE      = 0x809D
	MAX_SAMPLES      = 0x8D57
	FRAMEBUFFER_SRGB = 0x8DB9
	BLEND            = 0x0BE2

	ZERO                     = 0
	ONE                      = 1
	SRC_COLOR                = 0x0300
	ONE_MINUS_SRC_COLOR      = 0x0301
	SRC_ALPHA                = 0x0302
	ONE_MINUS_SRC_ALPHA      = 0x0303
	DST_ALPHA                = 0x0304
	ONE_MINUS_DST_ALPHA      = 0x0305
	DST_COLOR                = 0x0306
	ONE_MINUS_DST_COLOR      = 0x0307
	SRC_ALPHA_SATURATE       = 0x0308
	CONSTANT_COLOR           = 0x8001
	ONE_MINUS_CONSTANT_COLOR = 0x8002

	COLOR_BUFFER_BIT = 0x4000
	DEPTH_BUFFER_BIT = 0x0100

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30
	GEOMETRY_SHADER = 0x8DD9
	COMPUTE_SHADER  = 0x91B9

	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	VALIDATE_STATUS = 0x8B83

	NUM_SHADER_BINARY_FORMATS   = 0x8DF9
	SHADER_BINARY_FORMATS       = 0x8DF8
	SHADER_BINARY_FORMAT_SPIR_V = 0x9551

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	UNIFORM_BUFFER       = 0x8A11
	STATIC_DRAW          = 0x88E4
	DYNAMIC_DRAW         = 0x88E8
	INVALID_INDEX        = 0xFFFFFFFF

	FLOAT         = 0x1406
	UNSIGNED_INT  = 0x1405
	UNSIGNED_BYTE = 0x1401
	TRIANGLES     = 0x0004

	TEXTURE_2D           = 0x0DE1
	TEXTURE0             = 0x84C0
	RGBA                 = 0x1908
	RGBA8                = 0x8058
	SRGB8_ALPHA8         = 0x8C43
	TEXTURE_MIN_FILTER   = 0x2801
	TEXTURE_MAG_FILTER   = 0x2800
	TEXTURE_WRAP_S       = 0x2802
	TEXTURE_WRAP_T       = 0x2803
	LINEAR               = 0x2601
	LINEAR_MIPMAP_LINEAR = 0x2703
	REPEAT               = 0x2901
)

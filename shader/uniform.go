package shader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformKind tags the value held by a Uniform.
type UniformKind uint8

const (
	// UniformInvalid is the kind of the zero Uniform. Uploading it fails with
	// ErrUnsupportedUniformType.
	UniformInvalid UniformKind = iota
	UniformUint
	UniformInt
	UniformFloat
	UniformDouble
	UniformMat4
)

func (k UniformKind) String() string {
	switch k {
	case UniformUint:
		return "uint"
	case UniformInt:
		return "int"
	case UniformFloat:
		return "float"
	case UniformDouble:
		return "double"
	case UniformMat4:
		return "mat4"
	default:
		return "invalid"
	}
}

// Size returns the byte size of the value in a std430 block.
func (k UniformKind) Size() int {
	switch k {
	case UniformUint, UniformInt, UniformFloat:
		return 4
	case UniformDouble:
		return 8
	case UniformMat4:
		return 64
	default:
		return 0
	}
}

// Align returns the std430 base alignment of the value.
func (k UniformKind) Align() int {
	switch k {
	case UniformMat4:
		return 16
	default:
		return k.Size()
	}
}

// Uniform is a closed tagged union of the values a program accepts.
// Build one with Uint, Int, Float, Double or Mat4.
type Uniform struct {
	kind UniformKind
	bits uint64
	mat  mgl32.Mat4
}

// Uint returns an unsigned 32-bit uniform.
func Uint(v uint32) Uniform { return Uniform{kind: UniformUint, bits: uint64(v)} }

// Int returns a signed 32-bit uniform.
func Int(v int32) Uniform { return Uniform{kind: UniformInt, bits: uint64(uint32(v))} }

// Float returns a 32-bit float uniform.
func Float(v float32) Uniform {
	return Uniform{kind: UniformFloat, bits: uint64(math.Float32bits(v))}
}

// Double returns a 64-bit float uniform.
func Double(v float64) Uniform {
	return Uniform{kind: UniformDouble, bits: math.Float64bits(v)}
}

// Mat4 returns a 4x4 matrix uniform (column-major).
func Mat4(m mgl32.Mat4) Uniform { return Uniform{kind: UniformMat4, mat: m} }

// Kind returns the tag.
func (u Uniform) Kind() UniformKind { return u.kind }

// Uint returns the value of a UniformUint.
func (u Uniform) Uint() uint32 { return uint32(u.bits) }

// Int returns the value of a UniformInt.
func (u Uniform) Int() int32 { return int32(uint32(u.bits)) }

// Float returns the value of a UniformFloat.
func (u Uniform) Float() float32 { return math.Float32frombits(uint32(u.bits)) }

// Double returns the value of a UniformDouble.
func (u Uniform) Double() float64 { return math.Float64frombits(u.bits) }

// Mat4 returns the value of a UniformMat4.
func (u Uniform) Mat4() mgl32.Mat4 { return u.mat }

// Validate returns ErrUnsupportedUniformType for the zero Uniform.
func (u Uniform) Validate() error {
	if u.kind == UniformInvalid || u.kind > UniformMat4 {
		return fmt.Errorf("%w: %s", ErrUnsupportedUniformType, u.kind)
	}
	return nil
}

func (u Uniform) String() string {
	switch u.kind {
	case UniformUint:
		return fmt.Sprintf("uint(%d)", u.Uint())
	case UniformInt:
		return fmt.Sprintf("int(%d)", u.Int())
	case UniformFloat:
		return fmt.Sprintf("float(%g)", u.Float())
	case UniformDouble:
		return fmt.Sprintf("double(%g)", u.Double())
	case UniformMat4:
		return fmt.Sprintf("mat4(%v)", u.mat)
	default:
		return "invalid"
	}
}

// AppendBytes appends the little-endian encoding of the value to b.
func (u Uniform) AppendBytes(b []byte) []byte {
	switch u.kind {
	case UniformUint, UniformInt, UniformFloat:
		return binary.LittleEndian.AppendUint32(b, uint32(u.bits))
	case UniformDouble:
		return binary.LittleEndian.AppendUint64(b, u.bits)
	case UniformMat4:
		for _, f := range u.mat {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b
}

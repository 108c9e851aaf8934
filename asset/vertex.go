package asset

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex format uploaded to the GPU.
//
// EntityID is a per-vertex picking id written to an integer attribute; it is
// unrelated to the renderer identity of the entity that owns the vertex.
type Vertex struct {
	EntityID uint32
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
	UV       mgl32.Vec2
}

// VertexStride is the size in bytes of one Vertex.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// AttribType is the component type of a vertex attribute.
type AttribType uint8

const (
	AttribFloat AttribType = iota
	AttribUint
)

// Attrib describes one vertex attribute inside Vertex.
type Attrib struct {
	Location   uint32
	Components int32
	Type       AttribType
	Offset     uintptr
}

// VertexLayout lists the attributes of Vertex by shader location.
var VertexLayout = []Attrib{
	{Location: 0, Components: 1, Type: AttribUint, Offset: unsafe.Offsetof(Vertex{}.EntityID)},
	{Location: 1, Components: 3, Type: AttribFloat, Offset: unsafe.Offsetof(Vertex{}.Position)},
	{Location: 2, Components: 3, Type: AttribFloat, Offset: unsafe.Offsetof(Vertex{}.Normal)},
	{Location: 3, Components: 4, Type: AttribFloat, Offset: unsafe.Offsetof(Vertex{}.Color)},
	{Location: 4, Components: 2, Type: AttribFloat, Offset: unsafe.Offsetof(Vertex{}.UV)},
}

// VertexBytes views vs as raw bytes without copying.
func VertexBytes(vs []Vertex) []byte {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*VertexStride)
}

// IndexBytes views indices as raw bytes without copying.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}

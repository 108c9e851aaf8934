package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

const (
	translation = iota
	rotation
	scaling
)

// Entity is a mesh placed in the world. Its transform is kept locally and
// pushed to the renderer on demand with ResendTransform.
//
// The transform follows the engine's handedness: translations along z and
// rotations around z are negated, and x/y rotation amounts are swapped.
type Entity struct {
	mesh      *asset.Mesh
	id        uint64
	transform [3]mgl32.Vec3
	sent      bool
	changed   bool

	// FlatShaded marks geometry meant to be lit per face.
	FlatShaded bool
}

// New wraps mesh in an entity with the identity transform.
func New(mesh *asset.Mesh) *Entity {
	if mesh == nil {
		mesh = &asset.Mesh{}
	}
	return &Entity{
		mesh:      mesh,
		transform: [3]mgl32.Vec3{{}, {}, {1, 1, 1}},
	}
}

// Mesh implements renderer.Renderable.
func (e *Entity) Mesh() *asset.Mesh { return e.mesh }

// ID returns the renderer identity, zero until the first Submit.
func (e *Entity) ID() uint64 { return e.id }

func (e *Entity) IsEmpty() bool    { return e.mesh.IsEmpty() }
func (e *Entity) Len() int         { return e.mesh.Len() }
func (e *Entity) IsSent() bool     { return e.sent }
func (e *Entity) HasChanged() bool { return e.changed }

// Translation, Rotation and ScaleFactor return the accumulated transform.
func (e *Entity) Translation() mgl32.Vec3 { return e.transform[translation] }
func (e *Entity) Rotation() mgl32.Vec3    { return e.transform[rotation] }
func (e *Entity) ScaleFactor() mgl32.Vec3 { return e.transform[scaling] }

// Translate moves the entity by v.
func (e *Entity) Translate(v mgl32.Vec3) {
	e.transform[translation] = e.transform[translation].Add(mgl32.Vec3{v.X(), v.Y(), -v.Z()})
	e.changed = true
}

// Rotate adds v, in degrees, to the rotation of the entity.
func (e *Entity) Rotate(v mgl32.Vec3) {
	e.transform[rotation] = e.transform[rotation].Add(mgl32.Vec3{v.Y(), v.X(), -v.Z()})
	e.changed = true
}

// Scale adds v to the scale factors of the entity.
func (e *Entity) Scale(v mgl32.Vec3) {
	e.transform[scaling] = e.transform[scaling].Add(v)
	e.changed = true
}

// Model returns translation * rotation(x, y, z) * scale.
func (e *Entity) Model() mgl32.Mat4 {
	t, r, s := e.transform[translation], e.transform[rotation], e.transform[scaling]
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(r.X()))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(r.Y()))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(r.Z()))).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// Submit enqueues the entity on r, drawn with prog. Submitting an entity that
// is already sent enqueues a second copy under a new identity.
func (e *Entity) Submit(r *renderer.Renderer, prog *shader.Program) error {
	id, err := r.Enqueue(e, prog)
	if err != nil {
		wave.Component("Entity").Error("entity sent unsuccessfully", "err", err)
		return err
	}
	e.id = id
	e.sent = true
	e.changed = false
	return nil
}

// ResendTransform pushes the model matrix to r if the transform changed since
// the last Submit or ResendTransform.
func (e *Entity) ResendTransform(r *renderer.Renderer) error {
	if !e.sent {
		wave.Component("Entity").Error("cannot update entity, entity not sent previously")
		return fmt.Errorf("%w: entity not sent", renderer.ErrEntityNotFound)
	}
	if !e.changed {
		return nil
	}
	if err := r.Update(e.id, e.Model()); err != nil {
		return err
	}
	e.changed = false
	return nil
}

// Free dequeues the entity from r. The entity may be submitted again.
func (e *Entity) Free(r *renderer.Renderer) error {
	if !e.sent {
		return nil
	}
	if err := r.Dequeue(e.id); err != nil {
		return err
	}
	e.sent = false
	e.changed = false
	return nil
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(id=%d, vertices=%d, sent=%t)", e.id, e.mesh.Len(), e.sent)
}

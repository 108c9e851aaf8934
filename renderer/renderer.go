package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

// State is the lifecycle state of a Renderer.
type State uint8

const (
	NotCreated State = iota
	Created
	Deleted
)

func (s State) String() string {
	switch s {
	case NotCreated:
		return "NotCreated"
	case Created:
		return "Created"
	case Deleted:
		return "Deleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Renderable is geometry that can be enqueued.
type Renderable interface {
	Mesh() *asset.Mesh
	Model() mgl32.Mat4
}

// Renderer owns one backend context and routes every call to it.
type Renderer struct {
	api       render.API
	state     State
	hints     render.Hints
	ctx       Context
	submitted bool
	ids       IDAllocator
}

// New creates a renderer for api. The backend context is created but not
// initialized until Submit. It fails with ErrUnsupportedApi when no backend
// for api was compiled in.
func New(api render.API) (*Renderer, error) {
	log := wave.Component("Renderer")
	if !api.Valid() {
		log.Error("cannot create renderer: invalid api", "api", api)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedApi, api)
	}
	ctx, err := newContext(api)
	if err != nil {
		log.Error("cannot create renderer: backend not compiled in", "api", api, "registered", registered())
		return nil, fmt.Errorf("%w: %s", err, api)
	}
	log.Debug("renderer created", "api", api)
	return &Renderer{api: api, state: Created, ctx: ctx}, nil
}

// API returns the API selected at creation. It never changes.
func (r *Renderer) API() render.API { return r.api }

// State returns the lifecycle state.
func (r *Renderer) State() State { return r.state }

// Submitted reports whether the backend context is bound to a window.
func (r *Renderer) Submitted() bool { return r.state == Created && r.submitted }

// Hints returns the accumulated hints in application order.
func (r *Renderer) Hints() []render.Hint { return r.hints.All() }

// Hint records a feature option, overwriting any hint of the same kind.
// Before Submit hints are only stored; afterwards they are applied at once.
func (r *Renderer) Hint(h render.Hint) error {
	if r.state != Created {
		return fmt.Errorf("%w: renderer is %s", ErrNoActiveRenderer, r.state)
	}
	r.hints.Set(h)
	if !r.submitted {
		return nil
	}
	if err := r.ctx.Apply(h); err != nil {
		wave.Component("Renderer").Error("cannot apply hint", "hint", h, "err", err)
		return wrap(r.api, "apply "+h.Kind.String(), err)
	}
	return nil
}

// Submit binds a fresh backend context to surface and applies every hint.
// A previously submitted context is freed first.
func (r *Renderer) Submit(surface render.Surface) error {
	log := wave.Component("Renderer")
	if r.state != Created {
		return fmt.Errorf("%w: renderer is %s", ErrNoActiveRenderer, r.state)
	}
	if surface == nil {
		return fmt.Errorf("%w: nil surface", ErrInit)
	}

	if r.submitted {
		if err := r.ctx.Free(); err != nil {
			log.Warn("cannot free previous context", "err", err)
		}
		r.submitted = false
		ctx, err := newContext(r.api)
		if err != nil {
			return fmt.Errorf("%w: %s", err, r.api)
		}
		r.ctx = ctx
	}

	if err := r.ctx.Init(surface); err != nil {
		log.Error("cannot initialize backend context", "api", r.api, "err", err)
		return wrap(r.api, "init", err)
	}
	r.submitted = true

	for _, h := range r.hints.All() {
		if err := r.ctx.Apply(h); err != nil {
			log.Error("cannot apply hint", "hint", h, "err", err)
			return wrap(r.api, "apply "+h.Kind.String(), err)
		}
		log.Debug("hint applied", "hint", h)
	}
	log.Info("renderer submitted", "api", r.api, "hints", r.hints.Len())
	return nil
}

func (r *Renderer) active() error {
	if r.state != Created || !r.submitted {
		return fmt.Errorf("%w: renderer is %s, submitted=%t", ErrNoActiveRenderer, r.state, r.submitted)
	}
	return nil
}

// HasExtension reports whether the backend context exposes an extension.
// It is false before Submit.
func (r *Renderer) HasExtension(name string) bool {
	return r.active() == nil && r.ctx.HasExtension(name)
}

// MaxShaderVersion returns the highest GLSL version of the backend context.
func (r *Renderer) MaxShaderVersion() int {
	if r.active() != nil {
		return 0
	}
	return r.ctx.MaxShaderVersion()
}

// NewShaderBackend implements shader.Device.
func (r *Renderer) NewShaderBackend(cfg shader.BackendConfig) (shader.Backend, error) {
	if err := r.active(); err != nil {
		return nil, err
	}
	b, err := r.ctx.NewShaderBackend(cfg)
	if err != nil {
		return nil, wrap(r.api, "new shader", err)
	}
	return b, nil
}

// Enqueue registers the geometry of e for drawing with prog and returns its
// renderer identity. prog must be sent and belong to this renderer's API.
func (r *Renderer) Enqueue(e Renderable, prog *shader.Program) (uint64, error) {
	log := wave.Component("Renderer")
	if err := r.active(); err != nil {
		return 0, err
	}
	if e == nil {
		return 0, fmt.Errorf("%w: nil entity", ErrInvalidEntity)
	}
	if prog == nil || prog.State() != shader.Sent {
		log.Error("cannot enqueue entity: shader not sent")
		return 0, fmt.Errorf("%w: program must be sent before use", ErrShaderNotFound)
	}
	if prog.API() != r.api {
		log.Error("cannot enqueue entity: api mismatch", "renderer", r.api, "shader", prog.API())
		return 0, fmt.Errorf("%w: program built for %s", ErrInvalidApi, prog.API())
	}

	mesh := e.Mesh()
	if mesh.IsEmpty() {
		log.Warn("enqueueing empty entity")
	}
	id := r.ids.Next()
	mesh.SetEntityID(uint32(id))
	if err := r.ctx.Enqueue(id, mesh, e.Model(), prog); err != nil {
		log.Error("cannot enqueue entity", "id", id, "err", err)
		return 0, wrap(r.api, "enqueue", err)
	}
	log.Debug("entity enqueued", "id", id, "vertices", mesh.Len(), "shader", prog.ID())
	return id, nil
}

// Dequeue releases the geometry of id.
func (r *Renderer) Dequeue(id uint64) error {
	if err := r.active(); err != nil {
		return err
	}
	if err := r.ctx.Dequeue(id); err != nil {
		wave.Component("Renderer").Error("cannot dequeue entity", "id", id, "err", err)
		return wrap(r.api, "dequeue", err)
	}
	return nil
}

// Update replaces the model matrix of an enqueued entity.
func (r *Renderer) Update(id uint64, model mgl32.Mat4) error {
	if err := r.active(); err != nil {
		return err
	}
	if err := r.ctx.UpdateModel(id, model); err != nil {
		wave.Component("Renderer").Error("cannot update entity", "id", id, "err", err)
		return wrap(r.api, "update", err)
	}
	return nil
}

// UpdateCamera replaces the camera matrices.
func (r *Renderer) UpdateCamera(view, projection mgl32.Mat4) error {
	if err := r.active(); err != nil {
		return err
	}
	return wrap(r.api, "update camera", r.ctx.UpdateCamera(view, projection))
}

// SetVisible shows or hides an enqueued entity.
func (r *Renderer) SetVisible(id uint64, visible bool) error {
	if err := r.active(); err != nil {
		return err
	}
	return wrap(r.api, "set visible", r.ctx.SetVisible(id, visible))
}

// OnEvent handles a window event. A close event frees the renderer; any
// other event is forwarded to the backend context.
func (r *Renderer) OnEvent(ev event.Event) error {
	if ev.Kind == event.WindowClose {
		wave.Component("Renderer").Info("window closing, freeing renderer")
		return r.Free()
	}
	if r.active() != nil {
		return nil
	}
	return wrap(r.api, "event "+ev.Kind.String(), r.ctx.OnEvent(ev))
}

// Render draws one frame.
func (r *Renderer) Render() error {
	if err := r.active(); err != nil {
		return err
	}
	return wrap(r.api, "render", r.ctx.Render())
}

// Flush releases every enqueued entity. Their identities become invalid.
func (r *Renderer) Flush() error {
	if err := r.active(); err != nil {
		return err
	}
	return wrap(r.api, "flush", r.ctx.Flush())
}

// Stats returns the backend counters. It is zero before Submit.
func (r *Renderer) Stats() Stats {
	if r.active() != nil {
		return Stats{}
	}
	return r.ctx.Stats()
}

// Free releases the backend context and moves the renderer to Deleted.
// Freeing a deleted renderer logs and returns nil. A backend failure is
// logged and returned, but the renderer is deleted regardless.
func (r *Renderer) Free() error {
	log := wave.Component("Renderer")
	if r.state != Created {
		log.Warn("renderer already freed", "state", r.state)
		return nil
	}
	var err error
	if r.submitted {
		err = r.ctx.Free()
	}
	r.state = Deleted
	r.submitted = false
	r.ctx = nil
	if err != nil {
		log.Error("cannot free renderer", "api", r.api, "err", err)
		return wrap(r.api, "free", err)
	}
	log.Info("renderer freed", "api", r.api)
	return nil
}

func (r *Renderer) String() string {
	return fmt.Sprintf("Renderer(%s, %s)", r.api, r.state)
}

var _ shader.Device = (*Renderer)(nil)

func (r *Renderer) textures() (TextureContext, error) {
	if err := r.active(); err != nil {
		return nil, err
	}
	tc, ok := r.ctx.(TextureContext)
	if !ok {
		return nil, fmt.Errorf("%w: textures on %s", ErrNotImplemented, r.api)
	}
	return tc, nil
}

// UploadTexture uploads an image and returns its texture id.
func (r *Renderer) UploadTexture(img *image.RGBA) (uint64, error) {
	tc, err := r.textures()
	if err != nil {
		return 0, err
	}
	id, err := tc.UploadTexture(img)
	if err != nil {
		wave.Component("Renderer").Error("cannot upload texture", "err", err)
		return 0, wrap(r.api, "upload texture", err)
	}
	return id, nil
}

// BindTexture binds a texture to a texture unit.
func (r *Renderer) BindTexture(id uint64, unit int) error {
	tc, err := r.textures()
	if err != nil {
		return err
	}
	return wrap(r.api, "bind texture", tc.BindTexture(id, unit))
}

// DeleteTexture releases a texture.
func (r *Renderer) DeleteTexture(id uint64) error {
	tc, err := r.textures()
	if err != nil {
		return err
	}
	return wrap(r.api, "delete texture", tc.DeleteTexture(id))
}

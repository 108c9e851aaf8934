package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

// Context is the backend half of a Renderer. Exactly one implementation
// exists per API. A Context is created uninitialized by its factory and bound
// to a window by Init.
type Context interface {
	// API returns the API the context implements.
	API() render.API

	// Init creates the native device or context for surface.
	Init(surface render.Surface) error

	// Apply enables or disables one feature.
	Apply(h render.Hint) error

	// HasExtension reports whether the native context exposes an extension.
	HasExtension(name string) bool

	// MaxShaderVersion returns the highest GLSL version accepted.
	MaxShaderVersion() int

	// NewShaderBackend creates the native half of a shader program.
	NewShaderBackend(cfg shader.BackendConfig) (shader.Backend, error)

	// OnEvent reacts to a window event, for instance a resize.
	OnEvent(ev event.Event) error

	// Enqueue uploads mesh and draws it with prog from the next frame on.
	// An empty mesh is accepted and draws nothing.
	Enqueue(id uint64, mesh *asset.Mesh, model mgl32.Mat4, prog *shader.Program) error

	// Dequeue releases the geometry of id.
	Dequeue(id uint64) error

	// UpdateModel replaces the model matrix of id.
	UpdateModel(id uint64, model mgl32.Mat4) error

	// UpdateCamera replaces the view and projection matrices.
	UpdateCamera(view, projection mgl32.Mat4) error

	// SetVisible shows or hides id without releasing it.
	SetVisible(id uint64, visible bool) error

	// Render draws one frame.
	Render() error

	// Flush releases every enqueued entity.
	Flush() error

	// Stats returns counters of the enqueued work.
	Stats() Stats

	// Free releases every native resource.
	Free() error
}

// Stats are renderer counters.
type Stats struct {
	Batches   int
	Entities  int
	Visible   int
	Vertices  int
	Indices   int
	DrawCalls int
}

// TextureContext is implemented by contexts able to sample textures.
type TextureContext interface {
	UploadTexture(img *image.RGBA) (uint64, error)
	BindTexture(id uint64, unit int) error
	DeleteTexture(id uint64) error
}

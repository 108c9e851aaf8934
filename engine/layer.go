package engine

import "github.com/wave-engine/wave/event"

// Layer is a unit of application logic driven by the engine loop. Layers are
// attached in order and receive events, updates and render calls in reverse
// order, so the last attached layer sees input first.
type Layer interface {
	// OnAttach runs once from Engine.Apply, after the renderer is submitted.
	OnAttach(ctx *Context) error

	// OnEvent handles a window event. Returning true stops propagation to
	// the layers attached before this one.
	OnEvent(ctx *Context, ev event.Event) (handled bool, err error)

	OnUpdate(ctx *Context) error
	OnRender(ctx *Context) error

	// OnDetach runs once from Engine.Free.
	OnDetach(ctx *Context) error
}

// ShaderListener is implemented by layers that rebuild programs when a
// watched shader source changes. The cache entry of path is already gone.
type ShaderListener interface {
	OnShaderChanged(ctx *Context, path string) error
}

// BaseLayer implements every Layer method as a no-op. Embed it to implement
// only what a layer needs.
type BaseLayer struct{}

func (BaseLayer) OnAttach(*Context) error                     { return nil }
func (BaseLayer) OnEvent(*Context, event.Event) (bool, error) { return false, nil }
func (BaseLayer) OnUpdate(*Context) error                     { return nil }
func (BaseLayer) OnRender(*Context) error                     { return nil }
func (BaseLayer) OnDetach(*Context) error                     { return nil }

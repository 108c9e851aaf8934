// Package renderertest provides recording test doubles for renderer backends.
//
// Register installs a fake backend for an API for the duration of a test:
//
//	rec := renderertest.Register(t, render.OpenGL)
//	r, _ := renderer.New(render.OpenGL)
//	r.Submit(&renderertest.Surface{Width: 800, Height: 600})
//	ctx := rec.Last()
package renderertest

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// Surface is a fake window.
type Surface struct {
	Width, Height int
	Visible       bool
}

func (s *Surface) FramebufferSize() (int, int)            { return s.Width, s.Height }
func (s *Surface) Show()                                  { s.Visible = true }
func (s *Surface) Hide()                                  { s.Visible = false }
func (s *Surface) ProcAddress(name string) unsafe.Pointer { return nil }

// Recorder keeps every context created by a registered fake factory.
type Recorder struct {
	Contexts []*Context

	// Configure, when set, runs on each new context before it is returned.
	Configure func(*Context)
}

// Last returns the most recently created context, or nil.
func (r *Recorder) Last() *Context {
	if len(r.Contexts) == 0 {
		return nil
	}
	return r.Contexts[len(r.Contexts)-1]
}

// Register installs a fake factory for api and removes it when t ends.
func Register(t testing.TB, api render.API) *Recorder {
	t.Helper()
	rec := &Recorder{}
	renderer.Register(api, func() renderer.Context {
		c := NewContext(api)
		if rec.Configure != nil {
			rec.Configure(c)
		}
		rec.Contexts = append(rec.Contexts, c)
		return c
	})
	t.Cleanup(func() { renderer.Unregister(api) })
	return rec
}

// Context is a recording renderer.Context.
type Context struct {
	api render.API

	Extensions map[string]bool
	Version    int

	// Fail makes the named operation ("init", "apply", "enqueue", "dequeue",
	// "update", "render", "free", "shader") return the error.
	Fail map[string]error

	Surface render.Surface
	Applied []render.Hint
	Events  []event.Event
	Batches renderer.Batches
	View    mgl32.Mat4
	Proj    mgl32.Mat4
	Frames  int
	Frees   int
	Shaders []*ShaderBackend

	nextProgram uint64
}

// NewContext returns a context for api exposing GLSL 4.60 and no extensions.
func NewContext(api render.API) *Context {
	return &Context{
		api:        api,
		Extensions: map[string]bool{},
		Version:    460,
		Fail:       map[string]error{},
	}
}

func (c *Context) API() render.API { return c.api }

func (c *Context) Init(surface render.Surface) error {
	if err := c.Fail["init"]; err != nil {
		return err
	}
	c.Surface = surface
	return nil
}

func (c *Context) Apply(h render.Hint) error {
	if err := c.Fail["apply"]; err != nil {
		return err
	}
	c.Applied = append(c.Applied, h)
	return nil
}

func (c *Context) HasExtension(name string) bool { return c.Extensions[name] }
func (c *Context) MaxShaderVersion() int         { return c.Version }

func (c *Context) NewShaderBackend(cfg shader.BackendConfig) (shader.Backend, error) {
	if err := c.Fail["shader"]; err != nil {
		return nil, err
	}
	b := &ShaderBackend{ctx: c, Config: cfg, Uniforms: map[string]shader.Uniform{}, Locations: map[string]int{}}
	c.Shaders = append(c.Shaders, b)
	return b, nil
}

func (c *Context) OnEvent(ev event.Event) error {
	c.Events = append(c.Events, ev)
	return nil
}

func (c *Context) Enqueue(id uint64, mesh *asset.Mesh, model mgl32.Mat4, prog *shader.Program) error {
	if err := c.Fail["enqueue"]; err != nil {
		return err
	}
	_, err := c.Batches.Add(id, mesh, model, prog)
	return err
}

func (c *Context) Dequeue(id uint64) error {
	if err := c.Fail["dequeue"]; err != nil {
		return err
	}
	_, err := c.Batches.Remove(id)
	return err
}

func (c *Context) UpdateModel(id uint64, model mgl32.Mat4) error {
	if err := c.Fail["update"]; err != nil {
		return err
	}
	item, err := c.Batches.Get(id)
	if err != nil {
		return err
	}
	item.Model = model
	return nil
}

func (c *Context) UpdateCamera(view, projection mgl32.Mat4) error {
	c.View, c.Proj = view, projection
	return nil
}

func (c *Context) SetVisible(id uint64, visible bool) error {
	item, err := c.Batches.Get(id)
	if err != nil {
		return err
	}
	item.Visible = visible
	return nil
}

func (c *Context) Render() error {
	if err := c.Fail["render"]; err != nil {
		return err
	}
	c.Frames++
	return nil
}

func (c *Context) Flush() error {
	c.Batches.Clear()
	return nil
}

func (c *Context) Stats() renderer.Stats {
	s := c.Batches.Stats()
	s.DrawCalls = s.Visible
	return s
}

func (c *Context) Free() error {
	c.Frees++
	return c.Fail["free"]
}

// ShaderBackend is a recording shader.Backend. Link assigns the next
// program id of its context.
type ShaderBackend struct {
	ctx    *Context
	Config shader.BackendConfig

	Sourced, Compiled, Linked, Frees int

	// Binaries counts stages loaded from binaries rather than compiled.
	Binaries int

	// Locations counts location resolutions per uniform name.
	Locations map[string]int
	Uniforms  map[string]shader.Uniform

	id uint64
}

func (b *ShaderBackend) API() render.API { return b.ctx.api }

func (b *ShaderBackend) Source(stages []*shader.Stage) error {
	b.Sourced++
	return nil
}

func (b *ShaderBackend) Compile(stages []*shader.Stage) error {
	for _, s := range stages {
		if s.IsBinary() {
			b.Binaries++
		} else {
			b.Compiled++
		}
	}
	return nil
}

func (b *ShaderBackend) Link(stages []*shader.Stage) error {
	b.Linked++
	b.ctx.nextProgram++
	b.id = b.ctx.nextProgram
	return nil
}

func (b *ShaderBackend) ID() uint64 { return b.id }

func (b *ShaderBackend) Upload(name string, value shader.Uniform) error {
	if _, ok := b.Uniforms[name]; !ok {
		b.Locations[name]++
	}
	b.Uniforms[name] = value
	return nil
}

func (b *ShaderBackend) Free() error {
	if b.id == 0 && b.Linked > 0 {
		return fmt.Errorf("double free of program")
	}
	b.Frees++
	b.id = 0
	return nil
}

// Package engine runs the frame loop: it owns the window, the renderer and
// the application layers, and hands them to layers through an explicit
// Context.
//
// Each frame:
//
//	poll window events
//	  -> renderer.OnEvent (a close event frees the renderer and ends the loop)
//	  -> layers, last attached first, until one handles the event
//	update layers -> render layers -> renderer.Render -> swap buffers
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// Engine errors.
var (
	ErrAlreadyStarted = errors.New("engine: already started")
	ErrNotStarted     = errors.New("engine: not started")
)

// State is the lifecycle state of an Engine.
type State uint8

const (
	NotStarted State = iota
	Started
	Running
	Deleted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Started:
		return "Started"
	case Running:
		return "Running"
	case Deleted:
		return "Deleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Window is the window contract of the engine. *window.Window implements it.
type Window interface {
	render.Surface
	PollEvents() []event.Event
	SwapBuffers()
	ShouldClose() bool
	SetTitle(title string)
}

// Option configures an Engine in Apply.
type Option func(*Engine)

// WithCompiler replaces the glslc compiler built from the configuration.
func WithCompiler(c shader.Compiler) Option {
	return func(e *Engine) { e.ctx.Compiler = c }
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTickRate caps the loop to one frame per d. Zero means uncapped.
func WithTickRate(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// Engine drives one window and one renderer.
type Engine struct {
	cfg    wave.Config
	layers []Layer
	state  State
	ctx    Context

	changes <-chan string
	now     func() time.Time
	tick    time.Duration
}

// New creates an engine. Nothing is started until Apply or Run.
func New(cfg wave.Config, win Window, r *renderer.Renderer, layers ...Layer) *Engine {
	return &Engine{
		cfg:    cfg,
		layers: layers,
		ctx:    Context{Renderer: r, Window: win},
		now:    time.Now,
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Context returns the context lent to layers.
func (e *Engine) Context() *Context { return &e.ctx }

// PushLayer adds a layer on top. Once the engine started, the layer is
// attached immediately.
func (e *Engine) PushLayer(l Layer) error {
	if e.state == Started || e.state == Running {
		if err := l.OnAttach(&e.ctx); err != nil {
			return err
		}
	}
	e.layers = append(e.layers, l)
	return nil
}

// PopLayer removes and detaches the top layer. It returns nil when there is
// no layer.
func (e *Engine) PopLayer() (Layer, error) {
	if len(e.layers) == 0 {
		return nil, nil
	}
	l := e.layers[len(e.layers)-1]
	e.layers = e.layers[:len(e.layers)-1]
	if e.state == Started || e.state == Running {
		return l, l.OnDetach(&e.ctx)
	}
	return l, nil
}

// Apply applies the configured hints, submits the renderer to the window,
// prepares the shader cache and watcher, and attaches the layers.
func (e *Engine) Apply(opts ...Option) error {
	log := wave.Component("Engine")
	if e.state != NotStarted {
		log.Error("cannot start engine: already started")
		return ErrAlreadyStarted
	}
	log.Info("launching engine")

	if e.ctx.Compiler == nil {
		e.ctx.Compiler = shader.GlslcCompiler{Path: e.cfg.Shader.Glslc}
	}
	for _, opt := range opts {
		opt(e)
	}

	hints, err := e.cfg.Renderer.Hints()
	if err != nil {
		return err
	}
	for _, h := range hints {
		if err := e.ctx.Renderer.Hint(h); err != nil {
			return err
		}
	}
	if err := e.ctx.Renderer.Submit(e.ctx.Window); err != nil {
		return err
	}

	e.ctx.Cache = shader.NewCache(e.cfg.Shader.CacheDir)
	if e.cfg.Shader.Watch {
		w, err := shader.NewWatcher(e.ctx.Cache)
		if err != nil {
			log.Warn("shader hot reload disabled", "err", err)
		} else {
			e.ctx.watcher = w
			e.changes = w.Changes()
		}
	}

	for _, l := range e.layers {
		if err := l.OnAttach(&e.ctx); err != nil {
			log.Error("cannot attach layer", "layer", fmt.Sprintf("%T", l), "err", err)
			return err
		}
	}
	e.ctx.Window.Show()
	e.state = Started
	log.Info("engine launched", "api", e.ctx.Renderer.API(), "layers", len(e.layers))
	return nil
}

// Run applies the engine if needed and loops until the window closes, a
// layer calls Context.Stop, or ctx is done. It returns the first error of
// the renderer or a layer, or ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	if e.state == NotStarted {
		if err := e.Apply(); err != nil {
			return err
		}
	}
	if e.state != Started {
		return fmt.Errorf("%w: engine is %s", ErrNotStarted, e.state)
	}
	e.state = Running
	defer func() {
		if e.state == Running {
			e.state = Started
		}
	}()

	title := fmt.Sprintf("%s | %s", e.cfg.Window.Title, e.ctx.Renderer.API())
	e.ctx.Window.SetTitle(title)

	start := e.now()
	second, frames := start, 0
	e.ctx.stop = false
	for !e.ctx.Window.ShouldClose() && !e.ctx.stop {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := e.now()
		e.ctx.Delta = now.Sub(start)
		start = now

		if err := e.shaderChanges(); err != nil {
			return err
		}
		closed, err := e.dispatch(e.ctx.Window.PollEvents())
		if err != nil || closed {
			return err
		}
		if err := e.frame(); err != nil {
			return err
		}

		e.ctx.Frame++
		frames++
		if elapsed := e.now().Sub(second); elapsed >= time.Second {
			e.ctx.Window.SetTitle(fmt.Sprintf("%s | %d FPS", title, frames))
			wave.Component("Engine").Debug("framerate", "fps", frames)
			second, frames = e.now(), 0
		}
		if e.tick > 0 {
			if rest := e.tick - e.now().Sub(start); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

// dispatch routes events to the renderer then to the layers. It reports
// whether the window was closed.
func (e *Engine) dispatch(events []event.Event) (bool, error) {
	closed := false
	for _, ev := range events {
		if err := e.ctx.Renderer.OnEvent(ev); err != nil {
			return false, err
		}
		for i := len(e.layers) - 1; i >= 0; i-- {
			handled, err := e.layers[i].OnEvent(&e.ctx, ev)
			if err != nil {
				return false, err
			}
			if handled {
				break
			}
		}
		if ev.Kind == event.WindowClose {
			closed = true
		}
	}
	return closed, nil
}

func (e *Engine) frame() error {
	for i := len(e.layers) - 1; i >= 0; i-- {
		if err := e.layers[i].OnUpdate(&e.ctx); err != nil {
			return err
		}
	}
	for i := len(e.layers) - 1; i >= 0; i-- {
		if err := e.layers[i].OnRender(&e.ctx); err != nil {
			return err
		}
	}
	if err := e.ctx.Renderer.Render(); err != nil {
		return err
	}
	e.ctx.Window.SwapBuffers()
	return nil
}

// shaderChanges notifies listeners of every pending source change.
func (e *Engine) shaderChanges() error {
	for {
		select {
		case path, ok := <-e.changes:
			if !ok {
				e.changes = nil
				return nil
			}
			for i := len(e.layers) - 1; i >= 0; i-- {
				l, ok := e.layers[i].(ShaderListener)
				if !ok {
					continue
				}
				if err := l.OnShaderChanged(&e.ctx, path); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}
}

// Free detaches the layers, last attached first, stops the watcher and frees
// the renderer. Calling it twice is harmless.
func (e *Engine) Free() error {
	if e.state == Deleted {
		return nil
	}
	log := wave.Component("Engine")
	log.Info("shutting down layers")

	var errs []error
	if e.state != NotStarted {
		for i := len(e.layers) - 1; i >= 0; i-- {
			errs = append(errs, e.layers[i].OnDetach(&e.ctx))
		}
	}
	if e.ctx.watcher != nil {
		errs = append(errs, e.ctx.watcher.Close())
		e.ctx.watcher, e.changes = nil, nil
	}
	errs = append(errs, e.ctx.Renderer.Free())
	e.state = Deleted

	if err := errors.Join(errs...); err != nil {
		log.Error("engine shut down with errors", "err", err)
		return err
	}
	log.Info("engine shut down")
	return nil
}

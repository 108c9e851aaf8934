package engine

import (
	"time"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// Context is what the engine lends to its layers. It replaces any global
// "active renderer" or "active window": everything a layer may touch is
// reachable from here.
type Context struct {
	Renderer *renderer.Renderer
	Window   Window
	Cache    *shader.Cache
	Compiler shader.Compiler

	// Delta is the duration of the previous frame.
	Delta time.Duration
	// Frame counts completed frames.
	Frame uint64

	watcher *shader.Watcher
	stop    bool
}

// Stop ends the loop after the current frame.
func (c *Context) Stop() { c.stop = true }

// ShaderOptions returns the options wiring a program to the engine's cache
// and compiler.
func (c *Context) ShaderOptions() []shader.Option {
	return []shader.Option{shader.WithCache(c.Cache), shader.WithCompiler(c.Compiler)}
}

// NewProgram creates a program on the renderer with the engine's cache and
// compiler. File stages are watched when hot reload is enabled.
func (c *Context) NewProgram(stages []shader.Stage, opts ...shader.Option) (*shader.Program, error) {
	p, err := shader.New(c.Renderer, stages, append(c.ShaderOptions(), opts...)...)
	if err != nil {
		return nil, err
	}
	if c.watcher != nil {
		if err := c.watcher.AddProgram(p); err != nil {
			wave.Component("Engine").Warn("cannot watch shader sources", "shader", p.ID(), "err", err)
		}
	}
	return p, nil
}

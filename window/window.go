// Package window provides the glfw window hosting the renderer. It implements
// render.Surface and render.VulkanSurface and turns glfw callbacks into
// event.Event values returned by PollEvents.
//
// glfw must be driven from the main OS thread: call runtime.LockOSThread in
// main's init and create, poll and destroy windows from main.
package window

import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
)

// ErrClosed is returned by operations on a destroyed window.
var ErrClosed = errors.New("window: closed")

// Init initializes glfw. Call it once before New.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: init glfw: %w", err)
	}
	return nil
}

// Terminate releases glfw. Every window must be destroyed first.
func Terminate() { glfw.Terminate() }

// Option configures a window at creation.
type Option func(*options)

type options struct {
	samples int
	debug   bool
}

// WithSamples requests a multisampled default framebuffer.
func WithSamples(n int) Option {
	return func(o *options) { o.samples = n }
}

// WithDebugContext requests an OpenGL debug context, needed for synchronous
// debug output.
func WithDebugContext(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}

// Window is a glfw window.
type Window struct {
	glw   *glfw.Window
	api   render.API
	title string
	vsync bool

	queue Queue
	held  map[glfw.MouseButton]bool
}

// New creates a hidden window for api. OpenGL windows get a 4.6 core context
// made current on the calling thread; Vulkan windows get no client API.
func New(cfg wave.WindowConfig, api render.API, opts ...Option) (*Window, error) {
	log := wave.Component("Window")
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Resizable))
	if o.samples > 0 {
		glfw.WindowHint(glfw.Samples, o.samples)
	}
	switch api {
	case render.OpenGL:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 6)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.OpenGLDebugContext, glfwBool(o.debug))
	case render.Vulkan:
		if !glfw.VulkanSupported() {
			return nil, fmt.Errorf("window: Vulkan loader not found")
		}
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	default:
		return nil, fmt.Errorf("window: unsupported api %s", api)
	}

	glw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		log.Error("cannot create window", "api", api, "err", err)
		return nil, fmt.Errorf("window: create: %w", err)
	}
	w := &Window{
		glw:   glw,
		api:   api,
		title: cfg.Title,
		vsync: cfg.VSync,
		held:  make(map[glfw.MouseButton]bool),
	}
	if api == render.OpenGL {
		glw.MakeContextCurrent()
		w.SetVSync(cfg.VSync)
	}
	w.installCallbacks()

	log.Info("window created", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height, "api", api)
	return w, nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func (w *Window) installCallbacks() {
	w.glw.SetCloseCallback(func(*glfw.Window) {
		w.queue.Push(event.Close())
	})
	w.glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.queue.Push(event.Resize(width, height))
	})
	w.glw.SetPosCallback(func(_ *glfw.Window, x, y int) {
		w.queue.Push(event.Event{Kind: event.WindowMove, X: float64(x), Y: float64(y)})
	})
	w.glw.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.queue.Push(event.Event{Kind: event.WindowFocus, Flag: focused})
	})
	w.glw.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		w.queue.Push(event.Event{Kind: event.WindowIconify, Flag: iconified})
	})
	w.glw.SetMaximizeCallback(func(_ *glfw.Window, maximized bool) {
		w.queue.Push(event.Event{Kind: event.WindowMaximize, Flag: maximized})
	})
	w.glw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		w.queue.Push(keyEvent(key, action, mods))
	})
	w.glw.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			w.held[button] = true
		case glfw.Release:
			delete(w.held, button)
		}
		x, y := w.glw.GetCursorPos()
		w.queue.Push(mouseEvent(button, action, mods, x, y))
	})
	w.glw.SetScrollCallback(func(_ *glfw.Window, x, y float64) {
		w.queue.Push(event.Event{Kind: event.MouseScroll, X: x, Y: y})
	})
	w.glw.SetDropCallback(func(_ *glfw.Window, names []string) {
		w.queue.Push(event.Event{Kind: event.DragAndDrop, Paths: names})
	})
}

// PollEvents processes pending window system events and returns them in
// arrival order. Mouse buttons held since the previous poll produce a
// MouseHold event each.
func (w *Window) PollEvents() []event.Event {
	if w.glw == nil {
		return nil
	}
	if len(w.held) > 0 {
		x, y := w.glw.GetCursorPos()
		buttons := make([]int, 0, len(w.held))
		for b := range w.held {
			buttons = append(buttons, int(b))
		}
		sort.Ints(buttons)
		for _, b := range buttons {
			w.queue.Push(mouseEvent(glfw.MouseButton(b), glfw.Repeat, 0, x, y))
		}
	}
	glfw.PollEvents()
	return w.queue.Drain()
}

// SwapBuffers presents the OpenGL back buffer. It does nothing for Vulkan.
func (w *Window) SwapBuffers() {
	if w.glw != nil && w.api == render.OpenGL {
		w.glw.SwapBuffers()
	}
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.glw == nil || w.glw.ShouldClose() }

// Close asks the window to close. A WindowClose event is queued for the next
// poll.
func (w *Window) Close() {
	if w.glw == nil {
		return
	}
	w.glw.SetShouldClose(true)
	w.queue.Push(event.Close())
}

// Destroy releases the window. Calling it twice is harmless.
func (w *Window) Destroy() {
	if w.glw == nil {
		return
	}
	w.glw.Destroy()
	w.glw = nil
	wave.Component("Window").Info("window destroyed", "title", w.title)
}

// API returns the graphics API the window was created for.
func (w *Window) API() render.API { return w.api }

func (w *Window) Title() string { return w.title }

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	w.title = title
	if w.glw != nil {
		w.glw.SetTitle(title)
	}
}

// SetVSync toggles vertical sync. OpenGL windows apply it to the context at
// once; Vulkan contexts pick it up when they next build their swapchain.
func (w *Window) SetVSync(enabled bool) {
	w.vsync = enabled
	if w.api != render.OpenGL || w.glw == nil {
		return
	}
	if enabled {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

// VSync implements render.VulkanSurface.
func (w *Window) VSync() bool { return w.vsync }

// FramebufferSize implements render.Surface.
func (w *Window) FramebufferSize() (width, height int) {
	if w.glw == nil {
		return 0, 0
	}
	return w.glw.GetFramebufferSize()
}

// Show implements render.Surface.
func (w *Window) Show() {
	if w.glw != nil {
		w.glw.Show()
	}
}

// Hide implements render.Surface.
func (w *Window) Hide() {
	if w.glw != nil {
		w.glw.Hide()
	}
}

// ProcAddress implements render.Surface.
func (w *Window) ProcAddress(name string) unsafe.Pointer { return glfw.GetProcAddress(name) }

// RequiredInstanceExtensions implements render.VulkanSurface.
func (w *Window) RequiredInstanceExtensions() []string {
	if w.glw == nil {
		return nil
	}
	return w.glw.GetRequiredInstanceExtensions()
}

// CreateVulkanSurface implements render.VulkanSurface.
func (w *Window) CreateVulkanSurface(instance any) (uintptr, error) {
	if w.glw == nil {
		return 0, ErrClosed
	}
	return w.glw.CreateWindowSurface(instance, nil)
}

// VulkanProcAddress implements render.VulkanSurface.
func (w *Window) VulkanProcAddress() unsafe.Pointer { return glfw.GetVulkanGetInstanceProcAddress() }

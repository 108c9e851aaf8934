package vulkan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// ShaderVersion is the GLSL version accepted by the SPIR-V toolchain.
const ShaderVersion = 460

// AppName is reported to the driver at instance creation.
const AppName = "wave"

// ModelUniform is the push constant receiving each entity's model matrix.
const ModelUniform = "u_model_matrix"

// ClearColor is the framebuffer clear color.
var ClearColor = gputypes.Color{R: 0.025, G: 0.025, B: 0.025, A: 1}

// Context is the Vulkan renderer.Context.
type Context struct {
	drv     Driver
	surface render.VulkanSurface

	initialized bool
	validation  bool
	device      PhysicalDevice
	queueFamily uint32
	extensions  map[string]bool
	width       int
	height      int

	swapchain SwapchainConfig
	images    int
	vsync     bool
	stale     bool

	state     PipelineState
	pipelines *PipelineCache
	batches   renderer.Batches
	drawCalls int

	// mismatched holds the pipelines already reported as built for another
	// render target.
	mismatched map[uint64]bool

	view, projection mgl32.Mat4
}

// meshBuffers are the GPU buffers of one enqueued item.
type meshBuffers struct {
	vertices, indices uint64
	count             uint32
}

// NewContext returns an uninitialized context calling drv.
func NewContext(drv Driver) *Context {
	return &Context{
		drv:        drv,
		state:      DefaultPipelineState(),
		pipelines:  NewPipelineCache(),
		mismatched: make(map[uint64]bool),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
	}
}

// API implements renderer.Context.
func (c *Context) API() render.API { return render.Vulkan }

// Init creates the instance, surface, logical device and swapchain. The
// first physical device able to draw and present to the surface is used.
func (c *Context) Init(surface render.Surface) error {
	log := wave.Component("Vulkan")
	vs, ok := surface.(render.VulkanSurface)
	if !ok {
		return fmt.Errorf("%w: window cannot host a Vulkan surface", renderer.ErrInit)
	}

	info := InstanceInfo{
		AppName:    AppName,
		Extensions: vs.RequiredInstanceExtensions(),
		Loader:     vs.VulkanProcAddress(),
	}
	if c.validation {
		info.Layers = []string{ValidationLayer}
		info.Extensions = append(slices.Clone(info.Extensions), DebugReportExtension)
	}
	if err := c.drv.CreateInstance(info); err != nil {
		log.Error("cannot create instance", "err", err)
		return fmt.Errorf("%w: create instance: %w", renderer.ErrInit, err)
	}
	if c.validation {
		if err := c.drv.CreateDebugMessenger(debugMessage); err != nil {
			log.Warn("cannot install debug messenger", "err", err)
		}
	}
	if err := c.drv.CreateSurface(vs); err != nil {
		c.drv.Destroy()
		return fmt.Errorf("%w: create surface: %w", renderer.ErrInit, err)
	}

	devices, err := c.drv.PhysicalDevices()
	if err != nil {
		c.drv.Destroy()
		return fmt.Errorf("%w: enumerate devices: %w", renderer.ErrInit, err)
	}
	found := false
	for _, d := range devices {
		family, ok := d.graphicsPresentFamily()
		if !ok {
			log.Debug("skipping device without a graphics and present queue", "device", d.Name)
			continue
		}
		if !slices.Contains(d.Extensions, SwapchainExtension) {
			log.Debug("skipping device without swapchain support", "device", d.Name)
			continue
		}
		c.device, c.queueFamily, found = d, family, true
		break
	}
	if !found {
		c.drv.Destroy()
		log.Error("no suitable physical device", "devices", len(devices))
		return fmt.Errorf("%w: no device can draw and present", renderer.ErrInit)
	}

	c.extensions = make(map[string]bool, len(c.device.Extensions))
	for _, ext := range c.device.Extensions {
		c.extensions[ext] = true
	}
	if err := c.drv.CreateDevice(c.device, c.queueFamily, []string{SwapchainExtension}); err != nil {
		c.drv.Destroy()
		return fmt.Errorf("%w: create device: %w", renderer.ErrInit, err)
	}

	c.surface = vs
	c.width, c.height = surface.FramebufferSize()
	if err := c.buildSwapchain(); err != nil {
		c.drv.Destroy()
		log.Error("cannot create swapchain", "err", err)
		return fmt.Errorf("%w: %w", renderer.ErrInit, err)
	}
	c.initialized = true
	log.Info("Vulkan context created", "device", c.device.Name, "type", c.device.Type,
		"queue_family", c.queueFamily, "extensions", len(c.device.Extensions))
	return nil
}

// debugMessage logs a validation layer message at its severity.
func debugMessage(m DebugMessage) {
	log := wave.Component("Vulkan")
	switch m.Severity {
	case DebugError:
		log.Error(m.Text, "layer", m.Layer, "code", m.Code)
	case DebugWarning:
		log.Warn(m.Text, "layer", m.Layer, "code", m.Code)
	case DebugInfo:
		log.Info(m.Text, "layer", m.Layer, "code", m.Code)
	default:
		log.Debug(m.Text, "layer", m.Layer, "code", m.Code)
	}
}

// HasExtension implements renderer.Context.
func (c *Context) HasExtension(name string) bool { return c.extensions[name] }

// MaxShaderVersion implements renderer.Context.
func (c *Context) MaxShaderVersion() int { return ShaderVersion }

// Device returns the selected physical device.
func (c *Context) Device() PhysicalDevice { return c.device }

// State returns the pipeline state built from the applied hints.
func (c *Context) State() PipelineState { return c.state }

// Pipelines returns the pipeline cache.
func (c *Context) Pipelines() *PipelineCache { return c.pipelines }

// Apply folds a hint into the pipeline state used by programs linked
// afterwards. Call checking before Init enables the validation layer. MSAA
// and sRGB change the render target, so the swapchain is rebuilt and
// programs linked before must be linked again to be drawn.
func (c *Context) Apply(h render.Hint) error {
	if h.Kind == render.HintCallChecking {
		c.validation = h.CallCheck != render.CallCheckNone
		if c.initialized {
			wave.Component("Vulkan").Warn("validation layers are chosen at instance creation", "mode", h.CallCheck)
		}
		return nil
	}
	if !c.initialized {
		return errNoDevice
	}
	if h.Kind == render.HintMSAA && h.Samples > 0 {
		samples, err := c.clampSamples(h.Samples)
		if err != nil {
			return err
		}
		h.Samples = samples
	}
	before := c.target()
	srgb := c.state.SRGB
	if err := c.state.apply(h); err != nil {
		return err
	}
	if c.target().Samples == before.Samples && c.state.SRGB == srgb {
		return nil
	}
	if err := c.buildSwapchain(); err != nil {
		wave.Component("Vulkan").Error("cannot rebuild swapchain", "hint", h.Kind, "err", err)
		return err
	}
	return nil
}

func (c *Context) clampSamples(samples int) (int, error) {
	limit := c.device.MaxSamples
	if limit < 2 {
		wave.Component("Vulkan").Error("multisampling not supported", "max_samples", limit)
		return 0, fmt.Errorf("%w: device supports %d samples", renderer.ErrMSAA, limit)
	}
	if samples > limit {
		wave.Component("Vulkan").Warn("MSAA sample count above maximum, clamping", "requested", samples, "max", limit)
		return limit, nil
	}
	return samples, nil
}

// OnEvent rebuilds the swapchain for the new framebuffer size on resize.
func (c *Context) OnEvent(ev event.Event) error {
	if ev.Kind != event.WindowResize {
		return nil
	}
	c.width, c.height = ev.Width, ev.Height
	if !c.initialized {
		return nil
	}
	if err := c.buildSwapchain(); err != nil {
		wave.Component("Vulkan").Error("cannot rebuild swapchain", "width", ev.Width, "height", ev.Height, "err", err)
		return err
	}
	return nil
}

// FramebufferSize returns the last known framebuffer size.
func (c *Context) FramebufferSize() (int, int) { return c.width, c.height }

// Enqueue uploads the flattened mesh into vertex and index buffers. Empty
// meshes are recorded without GPU objects.
func (c *Context) Enqueue(id uint64, mesh *asset.Mesh, model mgl32.Mat4, prog *shader.Program) error {
	if !c.initialized {
		return errNoDevice
	}
	item, err := c.batches.Add(id, mesh, model, prog)
	if err != nil {
		return err
	}
	if len(item.Vertices) == 0 || len(item.Indices) == 0 {
		return nil
	}

	vertices, err := c.drv.CreateBuffer(gputypes.BufferUsageVertex, asset.VertexBytes(item.Vertices))
	if err != nil {
		_, _ = c.batches.Remove(id)
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	indices, err := c.drv.CreateBuffer(gputypes.BufferUsageIndex, asset.IndexBytes(item.Indices))
	if err != nil {
		c.drv.DestroyBuffer(vertices)
		_, _ = c.batches.Remove(id)
		return fmt.Errorf("create index buffer: %w", err)
	}
	item.Handle = &meshBuffers{vertices: vertices, indices: indices, count: uint32(len(item.Indices))}
	return nil
}

func (c *Context) release(item *renderer.Item) {
	buf, ok := item.Handle.(*meshBuffers)
	if !ok {
		return
	}
	c.drv.DestroyBuffer(buf.indices)
	c.drv.DestroyBuffer(buf.vertices)
	item.Handle = nil
}

// Dequeue implements renderer.Context.
func (c *Context) Dequeue(id uint64) error {
	item, err := c.batches.Remove(id)
	if err != nil {
		return err
	}
	c.release(item)
	return nil
}

// UpdateModel implements renderer.Context.
func (c *Context) UpdateModel(id uint64, model mgl32.Mat4) error {
	item, err := c.batches.Get(id)
	if err != nil {
		return err
	}
	item.Model = model
	return nil
}

// SetVisible implements renderer.Context.
func (c *Context) SetVisible(id uint64, visible bool) error {
	item, err := c.batches.Get(id)
	if err != nil {
		return err
	}
	item.Visible = visible
	return nil
}

// UpdateCamera stores the camera matrices.
func (c *Context) UpdateCamera(view, projection mgl32.Mat4) error {
	c.view, c.projection = view, projection
	return nil
}

// Camera returns the stored view and projection matrices.
func (c *Context) Camera() (view, projection mgl32.Mat4) { return c.view, c.projection }

// Render records one frame with every visible item, one batch per program,
// and presents it. An out-of-date swapchain is rebuilt and the frame
// dropped; a minimized window draws nothing.
func (c *Context) Render() error {
	if !c.initialized {
		return errNoDevice
	}
	if c.surface.VSync() != c.vsync {
		c.stale = true
	}
	if c.stale {
		if err := c.buildSwapchain(); err != nil {
			return err
		}
		if c.stale {
			return nil
		}
	}

	frame := &Frame{Clear: ClearColor, Camera: cameraBytes(c.view, c.projection)}
	target := c.target()
	for _, batch := range c.batches.All() {
		prog := batch.Program
		if prog.State() != shader.Sent {
			continue
		}
		b, ok := prog.Backend().(*shaderBackend)
		if !ok || !c.drawable(b, target) {
			continue
		}
		_, hasModel := b.layout.lookup(ModelUniform)
		for _, item := range batch.Items {
			buf, ok := item.Handle.(*meshBuffers)
			if !item.Visible || !ok {
				continue
			}
			if hasModel {
				if err := prog.UploadData(ModelUniform, shader.Mat4(item.Model)); err != nil {
					return err
				}
			}
			frame.Draws = append(frame.Draws, Draw{
				Pipeline: b.handle,
				Push:     b.PushConstants(),
				Vertices: buf.vertices,
				Indices:  buf.indices,
				Count:    buf.count,
			})
		}
	}

	err := c.drv.DrawFrame(frame)
	if errors.Is(err, ErrSwapchainOutOfDate) {
		wave.Component("Vulkan").Debug("swapchain out of date, rebuilding")
		return c.buildSwapchain()
	}
	if err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	c.drawCalls = len(frame.Draws)
	return nil
}

// drawable reports whether the program's pipeline renders into target. A
// mismatch is logged once per pipeline.
func (c *Context) drawable(b *shaderBackend, target RenderTarget) bool {
	if b.target == target {
		return true
	}
	if !c.mismatched[b.handle] {
		wave.Component("Vulkan").Warn("pipeline built for another render target, link the program again",
			"pipeline", b.handle, "samples", b.target.Samples, "want_samples", target.Samples,
			"format", b.target.Color, "want_format", target.Color)
		c.mismatched[b.handle] = true
	}
	return false
}

func cameraBytes(view, projection mgl32.Mat4) []byte {
	b := make([]byte, 0, 2*16*4)
	for _, m := range [2]mgl32.Mat4{view, projection} {
		for _, f := range m {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b
}

// Flush releases every enqueued item.
func (c *Context) Flush() error {
	for _, item := range c.batches.Clear() {
		c.release(item)
	}
	return nil
}

// Stats implements renderer.Context.
func (c *Context) Stats() renderer.Stats {
	s := c.batches.Stats()
	s.DrawCalls = c.drawCalls
	return s
}

// Free destroys the geometry, every pipeline, the swapchain and the device.
func (c *Context) Free() error {
	if !c.initialized {
		return nil
	}
	for _, item := range c.batches.Clear() {
		c.release(item)
	}
	c.pipelines.DestroyAll(c.drv)
	c.drv.DestroySwapchain()
	c.drv.Destroy()
	c.initialized = false
	wave.Component("Vulkan").Debug("Vulkan context freed")
	return nil
}

// Extensions returns the device extensions, sorted.
func (c *Context) Extensions() []string {
	out := make([]string, 0, len(c.extensions))
	for ext := range c.extensions {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

var errNoDevice = fmt.Errorf("%w: context not initialized", renderer.ErrInvalidState)

var _ renderer.Context = (*Context)(nil)

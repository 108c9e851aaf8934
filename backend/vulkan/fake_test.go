package vulkan

import (
	"context"
	"errors"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

type fakeDriver struct {
	instance InstanceInfo
	devices  []PhysicalDevice
	chosen   PhysicalDevice
	family   uint32
	enabled  []string

	failInstance  error
	failPipeline  error
	failSwapchain error
	failBuffer    error

	messenger func(DebugMessage)
	support   SurfaceSupport
	swapchain *SwapchainConfig
	builds    []SwapchainConfig
	frames    []*Frame
	outOfDate int

	next      uint64
	modules   map[uint64][]uint32
	pipelines map[uint64]PipelineDesc
	buffers   map[uint64][]byte
	created   int
	destroyed int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		devices: []PhysicalDevice{
			{
				Index:         0,
				Name:          "Compute Only",
				QueueFamilies: []QueueFamily{{Index: 0, Graphics: false, Present: false}},
			},
			{
				Index:      1,
				Name:       "Fake GPU",
				Type:       gputypes.DeviceTypeDiscreteGPU,
				MaxSamples: 8,
				Extensions: []string{SwapchainExtension, "VK_KHR_dynamic_rendering"},
				QueueFamilies: []QueueFamily{
					{Index: 0, Graphics: true, Present: false},
					{Index: 2, Graphics: true, Present: true},
				},
			},
		},
		support: SurfaceSupport{
			Formats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb},
			PresentModes: []gputypes.PresentMode{
				gputypes.PresentModeFifo, gputypes.PresentModeMailbox, gputypes.PresentModeImmediate,
			},
			Current:   gputypes.Extent3D{Width: UndefinedExtent, Height: UndefinedExtent},
			Min:       gputypes.Extent3D{Width: 1, Height: 1},
			Max:       gputypes.Extent3D{Width: 4096, Height: 4096},
			MinImages: 2,
			MaxImages: 3,
		},
		modules:   make(map[uint64][]uint32),
		pipelines: make(map[uint64]PipelineDesc),
		buffers:   make(map[uint64][]byte),
	}
}

func (d *fakeDriver) CreateInstance(info InstanceInfo) error {
	d.instance = info
	return d.failInstance
}

func (d *fakeDriver) CreateSurface(render.VulkanSurface) error { return nil }

func (d *fakeDriver) PhysicalDevices() ([]PhysicalDevice, error) { return d.devices, nil }

func (d *fakeDriver) CreateDevice(dev PhysicalDevice, family uint32, extensions []string) error {
	d.chosen, d.family, d.enabled = dev, family, extensions
	return nil
}

func (d *fakeDriver) CreateShaderModule(code []uint32) (uint64, error) {
	d.next++
	d.modules[d.next] = code
	return d.next, nil
}

func (d *fakeDriver) DestroyShaderModule(module uint64) { delete(d.modules, module) }

func (d *fakeDriver) CreatePipeline(desc PipelineDesc) (uint64, error) {
	if d.failPipeline != nil {
		return 0, d.failPipeline
	}
	d.next++
	d.pipelines[d.next] = desc
	d.created++
	return d.next, nil
}

func (d *fakeDriver) DestroyPipeline(pipeline uint64) { delete(d.pipelines, pipeline) }

func (d *fakeDriver) CreateDebugMessenger(fn func(DebugMessage)) error {
	d.messenger = fn
	return nil
}

func (d *fakeDriver) SurfaceSupport() (SurfaceSupport, error) { return d.support, nil }

func (d *fakeDriver) CreateSwapchain(cfg SwapchainConfig) (int, error) {
	if d.failSwapchain != nil {
		return 0, d.failSwapchain
	}
	d.swapchain = &cfg
	d.builds = append(d.builds, cfg)
	return int(cfg.Images), nil
}

func (d *fakeDriver) DestroySwapchain() { d.swapchain = nil }

func (d *fakeDriver) CreateBuffer(_ gputypes.BufferUsage, data []byte) (uint64, error) {
	if d.failBuffer != nil {
		return 0, d.failBuffer
	}
	d.next++
	d.buffers[d.next] = append([]byte(nil), data...)
	return d.next, nil
}

func (d *fakeDriver) DestroyBuffer(buffer uint64) { delete(d.buffers, buffer) }

func (d *fakeDriver) DrawFrame(frame *Frame) error {
	if d.outOfDate > 0 {
		d.outOfDate--
		return ErrSwapchainOutOfDate
	}
	d.frames = append(d.frames, frame)
	return nil
}

func (d *fakeDriver) lastFrame() *Frame {
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

func (d *fakeDriver) Destroy() { d.destroyed++ }

type fakeSurface struct {
	w, h  int
	vsync bool
}

func (s fakeSurface) FramebufferSize() (int, int)              { return s.w, s.h }
func (s fakeSurface) Show()                                    {}
func (s fakeSurface) Hide()                                    {}
func (s fakeSurface) ProcAddress(string) unsafe.Pointer        { return nil }
func (s fakeSurface) VulkanProcAddress() unsafe.Pointer        { return nil }
func (s fakeSurface) CreateVulkanSurface(any) (uintptr, error) { return 1, nil }
func (s fakeSurface) VSync() bool                              { return s.vsync }

func (s fakeSurface) RequiredInstanceExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

type glSurface struct{}

func (glSurface) FramebufferSize() (int, int)       { return 1, 1 }
func (glSurface) Show()                             {}
func (glSurface) Hide()                             {}
func (glSurface) ProcAddress(string) unsafe.Pointer { return nil }

// fakeCompiler returns a fixed module and counts its calls. Vertex modules
// declare the default push-constant block.
type fakeCompiler struct {
	calls int
	err   error
}

func (c *fakeCompiler) Compile(_ context.Context, kind shader.StageKind, name, src string) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if kind == shader.Vertex {
		return shader.Bytes(defaultPushModule()), nil
	}
	return shader.Bytes([]uint32{shader.SpirVMagic, 0x00010000, 0, uint32(kind) + 1, 0}), nil
}

var errDriver = errors.New("driver failure")

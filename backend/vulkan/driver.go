package vulkan

import (
	"errors"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

// SwapchainExtension is the device extension required to present.
const SwapchainExtension = "VK_KHR_swapchain"

// ValidationLayer is enabled when call checking is requested before Init.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// DebugReportExtension is the instance extension carrying validation
// messages, enabled with the validation layer.
const DebugReportExtension = "VK_EXT_debug_report"

// ErrSwapchainOutOfDate is returned by DrawFrame when the swapchain no
// longer matches the surface and must be rebuilt.
var ErrSwapchainOutOfDate = errors.New("vulkan: swapchain out of date")

// Driver is the subset of Vulkan used by the backend. Handles are opaque
// non-zero integers.
type Driver interface {
	// CreateInstance creates the instance.
	CreateInstance(info InstanceInfo) error

	// CreateSurface creates the presentation surface of a window.
	CreateSurface(surface render.VulkanSurface) error

	// PhysicalDevices enumerates the devices of the instance.
	PhysicalDevices() ([]PhysicalDevice, error)

	// CreateDevice creates the logical device and its queue.
	CreateDevice(dev PhysicalDevice, queueFamily uint32, extensions []string) error

	CreateShaderModule(code []uint32) (uint64, error)
	DestroyShaderModule(module uint64)

	CreatePipeline(desc PipelineDesc) (uint64, error)
	DestroyPipeline(pipeline uint64)

	// CreateDebugMessenger routes validation layer messages to fn.
	CreateDebugMessenger(fn func(DebugMessage)) error

	// SurfaceSupport queries the formats, present modes and extents the
	// surface supports on the device.
	SurfaceSupport() (SurfaceSupport, error)

	// CreateSwapchain creates the swapchain with its image views, depth and
	// multisample attachments, render pass and framebuffers. An existing
	// swapchain is handed over and destroyed. It returns the image count.
	CreateSwapchain(cfg SwapchainConfig) (int, error)
	DestroySwapchain()

	// CreateBuffer creates a host-visible buffer holding data.
	CreateBuffer(usage gputypes.BufferUsage, data []byte) (uint64, error)
	DestroyBuffer(buffer uint64)

	// DrawFrame records, submits and presents one frame. It returns
	// ErrSwapchainOutOfDate when the swapchain must be rebuilt first.
	DrawFrame(frame *Frame) error

	// Destroy waits for the device to go idle and releases the device, the
	// surface and the instance.
	Destroy()
}

// InstanceInfo configures instance creation.
type InstanceInfo struct {
	AppName    string
	Extensions []string
	Layers     []string

	// Loader is the vkGetInstanceProcAddr entry point of the window system.
	Loader unsafe.Pointer
}

// DebugSeverity ranks validation messages.
type DebugSeverity uint8

const (
	DebugVerbose DebugSeverity = iota
	DebugInfo
	DebugWarning
	DebugError
)

// DebugMessage is one message of the validation layer.
type DebugMessage struct {
	Severity DebugSeverity
	Layer    string
	Code     int32
	Text     string
}

// SurfaceSupport is what a surface can present on the selected device.
// Formats only lists formats in the sRGB nonlinear color space.
type SurfaceSupport struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode

	// Current is the surface size, or UndefinedExtent when the swapchain
	// decides it.
	Current, Min, Max gputypes.Extent3D

	// MaxImages is 0 when the image count is unbounded.
	MinImages, MaxImages uint32
}

// UndefinedExtent is the width of SurfaceSupport.Current when the surface
// size follows the swapchain.
const UndefinedExtent = ^uint32(0)

// SwapchainConfig describes the swapchain and its attachments.
type SwapchainConfig struct {
	Format      gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat
	PresentMode gputypes.PresentMode
	Extent      gputypes.Extent3D
	Images      uint32
	Samples     uint32
}

// Frame is everything DrawFrame records.
type Frame struct {
	Clear gputypes.Color

	// Camera is written to the uniform buffer at binding 0: the view then
	// the projection matrix.
	Camera []byte

	Draws []Draw
}

// Draw is one indexed draw.
type Draw struct {
	Pipeline uint64
	Push     []byte
	Vertices uint64
	Indices  uint64
	Count    uint32
}

// PhysicalDevice describes an enumerated GPU.
type PhysicalDevice struct {
	Index         int
	Name          string
	Type          gputypes.DeviceType
	APIVersion    uint32
	MaxSamples    int
	Extensions    []string
	QueueFamilies []QueueFamily
}

// QueueFamily describes one queue family of a PhysicalDevice.
type QueueFamily struct {
	Index    uint32
	Graphics bool
	Present  bool
}

// PipelineDesc describes a graphics pipeline.
type PipelineDesc struct {
	Stages      []ModuleStage
	State       PipelineState
	Layout      gputypes.VertexBufferLayout
	PushSize    uint32
	PushVisible gputypes.ShaderStage
	Target      RenderTarget
}

// RenderTarget is the attachment layout of the frame render pass. A
// pipeline only draws into a swapchain with the same target.
type RenderTarget struct {
	Color   gputypes.TextureFormat
	Depth   gputypes.TextureFormat
	Samples uint32
}

// ModuleStage binds a shader module to a pipeline stage.
type ModuleStage struct {
	Kind       shader.StageKind
	Module     uint64
	EntryPoint string
	CodeHash   uint64
}

// graphicsPresentFamily returns the first queue family able to draw and
// present.
func (d PhysicalDevice) graphicsPresentFamily() (uint32, bool) {
	for _, q := range d.QueueFamilies {
		if q.Graphics && q.Present {
			return q.Index, true
		}
	}
	return 0, false
}

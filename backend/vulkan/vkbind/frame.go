//go:build vulkan

package vkbind

import (
	"errors"
	"unsafe"

	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"

	"github.com/wave-engine/wave/backend/vulkan"
)

const cameraSize = 2 * 16 * 4

type buffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	mapped unsafe.Pointer
	size   int
}

type image struct {
	handle vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
}

type swapchain struct {
	handle       vk.Swapchain
	extent       vk.Extent2D
	samples      uint32
	views        []vk.ImageView
	depth        image
	color        image
	pass         vk.RenderPass
	framebuffers []vk.Framebuffer
}

// CreateDebugMessenger implements vulkan.Driver with a debug report
// callback.
func (d *Driver) CreateDebugMessenger(fn func(vulkan.DebugMessage)) error {
	d.debugFn = fn
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(d.instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit | vk.DebugReportDebugBit),
		PfnCallback: d.debugReport,
	}, nil, &cb)
	if err := check(ret, "create debug report callback"); err != nil {
		return err
	}
	d.debug = cb
	return nil
}

func (d *Driver) debugReport(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _ uint64, _ uint64,
	code int32, layer string, message string, _ unsafe.Pointer) vk.Bool32 {
	if d.debugFn == nil {
		return vk.False
	}
	sev := vulkan.DebugVerbose
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		sev = vulkan.DebugError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		sev = vulkan.DebugWarning
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		sev = vulkan.DebugInfo
	}
	d.debugFn(vulkan.DebugMessage{Severity: sev, Layer: layer, Code: code, Text: message})
	return vk.False
}

// SurfaceSupport implements vulkan.Driver.
func (d *Driver) SurfaceSupport() (vulkan.SurfaceSupport, error) {
	var caps vk.SurfaceCapabilities
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu, d.surface, &caps), "surface capabilities"); err != nil {
		return vulkan.SurfaceSupport{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	out := vulkan.SurfaceSupport{
		Current:   gputypes.Extent3D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height, DepthOrArrayLayers: 1},
		Min:       gputypes.Extent3D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height, DepthOrArrayLayers: 1},
		Max:       gputypes.Extent3D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height, DepthOrArrayLayers: 1},
		MinImages: caps.MinImageCount,
		MaxImages: caps.MaxImageCount,
	}

	var n uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &n, nil), "surface formats"); err != nil {
		return out, err
	}
	formats := make([]vk.SurfaceFormat, n)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &n, formats), "surface formats"); err != nil {
		return out, err
	}
	for _, f := range formats {
		f.Deref()
		if f.ColorSpace != vk.ColorSpaceSrgbNonlinear {
			continue
		}
		if tf, ok := fromVkFormat(f.Format); ok {
			out.Formats = append(out.Formats, tf)
		}
	}

	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &n, nil), "present modes"); err != nil {
		return out, err
	}
	modes := make([]vk.PresentMode, n)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &n, modes), "present modes"); err != nil {
		return out, err
	}
	for _, m := range modes {
		if pm, ok := fromVkPresentMode(m); ok {
			out.PresentModes = append(out.PresentModes, pm)
		}
	}
	return out, nil
}

// CreateSwapchain implements vulkan.Driver. The previous swapchain is passed
// as the old one and destroyed once the new one exists.
func (d *Driver) CreateSwapchain(cfg vulkan.SwapchainConfig) (int, error) {
	vk.DeviceWaitIdle(d.device)
	var caps vk.SurfaceCapabilities
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu, d.surface, &caps), "surface capabilities"); err != nil {
		return 0, err
	}
	caps.Deref()

	d.releaseAttachments()
	old := d.swap.handle
	format := vkFormat(cfg.Format)
	extent := vk.Extent2D{Width: cfg.Extent.Width, Height: cfg.Extent.Height}

	var sc vk.Swapchain
	ret := vk.CreateSwapchain(d.device, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface,
		MinImageCount:    cfg.Images,
		ImageFormat:      format,
		ImageColorSpace:  vk.ColorSpaceSrgbNonlinear,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vkPresentMode(cfg.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &sc)
	if old != vk.NullSwapchain {
		vk.DestroySwapchain(d.device, old, nil)
		d.swap.handle = vk.NullSwapchain
	}
	if err := check(ret, "create swapchain"); err != nil {
		return 0, err
	}
	d.swap.handle, d.swap.extent, d.swap.samples = sc, extent, max(cfg.Samples, 1)

	var n uint32
	if err := check(vk.GetSwapchainImages(d.device, sc, &n, nil), "swapchain images"); err != nil {
		return 0, err
	}
	images := make([]vk.Image, n)
	if err := check(vk.GetSwapchainImages(d.device, sc, &n, images), "swapchain images"); err != nil {
		return 0, err
	}
	for _, img := range images {
		view, err := d.imageView(img, format, vk.ImageAspectColorBit)
		if err != nil {
			return 0, err
		}
		d.swap.views = append(d.swap.views, view)
	}

	samples := vk.SampleCountFlagBits(d.swap.samples)
	depth := vkFormat(cfg.DepthFormat)
	var err error
	d.swap.depth, err = d.attachment(extent, depth, samples,
		vk.ImageUsageDepthStencilAttachmentBit, vk.ImageAspectDepthBit)
	if err != nil {
		return 0, err
	}
	if d.swap.samples > 1 {
		d.swap.color, err = d.attachment(extent, format, samples,
			vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransientAttachmentBit, vk.ImageAspectColorBit)
		if err != nil {
			return 0, err
		}
	}

	d.swap.pass, err = d.renderPass(vulkan.RenderTarget{Color: cfg.Format, Depth: cfg.DepthFormat, Samples: d.swap.samples})
	if err != nil {
		return 0, err
	}
	for _, view := range d.swap.views {
		attachments := []vk.ImageView{view, d.swap.depth.view}
		if d.swap.samples > 1 {
			attachments = []vk.ImageView{d.swap.color.view, d.swap.depth.view, view}
		}
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(d.device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      d.swap.pass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}, nil, &fb)
		if err := check(ret, "create framebuffer"); err != nil {
			return 0, err
		}
		d.swap.framebuffers = append(d.swap.framebuffers, fb)
	}
	return len(images), nil
}

// DestroySwapchain implements vulkan.Driver.
func (d *Driver) DestroySwapchain() {
	if d.device == nil {
		return
	}
	vk.DeviceWaitIdle(d.device)
	d.releaseAttachments()
	if d.swap.handle != vk.NullSwapchain {
		vk.DestroySwapchain(d.device, d.swap.handle, nil)
		d.swap.handle = vk.NullSwapchain
	}
}

// releaseAttachments destroys everything built on the swapchain images.
func (d *Driver) releaseAttachments() {
	for _, fb := range d.swap.framebuffers {
		vk.DestroyFramebuffer(d.device, fb, nil)
	}
	d.swap.framebuffers = nil
	if d.swap.pass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.device, d.swap.pass, nil)
		d.swap.pass = vk.NullRenderPass
	}
	for _, view := range d.swap.views {
		vk.DestroyImageView(d.device, view, nil)
	}
	d.swap.views = nil
	d.destroyImage(&d.swap.depth)
	d.destroyImage(&d.swap.color)
}

func (d *Driver) imageView(img vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(d.device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	return view, check(ret, "create image view")
}

// attachment creates a device-local image with a view, used for the depth
// and multisampled color attachments.
func (d *Driver) attachment(extent vk.Extent2D, format vk.Format, samples vk.SampleCountFlagBits,
	usage vk.ImageUsageFlagBits, aspect vk.ImageAspectFlagBits) (image, error) {
	var img image
	ret := vk.CreateImage(d.device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       samples,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img.handle)
	if err := check(ret, "create image"); err != nil {
		return img, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, img.handle, &reqs)
	reqs.Deref()
	memType, ok := d.memoryType(reqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		d.destroyImage(&img)
		return img, errors.New("vkbind: no device-local memory for attachment")
	}
	ret = vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &img.memory)
	if err := check(ret, "allocate image memory"); err != nil {
		d.destroyImage(&img)
		return img, err
	}
	if err := check(vk.BindImageMemory(d.device, img.handle, img.memory, 0), "bind image memory"); err != nil {
		d.destroyImage(&img)
		return img, err
	}
	view, err := d.imageView(img.handle, format, aspect)
	img.view = view
	if err != nil {
		d.destroyImage(&img)
	}
	return img, err
}

func (d *Driver) destroyImage(img *image) {
	if img.view != vk.NullImageView {
		vk.DestroyImageView(d.device, img.view, nil)
	}
	if img.handle != vk.NullImage {
		vk.DestroyImage(d.device, img.handle, nil)
	}
	if img.memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.device, img.memory, nil)
	}
	*img = image{}
}

// memoryType returns the first memory type allowed by bits that has every
// flag in want.
func (d *Driver) memoryType(bits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < d.memProps.MemoryTypeCount; i++ {
		if bits&(1<<i) == 0 {
			continue
		}
		d.memProps.MemoryTypes[i].Deref()
		flags := d.memProps.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(want) == vk.MemoryPropertyFlags(want) {
			return i, true
		}
	}
	return 0, false
}

// newBuffer creates a persistently mapped host-visible buffer.
func (d *Driver) newBuffer(usage vk.BufferUsageFlagBits, size int) (buffer, error) {
	b := buffer{size: size}
	ret := vk.CreateBuffer(d.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &b.handle)
	if err := check(ret, "create buffer"); err != nil {
		return b, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, b.handle, &reqs)
	reqs.Deref()
	memType, ok := d.memoryType(reqs.MemoryTypeBits, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if !ok {
		d.freeBuffer(&b)
		return b, errors.New("vkbind: no host-visible coherent memory")
	}
	ret = vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &b.memory)
	if err := check(ret, "allocate buffer memory"); err != nil {
		d.freeBuffer(&b)
		return b, err
	}
	if err := check(vk.BindBufferMemory(d.device, b.handle, b.memory, 0), "bind buffer memory"); err != nil {
		d.freeBuffer(&b)
		return b, err
	}
	if err := check(vk.MapMemory(d.device, b.memory, 0, vk.DeviceSize(size), 0, &b.mapped), "map buffer"); err != nil {
		d.freeBuffer(&b)
		return b, err
	}
	return b, nil
}

func (b *buffer) write(data []byte) {
	copy(unsafe.Slice((*byte)(b.mapped), b.size), data)
}

func (d *Driver) freeBuffer(b *buffer) {
	if b.mapped != nil {
		vk.UnmapMemory(d.device, b.memory)
	}
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(d.device, b.handle, nil)
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.device, b.memory, nil)
	}
	*b = buffer{}
}

// CreateBuffer implements vulkan.Driver.
func (d *Driver) CreateBuffer(usage gputypes.BufferUsage, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, errors.New("vkbind: empty buffer")
	}
	b, err := d.newBuffer(bufferUsage(usage), len(data))
	if err != nil {
		return 0, err
	}
	b.write(data)

	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.id()
	d.buffers[id] = b
	return id, nil
}

// DestroyBuffer implements vulkan.Driver. The device is drained first since
// the buffer may be read by the frame in flight.
func (d *Driver) DestroyBuffer(id uint64) {
	d.mu.Lock()
	b, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		vk.DeviceWaitIdle(d.device)
		d.freeBuffer(&b)
	}
}

// createFrameObjects creates the command buffer, synchronization objects
// and the camera uniform buffer with its descriptor set.
func (d *Driver) createFrameObjects(queueFamily uint32) error {
	ret := vk.CreateCommandPool(d.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &d.cmdPool)
	if err := check(ret, "create command pool"); err != nil {
		return err
	}
	cmds := make([]vk.CommandBuffer, 1)
	ret = vk.AllocateCommandBuffers(d.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmds)
	if err := check(ret, "allocate command buffer"); err != nil {
		return err
	}
	d.cmd = cmds[0]

	for _, sem := range []*vk.Semaphore{&d.acquired, &d.rendered} {
		ret = vk.CreateSemaphore(d.device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, sem)
		if err := check(ret, "create semaphore"); err != nil {
			return err
		}
	}
	ret = vk.CreateFence(d.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &d.inFlight)
	if err := check(ret, "create fence"); err != nil {
		return err
	}

	ret = vk.CreateDescriptorSetLayout(d.device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}},
	}, nil, &d.setLayout)
	if err := check(ret, "create descriptor set layout"); err != nil {
		return err
	}
	ret = vk.CreateDescriptorPool(d.device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1}},
	}, nil, &d.descPool)
	if err := check(ret, "create descriptor pool"); err != nil {
		return err
	}
	ret = vk.AllocateDescriptorSets(d.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.descPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.setLayout},
	}, &d.descSet)
	if err := check(ret, "allocate descriptor set"); err != nil {
		return err
	}

	var err error
	d.camera, err = d.newBuffer(vk.BufferUsageUniformBufferBit, cameraSize)
	if err != nil {
		return err
	}
	vk.UpdateDescriptorSets(d.device, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          d.descSet,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: d.camera.handle,
			Range:  vk.DeviceSize(cameraSize),
		}},
	}}, 0, nil)
	return nil
}

func (d *Driver) destroyFrameObjects() {
	d.freeBuffer(&d.camera)
	if d.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.device, d.descPool, nil)
		d.descPool = vk.NullDescriptorPool
	}
	if d.setLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.device, d.setLayout, nil)
		d.setLayout = vk.NullDescriptorSetLayout
	}
	if d.inFlight != vk.NullFence {
		vk.DestroyFence(d.device, d.inFlight, nil)
		d.inFlight = vk.NullFence
	}
	for _, sem := range []*vk.Semaphore{&d.acquired, &d.rendered} {
		if *sem != vk.NullSemaphore {
			vk.DestroySemaphore(d.device, *sem, nil)
			*sem = vk.NullSemaphore
		}
	}
	if d.cmdPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.device, d.cmdPool, nil)
		d.cmdPool = vk.NullCommandPool
	}
}

// DrawFrame implements vulkan.Driver. One frame is in flight at a time.
func (d *Driver) DrawFrame(frame *vulkan.Frame) error {
	if d.swap.handle == vk.NullSwapchain {
		return vulkan.ErrSwapchainOutOfDate
	}
	fences := []vk.Fence{d.inFlight}
	if err := check(vk.WaitForFences(d.device, 1, fences, vk.True, vk.MaxUint64), "wait for frame"); err != nil {
		return err
	}

	var idx uint32
	ret := vk.AcquireNextImage(d.device, d.swap.handle, vk.MaxUint64, d.acquired, vk.NullFence, &idx)
	switch ret {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return vulkan.ErrSwapchainOutOfDate
	default:
		return check(ret, "acquire image")
	}
	if err := check(vk.ResetFences(d.device, 1, fences), "reset fence"); err != nil {
		return err
	}
	d.camera.write(frame.Camera)

	if err := d.record(frame, d.swap.framebuffers[idx]); err != nil {
		return err
	}

	ret = vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{d.acquired},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{d.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{d.rendered},
	}}, d.inFlight)
	if err := check(ret, "queue submit"); err != nil {
		return err
	}

	ret = vk.QueuePresent(d.queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{d.rendered},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.swap.handle},
		PImageIndices:      []uint32{idx},
	})
	switch ret {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return vulkan.ErrSwapchainOutOfDate
	default:
		return check(ret, "present")
	}
}

func (d *Driver) record(frame *vulkan.Frame, fb vk.Framebuffer) error {
	cmd := d.cmd
	if err := check(vk.ResetCommandBuffer(cmd, 0), "reset command buffer"); err != nil {
		return err
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := check(ret, "begin command buffer"); err != nil {
		return err
	}

	clear := make([]vk.ClearValue, 3)
	clear[0].SetColor([]float32{float32(frame.Clear.R), float32(frame.Clear.G), float32(frame.Clear.B), float32(frame.Clear.A)})
	clear[1].SetDepthStencil(1, 0)
	clear[2] = clear[0]
	area := vk.Rect2D{Extent: d.swap.extent}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      d.swap.pass,
		Framebuffer:     fb,
		RenderArea:      area,
		ClearValueCount: uint32(len(clear)),
		PClearValues:    clear,
	}, vk.SubpassContentsInline)

	// A negative height keeps the OpenGL clip space of the camera matrices.
	w, h := float32(d.swap.extent.Width), float32(d.swap.extent.Height)
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{Y: h, Width: w, Height: -h, MinDepth: 0, MaxDepth: 1}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{area})

	d.mu.Lock()
	for _, draw := range frame.Draws {
		p, ok := d.pipelines[draw.Pipeline]
		vb, vok := d.buffers[draw.Vertices]
		ib, iok := d.buffers[draw.Indices]
		if !ok || !vok || !iok {
			continue
		}
		vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.handle)
		vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, p.layout, 0, 1, []vk.DescriptorSet{d.descSet}, 0, nil)
		if len(draw.Push) > 0 && p.push != 0 {
			vk.CmdPushConstants(cmd, p.layout, p.push, 0, uint32(len(draw.Push)), unsafe.Pointer(&draw.Push[0]))
		}
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{vb.handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cmd, ib.handle, 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(cmd, draw.Count, 1, 0, 0, 0)
	}
	d.mu.Unlock()

	vk.CmdEndRenderPass(cmd)
	return check(vk.EndCommandBuffer(cmd), "end command buffer")
}

func bufferUsage(u gputypes.BufferUsage) vk.BufferUsageFlagBits {
	var flags vk.BufferUsageFlagBits
	if u&gputypes.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if u&gputypes.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if u&gputypes.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	return flags
}

func vkFormat(f gputypes.TextureFormat) vk.Format {
	switch f {
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return vk.FormatB8g8r8a8Srgb
	case gputypes.TextureFormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return vk.FormatR8g8b8a8Srgb
	case gputypes.TextureFormatDepth32Float:
		return vk.FormatD32Sfloat
	default:
		return vk.FormatB8g8r8a8Unorm
	}
}

func fromVkFormat(f vk.Format) (gputypes.TextureFormat, bool) {
	switch f {
	case vk.FormatB8g8r8a8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, true
	case vk.FormatB8g8r8a8Srgb:
		return gputypes.TextureFormatBGRA8UnormSrgb, true
	case vk.FormatR8g8b8a8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, true
	case vk.FormatR8g8b8a8Srgb:
		return gputypes.TextureFormatRGBA8UnormSrgb, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

func vkPresentMode(m gputypes.PresentMode) vk.PresentMode {
	switch m {
	case gputypes.PresentModeMailbox:
		return vk.PresentModeMailbox
	case gputypes.PresentModeImmediate:
		return vk.PresentModeImmediate
	case gputypes.PresentModeFifoRelaxed:
		return vk.PresentModeFifoRelaxed
	default:
		return vk.PresentModeFifo
	}
}

func fromVkPresentMode(m vk.PresentMode) (gputypes.PresentMode, bool) {
	switch m {
	case vk.PresentModeFifo:
		return gputypes.PresentModeFifo, true
	case vk.PresentModeFifoRelaxed:
		return gputypes.PresentModeFifoRelaxed, true
	case vk.PresentModeImmediate:
		return gputypes.PresentModeImmediate, true
	case vk.PresentModeMailbox:
		return gputypes.PresentModeMailbox, true
	default:
		return gputypes.PresentModeUndefined, false
	}
}

//go:build vulkan

// Package vkbind implements the Vulkan driver on top of goki/vulkan and
// registers it with the renderer. Import it for its side effect and build
// with the "vulkan" tag.
package vkbind

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	vk "github.com/goki/vulkan"

	"github.com/wave-engine/wave/backend/vulkan"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

func init() {
	renderer.Register(render.Vulkan, func() renderer.Context {
		return vulkan.NewContext(&Driver{})
	})
}

var loaderOnce sync.Once

var _ vulkan.Driver = (*Driver)(nil)

// Driver implements vulkan.Driver. Native handles are kept in maps keyed by
// the opaque ids handed to the backend.
type Driver struct {
	instance vk.Instance
	surface  vk.Surface
	gpus     []vk.PhysicalDevice
	gpu      vk.PhysicalDevice
	memProps vk.PhysicalDeviceMemoryProperties
	device   vk.Device
	queue    vk.Queue
	swap     swapchain
	debug    vk.DebugReportCallback
	debugFn  func(vulkan.DebugMessage)

	cmdPool            vk.CommandPool
	cmd                vk.CommandBuffer
	acquired, rendered vk.Semaphore
	inFlight           vk.Fence
	setLayout          vk.DescriptorSetLayout
	descPool           vk.DescriptorPool
	descSet            vk.DescriptorSet
	camera             buffer

	mu        sync.Mutex
	next      uint64
	modules   map[uint64]vk.ShaderModule
	pipelines map[uint64]pipeline
	buffers   map[uint64]buffer
}

type pipeline struct {
	handle vk.Pipeline
	layout vk.PipelineLayout
	pass   vk.RenderPass
	push   vk.ShaderStageFlags
}

func check(ret vk.Result, op string) error {
	if ret == vk.Success {
		return nil
	}
	return fmt.Errorf("vkbind: %s: result %d", op, ret)
}

func cstrings(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + "\x00"
	}
	return out
}

// CreateInstance implements vulkan.Driver.
func (d *Driver) CreateInstance(info vulkan.InstanceInfo) error {
	if info.Loader == nil {
		return errors.New("vkbind: window provides no Vulkan loader")
	}
	var initErr error
	loaderOnce.Do(func() {
		vk.SetGetInstanceProcAddr(info.Loader)
		initErr = vk.Init()
	})
	if initErr != nil {
		return fmt.Errorf("vkbind: init loader: %w", initErr)
	}

	exts := cstrings(info.Extensions)
	layers := cstrings(info.Layers)
	var inst vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 2, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   info.AppName + "\x00",
			PEngineName:        info.AppName + "\x00",
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &inst)
	if err := check(ret, "create instance"); err != nil {
		return err
	}
	if err := vk.InitInstance(inst); err != nil {
		vk.DestroyInstance(inst, nil)
		return fmt.Errorf("vkbind: init instance: %w", err)
	}
	d.instance = inst
	return nil
}

// CreateSurface implements vulkan.Driver.
func (d *Driver) CreateSurface(surface render.VulkanSurface) error {
	ptr, err := surface.CreateVulkanSurface(d.instance)
	if err != nil {
		return fmt.Errorf("vkbind: create surface: %w", err)
	}
	d.surface = vk.SurfaceFromPointer(ptr)
	return nil
}

// PhysicalDevices implements vulkan.Driver.
func (d *Driver) PhysicalDevices() ([]vulkan.PhysicalDevice, error) {
	var n uint32
	if err := check(vk.EnumeratePhysicalDevices(d.instance, &n, nil), "enumerate devices"); err != nil {
		return nil, err
	}
	d.gpus = make([]vk.PhysicalDevice, n)
	if err := check(vk.EnumeratePhysicalDevices(d.instance, &n, d.gpus), "enumerate devices"); err != nil {
		return nil, err
	}

	out := make([]vulkan.PhysicalDevice, 0, n)
	for i, gpu := range d.gpus {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()
		props.Limits.Deref()

		out = append(out, vulkan.PhysicalDevice{
			Index:         i,
			Name:          vk.ToString(props.DeviceName[:]),
			Type:          deviceType(props.DeviceType),
			APIVersion:    props.ApiVersion,
			MaxSamples:    maxSamples(props.Limits.FramebufferColorSampleCounts & props.Limits.FramebufferDepthSampleCounts),
			Extensions:    d.deviceExtensions(gpu),
			QueueFamilies: d.queueFamilies(gpu),
		})
	}
	return out, nil
}

func (d *Driver) deviceExtensions(gpu vk.PhysicalDevice) []string {
	var n uint32
	if vk.EnumerateDeviceExtensionProperties(gpu, "", &n, nil) != vk.Success {
		return nil
	}
	list := make([]vk.ExtensionProperties, n)
	if vk.EnumerateDeviceExtensionProperties(gpu, "", &n, list) != vk.Success {
		return nil
	}
	names := make([]string, 0, n)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

func (d *Driver) queueFamilies(gpu vk.PhysicalDevice) []vulkan.QueueFamily {
	var n uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &n, nil)
	props := make([]vk.QueueFamilyProperties, n)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &n, props)

	families := make([]vulkan.QueueFamily, 0, n)
	for i := range props {
		props[i].Deref()
		var present vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), d.surface, &present)
		families = append(families, vulkan.QueueFamily{
			Index:    uint32(i),
			Graphics: props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Present:  present == vk.True,
		})
	}
	return families
}

func deviceType(t vk.PhysicalDeviceType) gputypes.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return gputypes.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return gputypes.DeviceTypeIntegratedGPU
	default:
		var other gputypes.DeviceType
		return other
	}
}

func maxSamples(counts vk.SampleCountFlags) int {
	for n := 64; n > 1; n /= 2 {
		if counts&vk.SampleCountFlags(n) != 0 {
			return n
		}
	}
	return 1
}

// CreateDevice implements vulkan.Driver.
func (d *Driver) CreateDevice(dev vulkan.PhysicalDevice, queueFamily uint32, extensions []string) error {
	if dev.Index < 0 || dev.Index >= len(d.gpus) {
		return fmt.Errorf("vkbind: unknown device %d", dev.Index)
	}
	gpu := d.gpus[dev.Index]
	exts := cstrings(extensions)

	var device vk.Device
	ret := vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: queueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}, nil, &device)
	if err := check(ret, "create device"); err != nil {
		return err
	}
	d.device, d.gpu = device, gpu
	vk.GetPhysicalDeviceMemoryProperties(gpu, &d.memProps)
	d.memProps.Deref()

	var queue vk.Queue
	vk.GetDeviceQueue(device, queueFamily, 0, &queue)
	d.queue = queue

	d.modules = make(map[uint64]vk.ShaderModule)
	d.pipelines = make(map[uint64]pipeline)
	d.buffers = make(map[uint64]buffer)
	return d.createFrameObjects(queueFamily)
}

func (d *Driver) id() uint64 {
	d.next++
	return d.next
}

// CreateShaderModule implements vulkan.Driver.
func (d *Driver) CreateShaderModule(code []uint32) (uint64, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(d.device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}, nil, &module)
	if err := check(ret, "create shader module"); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.id()
	d.modules[id] = module
	return id, nil
}

// DestroyShaderModule implements vulkan.Driver.
func (d *Driver) DestroyShaderModule(id uint64) {
	d.mu.Lock()
	module, ok := d.modules[id]
	delete(d.modules, id)
	d.mu.Unlock()
	if ok {
		vk.DestroyShaderModule(d.device, module, nil)
	}
}

// CreatePipeline implements vulkan.Driver. Each pipeline owns a layout
// exposing the camera set and the push-constant block, and a render pass
// compatible with the frame pass of its target.
func (d *Driver) CreatePipeline(desc vulkan.PipelineDesc) (uint64, error) {
	d.mu.Lock()
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(desc.Stages))
	for _, st := range desc.Stages {
		module, ok := d.modules[st.Module]
		if !ok {
			d.mu.Unlock()
			return 0, fmt.Errorf("vkbind: unknown shader module %d", st.Module)
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stageBit(st.Kind),
			Module: module,
			PName:  st.EntryPoint + "\x00",
		})
	}
	d.mu.Unlock()

	var layout vk.PipelineLayout
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{d.setLayout},
	}
	var push vk.ShaderStageFlags
	if desc.PushSize > 0 {
		push = stageFlags(desc.PushVisible)
		layoutInfo.PushConstantRangeCount = 1
		layoutInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: push,
			Size:       desc.PushSize,
		}}
	}
	if err := check(vk.CreatePipelineLayout(d.device, &layoutInfo, nil, &layout), "create pipeline layout"); err != nil {
		return 0, err
	}

	pass, err := d.renderPass(desc.Target)
	if err != nil {
		vk.DestroyPipelineLayout(d.device, layout, nil)
		return 0, err
	}

	info := graphicsPipelineInfo(&desc, stages)
	info.Layout = layout
	info.RenderPass = pass

	var cache vk.PipelineCache
	handles := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(d.device, cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, handles)
	if err := check(ret, "create graphics pipeline"); err != nil {
		vk.DestroyRenderPass(d.device, pass, nil)
		vk.DestroyPipelineLayout(d.device, layout, nil)
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.id()
	d.pipelines[id] = pipeline{handle: handles[0], layout: layout, pass: pass, push: push}
	return id, nil
}

// renderPass describes the frame: a cleared color attachment, a depth
// attachment, and with multisampling a resolve into the swapchain image.
// Pipelines and the frame build it from the same target so they stay
// compatible.
func (d *Driver) renderPass(t vulkan.RenderTarget) (vk.RenderPass, error) {
	samples := vk.SampleCountFlagBits(max(t.Samples, 1))
	color := vk.AttachmentDescription{
		Format:         vkFormat(t.Color),
		Samples:        samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	depth := vk.AttachmentDescription{
		Format:         vkFormat(t.Depth),
		Samples:        samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	attachments := []vk.AttachmentDescription{color, depth}
	if samples > 1 {
		resolve := color
		resolve.Samples = vk.SampleCount1Bit
		resolve.LoadOp = vk.AttachmentLoadOpDontCare
		attachments[0].StoreOp = vk.AttachmentStoreOpDontCare
		attachments[0].FinalLayout = vk.ImageLayoutColorAttachmentOptimal
		attachments = append(attachments, resolve)
		subpass.PResolveAttachments = []vk.AttachmentReference{{Attachment: 2, Layout: vk.ImageLayoutColorAttachmentOptimal}}
	}

	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(d.device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  stages,
			DstStageMask:  stages,
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		}},
	}, nil, &pass)
	return pass, check(ret, "create render pass")
}

func graphicsPipelineInfo(desc *vulkan.PipelineDesc, stages []vk.PipelineShaderStageCreateInfo) vk.GraphicsPipelineCreateInfo {
	s := &desc.State

	attrs := make([]vk.VertexInputAttributeDescription, 0, len(desc.Layout.Attributes))
	for _, a := range desc.Layout.Attributes {
		attrs = append(attrs, vk.VertexInputAttributeDescription{
			Location: a.ShaderLocation,
			Binding:  0,
			Format:   vertexFormat(a.Format),
			Offset:   uint32(a.Offset),
		})
	}

	polygon := vk.PolygonModeFill
	if s.Wireframe {
		polygon = vk.PolygonModeLine
	}
	front := vk.FrontFaceCounterClockwise
	if s.FrontFace != gputypes.FrontFaceCCW {
		front = vk.FrontFaceClockwise
	}

	depth := &vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  bool32(s.DepthTest),
		DepthWriteEnable: bool32(s.DepthTest),
		DepthCompareOp:   compareOp(s.DepthCompare),
	}

	var blend vk.PipelineColorBlendAttachmentState
	blend.ColorWriteMask = vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	if s.Blend != nil {
		blend.BlendEnable = vk.True
		blend.SrcColorBlendFactor = blendFactor(s.Blend.Color.SrcFactor)
		blend.DstColorBlendFactor = blendFactor(s.Blend.Color.DstFactor)
		blend.ColorBlendOp = vk.BlendOpAdd
		blend.SrcAlphaBlendFactor = blendFactor(s.Blend.Alpha.SrcFactor)
		blend.DstAlphaBlendFactor = blendFactor(s.Blend.Alpha.DstFactor)
		blend.AlphaBlendOp = vk.BlendOpAdd
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount: 1,
			PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
				Binding:   0,
				Stride:    uint32(desc.Layout.ArrayStride),
				InputRate: vk.VertexInputRateVertex,
			}},
			VertexAttributeDescriptionCount: uint32(len(attrs)),
			PVertexAttributeDescriptions:    attrs,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: polygon,
			CullMode:    cullMode(s.CullMode),
			FrontFace:   front,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCountFlagBits(max(s.SampleCount, 1)),
		},
		PDepthStencilState: depth,
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vk.False,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blend},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		},
	}
}

// DestroyPipeline implements vulkan.Driver.
func (d *Driver) DestroyPipeline(id uint64) {
	d.mu.Lock()
	p, ok := d.pipelines[id]
	delete(d.pipelines, id)
	d.mu.Unlock()
	if !ok {
		return
	}
	vk.DestroyPipeline(d.device, p.handle, nil)
	vk.DestroyRenderPass(d.device, p.pass, nil)
	vk.DestroyPipelineLayout(d.device, p.layout, nil)
}

// Destroy implements vulkan.Driver.
func (d *Driver) Destroy() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
		for id := range d.pipelines {
			d.DestroyPipeline(id)
		}
		for id := range d.modules {
			d.DestroyShaderModule(id)
		}
		for id, b := range d.buffers {
			d.freeBuffer(&b)
			delete(d.buffers, id)
		}
		d.DestroySwapchain()
		d.destroyFrameObjects()
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debug, nil)
		d.debug = vk.NullDebugReportCallback
	}
	if d.surface != nil {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = nil
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
	d.gpus = nil
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func stageBit(kind shader.StageKind) vk.ShaderStageFlagBits {
	switch kind {
	case shader.Fragment:
		return vk.ShaderStageFragmentBit
	case shader.Compute:
		return vk.ShaderStageComputeBit
	case shader.Geometry:
		return vk.ShaderStageGeometryBit
	default:
		return vk.ShaderStageVertexBit
	}
}

func stageFlags(s gputypes.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if s&gputypes.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if s&gputypes.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	if s&gputypes.ShaderStageCompute != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageComputeBit)
	}
	return flags
}

func vertexFormat(f gputypes.VertexFormat) vk.Format {
	switch f {
	case gputypes.VertexFormatFloat32:
		return vk.FormatR32Sfloat
	case gputypes.VertexFormatFloat32x2:
		return vk.FormatR32g32Sfloat
	case gputypes.VertexFormatFloat32x3:
		return vk.FormatR32g32b32Sfloat
	case gputypes.VertexFormatUint32:
		return vk.FormatR32Uint
	default:
		return vk.FormatR32g32b32a32Sfloat
	}
}

func cullMode(c gputypes.CullMode) vk.CullModeFlags {
	switch c {
	case gputypes.CullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case gputypes.CullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	default:
		return vk.CullModeFlags(vk.CullModeNone)
	}
}

func compareOp(f gputypes.CompareFunction) vk.CompareOp {
	switch f {
	case gputypes.CompareFunctionAlways:
		return vk.CompareOpAlways
	case gputypes.CompareFunctionNotEqual:
		return vk.CompareOpNotEqual
	default:
		return vk.CompareOpLess
	}
}

func blendFactor(f gputypes.BlendFactor) vk.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return vk.BlendFactorZero
	case gputypes.BlendFactorSrc:
		return vk.BlendFactorSrcColor
	case gputypes.BlendFactorOneMinusSrc:
		return vk.BlendFactorOneMinusSrcColor
	case gputypes.BlendFactorSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case gputypes.BlendFactorDst:
		return vk.BlendFactorDstColor
	case gputypes.BlendFactorOneMinusDst:
		return vk.BlendFactorOneMinusDstColor
	case gputypes.BlendFactorDstAlpha:
		return vk.BlendFactorDstAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	default:
		return vk.BlendFactorOne
	}
}

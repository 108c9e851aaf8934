package render

import "unsafe"

// Surface is the window handle consumed by backends.
type Surface interface {
	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height int)

	// Show makes the window visible.
	Show()

	// Hide hides the window.
	Hide()

	// ProcAddress resolves an OpenGL function pointer for the current context.
	ProcAddress(name string) unsafe.Pointer
}

// VulkanSurface is implemented by windows able to host a Vulkan surface.
type VulkanSurface interface {
	Surface

	// RequiredInstanceExtensions lists the instance extensions the windowing
	// system needs to present.
	RequiredInstanceExtensions() []string

	// CreateVulkanSurface creates a VkSurfaceKHR for instance and returns its
	// raw handle.
	CreateVulkanSurface(instance any) (uintptr, error)

	// VulkanProcAddress returns the vkGetInstanceProcAddr loader entry point.
	VulkanProcAddress() unsafe.Pointer

	// VSync reports whether presentation should wait for vertical blank.
	VSync() bool
}

// Package vulkan is the Vulkan renderer backend.
//
// The package drives Vulkan through the Driver interface; the goki/vulkan
// implementation lives in package vkbind, compiled with the "vulkan" build tag.
// Context selects a device able to present, builds a swapchain whose format,
// present mode and extent follow the surface, the vsync setting and the
// applied hints, and rebuilds it when the window is resized. Uniforms are
// written to the push-constant block reflected from each program's SPIR-V.
package vulkan

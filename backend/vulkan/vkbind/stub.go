//go:build !vulkan

package vkbind

import (
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
)

// init registers a nil-returning factory when the vulkan tag is not set, so
// selecting Vulkan fails with renderer.ErrUnsupportedApi instead of panicking.
func init() {
	renderer.Register(render.Vulkan, func() renderer.Context {
		return nil
	})
}

package vulkan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave"
)

// DepthFormat is the format of the depth attachment of every frame.
const DepthFormat = gputypes.TextureFormatDepth32Float

// pickSurfaceFormat prefers 8-bit BGRA, sRGB-encoded when srgb is set, and
// otherwise takes the first format the surface offers.
func pickSurfaceFormat(formats []gputypes.TextureFormat, srgb bool) (gputypes.TextureFormat, error) {
	if len(formats) == 0 {
		return gputypes.TextureFormatUndefined, errors.New("surface offers no sRGB nonlinear format")
	}
	want := gputypes.TextureFormatBGRA8Unorm
	if srgb {
		want = gputypes.TextureFormatBGRA8UnormSrgb
	}
	if slices.Contains(formats, want) {
		return want, nil
	}
	wave.Component("Vulkan").Warn("preferred surface format unavailable", "want", want, "using", formats[0])
	return formats[0], nil
}

// pickPresentMode chooses mailbox, then FIFO, with vsync, and immediate
// without. FIFO is always available.
func pickPresentMode(vsync bool, modes []gputypes.PresentMode) gputypes.PresentMode {
	log := wave.Component("Vulkan")
	if vsync {
		if slices.Contains(modes, gputypes.PresentModeMailbox) {
			return gputypes.PresentModeMailbox
		}
		log.Warn("mailbox present mode unavailable, falling back to FIFO")
		return gputypes.PresentModeFifo
	}
	if slices.Contains(modes, gputypes.PresentModeImmediate) {
		return gputypes.PresentModeImmediate
	}
	log.Warn("immediate present mode unavailable, falling back to FIFO")
	return gputypes.PresentModeFifo
}

// pickExtent uses the surface size when the surface reports one and clamps
// the framebuffer size to the supported range otherwise.
func pickExtent(s SurfaceSupport, width, height int) gputypes.Extent3D {
	if s.Current.Width != UndefinedExtent {
		return gputypes.Extent3D{Width: s.Current.Width, Height: s.Current.Height, DepthOrArrayLayers: 1}
	}
	return gputypes.Extent3D{
		Width:              clampExtent(width, s.Min.Width, s.Max.Width),
		Height:             clampExtent(height, s.Min.Height, s.Max.Height),
		DepthOrArrayLayers: 1,
	}
}

func clampExtent(v int, lo, hi uint32) uint32 {
	return min(max(uint32(max(v, 0)), lo), hi)
}

// pickImageCount asks for one image more than the minimum.
func pickImageCount(s SurfaceSupport) uint32 {
	n := s.MinImages + 1
	if s.MaxImages > 0 && n > s.MaxImages {
		n = s.MaxImages
	}
	return n
}

// target is the render target pipelines are built for.
func (c *Context) target() RenderTarget {
	return RenderTarget{Color: c.swapchain.Format, Depth: DepthFormat, Samples: max(c.state.SampleCount, 1)}
}

// buildSwapchain (re)creates the swapchain for the current surface, state
// and vsync setting. An empty framebuffer leaves the swapchain stale until
// the window is restored.
func (c *Context) buildSwapchain() error {
	log := wave.Component("Vulkan")
	support, err := c.drv.SurfaceSupport()
	if err != nil {
		return fmt.Errorf("query surface: %w", err)
	}
	format, err := pickSurfaceFormat(support.Formats, c.state.SRGB)
	if err != nil {
		return err
	}
	vsync := c.surface.VSync()
	cfg := SwapchainConfig{
		Format:      format,
		DepthFormat: DepthFormat,
		PresentMode: pickPresentMode(vsync, support.PresentModes),
		Extent:      pickExtent(support, c.width, c.height),
		Images:      pickImageCount(support),
		Samples:     max(c.state.SampleCount, 1),
	}
	c.swapchain.Format, c.vsync = format, vsync
	if c.width <= 0 || c.height <= 0 || cfg.Extent.Width == 0 || cfg.Extent.Height == 0 {
		c.stale = true
		log.Debug("framebuffer is empty, swapchain deferred")
		return nil
	}

	images, err := c.drv.CreateSwapchain(cfg)
	if err != nil {
		c.stale = true
		return fmt.Errorf("create swapchain: %w", err)
	}
	c.swapchain, c.images, c.stale = cfg, images, false
	log.Info("swapchain created", "format", cfg.Format, "present_mode", cfg.PresentMode,
		"width", cfg.Extent.Width, "height", cfg.Extent.Height, "images", images, "samples", cfg.Samples)
	return nil
}

// Swapchain returns the configuration of the current swapchain and whether
// it needs rebuilding before the next frame.
func (c *Context) Swapchain() (cfg SwapchainConfig, stale bool) { return c.swapchain, c.stale }

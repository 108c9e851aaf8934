package opengl

import (
	"fmt"
	"image"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/renderer"
)

// Texture is an uploaded 2D texture.
type Texture struct {
	id            uint32
	Width, Height int
}

// UploadTexture uploads img as a mipmapped, repeating 2D texture. The texture
// is stored as sRGB when the sRGB hint is enabled.
func (c *Context) UploadTexture(img *image.RGBA) (uint64, error) {
	if !c.initialized {
		return 0, fmt.Errorf("%w: context not initialized", renderer.ErrInvalidState)
	}
	if img == nil || img.Rect.Empty() {
		return 0, fmt.Errorf("%w: empty texture", renderer.ErrInvalidEntity)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pixels := img.Pix
	if img.Stride != 4*w {
		pixels = make([]byte, 0, 4*w*h)
		for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
			off := img.PixOffset(img.Rect.Min.X, y)
			pixels = append(pixels, img.Pix[off:off+4*w]...)
		}
	}

	internal := int32(RGBA8)
	if c.srgb {
		internal = SRGB8_ALPHA8
	}
	id := c.gl.GenTexture()
	c.gl.BindTexture(TEXTURE_2D, id)
	c.gl.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, REPEAT)
	c.gl.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, REPEAT)
	c.gl.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, LINEAR_MIPMAP_LINEAR)
	c.gl.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, LINEAR)
	c.gl.TexImage2D(TEXTURE_2D, 0, internal, int32(w), int32(h), RGBA, UNSIGNED_BYTE, pixels)
	c.gl.GenerateMipmap(TEXTURE_2D)
	c.gl.BindTexture(TEXTURE_2D, 0)
	if err := c.check.check("upload texture"); err != nil {
		c.gl.DeleteTexture(id)
		return 0, err
	}

	c.nextTex++
	c.textures[c.nextTex] = &Texture{id: id, Width: w, Height: h}
	wave.Component("OpenGL").Debug("texture uploaded", "id", c.nextTex, "width", w, "height", h, "srgb", c.srgb)
	return c.nextTex, nil
}

// BindTexture binds a texture to a texture unit.
func (c *Context) BindTexture(id uint64, unit int) error {
	tex, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", renderer.ErrEntityNotFound, id)
	}
	c.gl.ActiveTexture(TEXTURE0 + uint32(unit))
	c.gl.BindTexture(TEXTURE_2D, tex.id)
	return c.check.check("bind texture")
}

// DeleteTexture releases a texture.
func (c *Context) DeleteTexture(id uint64) error {
	tex, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", renderer.ErrEntityNotFound, id)
	}
	c.gl.DeleteTexture(tex.id)
	delete(c.textures, id)
	return c.check.check("delete texture")
}

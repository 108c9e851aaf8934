package opengl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// CameraBinding is the uniform buffer binding of the camera block, which
// holds the view then the projection matrix.
const CameraBinding = 0

// CameraBlock is the name of the camera uniform block in shaders.
const CameraBlock = "Camera"

// ModelUniform is the uniform receiving each entity's model matrix.
const ModelUniform = "u_model_matrix"

// ClearColor is the framebuffer clear color.
var ClearColor = mgl32.Vec4{0.025, 0.025, 0.025, 1}

const cameraSize = 2 * 16 * 4

// Context is the OpenGL renderer.Context.
type Context struct {
	gl    GL
	check checker

	initialized bool
	vendor      string
	device      string
	version     string
	glslVersion int
	extensions  map[string]bool
	maxSamples  int
	samples     int
	srgb        bool

	batches   renderer.Batches
	camera    uint32
	drawCalls int
	textures  map[uint64]*Texture
	nextTex   uint64

	// noModel holds the program id of programs whose last lookup of
	// ModelUniform failed. A relink changes the id and retries the lookup.
	noModel map[*shader.Program]uint64
}

// NewContext returns an uninitialized context calling gl.
func NewContext(gl GL) *Context {
	return &Context{gl: gl, check: checker{gl: gl}}
}

type meshBuffers struct {
	vao, vbo, ibo uint32
	count         int32
}

// API implements renderer.Context.
func (c *Context) API() render.API { return render.OpenGL }

// Init loads OpenGL through the surface, queries the context and prepares
// the viewport and camera buffer.
func (c *Context) Init(surface render.Surface) error {
	log := wave.Component("OpenGL")
	if err := c.gl.Init(surface.ProcAddress); err != nil {
		log.Error("cannot load OpenGL functions", "err", err)
		return fmt.Errorf("%w: load OpenGL: %w", renderer.ErrInit, err)
	}

	c.vendor = c.gl.GetString(VENDOR)
	c.device = c.gl.GetString(RENDERER)
	c.version = c.gl.GetString(VERSION)
	glsl := c.gl.GetString(SHADING_LANGUAGE_VERSION)
	v, ok := ParseGLSLVersion(glsl)
	if !ok {
		log.Error("cannot parse shading language version", "version", glsl)
		return fmt.Errorf("%w: shading language version %q", renderer.ErrInit, glsl)
	}
	c.glslVersion = v

	n := int(c.gl.GetIntegerv(NUM_EXTENSIONS))
	c.extensions = make(map[string]bool, n)
	for i := range n {
		c.extensions[c.gl.GetStringi(EXTENSIONS, uint32(i))] = true
	}
	c.maxSamples = int(c.gl.GetIntegerv(MAX_SAMPLES))

	w, h := surface.FramebufferSize()
	c.gl.Viewport(0, 0, int32(w), int32(h))
	c.gl.ClearColor(ClearColor[0], ClearColor[1], ClearColor[2], ClearColor[3])

	c.camera = c.gl.GenBuffer()
	c.gl.BindBuffer(UNIFORM_BUFFER, c.camera)
	c.gl.BufferData(UNIFORM_BUFFER, cameraBytes(mgl32.Ident4(), mgl32.Ident4()), DYNAMIC_DRAW)
	c.gl.BindBufferBase(UNIFORM_BUFFER, CameraBinding, c.camera)
	c.gl.BindBuffer(UNIFORM_BUFFER, 0)

	c.textures = make(map[uint64]*Texture)
	c.initialized = true
	log.Info("OpenGL context created", "vendor", c.vendor, "renderer", c.device,
		"version", c.version, "glsl", c.glslVersion, "extensions", n, "max_samples", c.maxSamples)
	return nil
}

// HasExtension implements renderer.Context.
func (c *Context) HasExtension(name string) bool { return c.extensions[name] }

// MaxShaderVersion implements renderer.Context.
func (c *Context) MaxShaderVersion() int { return c.glslVersion }

// MaxSamples returns GL_MAX_SAMPLES.
func (c *Context) MaxSamples() int { return c.maxSamples }

// Samples returns the sample count requested by the MSAA hint.
func (c *Context) Samples() int { return c.samples }

// Apply implements renderer.Context.
func (c *Context) Apply(h render.Hint) error {
	if !c.initialized {
		return fmt.Errorf("%w: context not initialized", renderer.ErrInvalidState)
	}
	switch h.Kind {
	case render.HintCallChecking:
		c.check.mode = h.CallCheck
		if h.CallCheck.Debug() {
			c.gl.Enable(DEBUG_OUTPUT)
			if h.CallCheck.Synchronous() {
				c.gl.Enable(DEBUG_OUTPUT_SYNCHRONOUS)
			} else {
				c.gl.Disable(DEBUG_OUTPUT_SYNCHRONOUS)
			}
			c.gl.DebugMessageCallback(debugMessage)
		} else {
			c.gl.Disable(DEBUG_OUTPUT)
		}
	case render.HintDepthTest:
		if h.Enabled {
			c.gl.Enable(DEPTH_TEST)
			c.gl.DepthFunc(LESS)
		} else {
			c.gl.Disable(DEPTH_TEST)
		}
	case render.HintCullFace:
		switch h.Cull {
		case gputypes.CullModeFront:
			c.gl.Enable(CULL_FACE)
			c.gl.CullFace(FRONT)
		case gputypes.CullModeBack:
			c.gl.Enable(CULL_FACE)
			c.gl.CullFace(BACK)
		default:
			c.gl.Disable(CULL_FACE)
		}
	case render.HintWireframe:
		if h.Enabled {
			c.gl.PolygonMode(FRONT_AND_BACK, LINE)
		} else {
			c.gl.PolygonMode(FRONT_AND_BACK, FILL)
		}
	case render.HintMSAA:
		if err := c.applyMSAA(h.Samples); err != nil {
			return err
		}
	case render.HintSRGB:
		c.srgb = h.Enabled
		if h.Enabled {
			c.gl.Enable(FRAMEBUFFER_SRGB)
		} else {
			c.gl.Disable(FRAMEBUFFER_SRGB)
		}
	case render.HintBlending:
		if !h.Enabled {
			c.gl.Disable(BLEND)
			break
		}
		fn := render.AlphaBlend
		if h.HasBlendFunc {
			fn = h.Blend
		}
		src, err := blendFactor(fn.Src)
		if err != nil {
			return err
		}
		dst, err := blendFactor(fn.Dst)
		if err != nil {
			return err
		}
		c.gl.Enable(BLEND)
		c.gl.BlendFunc(src, dst)
	default:
		return fmt.Errorf("%w: hint %s", renderer.ErrNotImplemented, h.Kind)
	}
	return c.check.check("apply " + h.Kind.String())
}

func (c *Context) applyMSAA(samples int) error {
	if samples == 0 {
		c.samples = 0
		c.gl.Disable(MULTISAMPLE)
		return nil
	}
	if c.maxSamples < 2 {
		wave.Component("OpenGL").Error("multisampling not supported", "max_samples", c.maxSamples)
		return fmt.Errorf("%w: context supports %d samples", renderer.ErrMSAA, c.maxSamples)
	}
	if samples > c.maxSamples {
		wave.Component("OpenGL").Warn("MSAA sample count above maximum, clamping",
			"requested", samples, "max", c.maxSamples)
		samples = c.maxSamples
	}
	c.samples = samples
	c.gl.Enable(MULTISAMPLE)
	return nil
}

func blendFactor(f gputypes.BlendFactor) (uint32, error) {
	switch f {
	case gputypes.BlendFactorZero:
		return ZERO, nil
	case gputypes.BlendFactorOne:
		return ONE, nil
	case gputypes.BlendFactorSrc:
		return SRC_COLOR, nil
	case gputypes.BlendFactorOneMinusSrc:
		return ONE_MINUS_SRC_COLOR, nil
	case gputypes.BlendFactorSrcAlpha:
		return SRC_ALPHA, nil
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ONE_MINUS_SRC_ALPHA, nil
	case gputypes.BlendFactorDst:
		return DST_COLOR, nil
	case gputypes.BlendFactorOneMinusDst:
		return ONE_MINUS_DST_COLOR, nil
	case gputypes.BlendFactorDstAlpha:
		return DST_ALPHA, nil
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ONE_MINUS_DST_ALPHA, nil
	default:
		return 0, fmt.Errorf("%w: blend factor %v", renderer.ErrNotImplemented, f)
	}
}

// OnEvent resets the viewport on resize.
func (c *Context) OnEvent(ev event.Event) error {
	if ev.Kind != event.WindowResize || !c.initialized {
		return nil
	}
	c.gl.Viewport(0, 0, int32(ev.Width), int32(ev.Height))
	return c.check.check("viewport")
}

// Enqueue uploads the flattened mesh into a vertex array. Empty meshes are
// recorded without GPU objects.
func (c *Context) Enqueue(id uint64, mesh *asset.Mesh, model mgl32.Mat4, prog *shader.Program) error {
	item, err := c.batches.Add(id, mesh, model, prog)
	if err != nil {
		return err
	}
	if len(item.Vertices) == 0 {
		return nil
	}

	buf := &meshBuffers{count: int32(len(item.Indices))}
	buf.vao = c.gl.GenVertexArray()
	c.gl.BindVertexArray(buf.vao)

	buf.vbo = c.gl.GenBuffer()
	c.gl.BindBuffer(ARRAY_BUFFER, buf.vbo)
	c.gl.BufferData(ARRAY_BUFFER, asset.VertexBytes(item.Vertices), STATIC_DRAW)

	buf.ibo = c.gl.GenBuffer()
	c.gl.BindBuffer(ELEMENT_ARRAY_BUFFER, buf.ibo)
	c.gl.BufferData(ELEMENT_ARRAY_BUFFER, asset.IndexBytes(item.Indices), STATIC_DRAW)

	for _, a := range asset.VertexLayout {
		c.gl.EnableVertexAttribArray(a.Location)
		if a.Type == asset.AttribUint {
			c.gl.VertexAttribIPointer(a.Location, a.Components, UNSIGNED_INT, int32(asset.VertexStride), a.Offset)
		} else {
			c.gl.VertexAttribPointer(a.Location, a.Components, FLOAT, false, int32(asset.VertexStride), a.Offset)
		}
	}
	c.gl.BindVertexArray(0)
	item.Handle = buf

	if err := c.check.check("enqueue"); err != nil {
		c.release(item)
		c.batches.Remove(id)
		return err
	}
	return nil
}

func (c *Context) release(item *renderer.Item) {
	buf, ok := item.Handle.(*meshBuffers)
	if !ok {
		return
	}
	c.gl.DeleteBuffer(buf.ibo)
	c.gl.DeleteBuffer(buf.vbo)
	c.gl.DeleteVertexArray(buf.vao)
	item.Handle = nil
}

// Dequeue implements renderer.Context.
func (c *Context) Dequeue(id uint64) error {
	item, err := c.batches.Remove(id)
	if err != nil {
		return err
	}
	c.release(item)
	return c.check.check("dequeue")
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

// UpdateCamera writes the camera uniform buffer.
func (c *Context) UpdateCamera(view, projection mgl32.Mat4) error {
	if c.camera == 0 {
		return fmt.Errorf("%w: camera", renderer.ErrUboNotFound)
	}
	c.gl.BindBuffer(UNIFORM_BUFFER, c.camera)
	c.gl.BufferSubData(UNIFORM_BUFFER, 0, cameraBytes(view, projection))
	c.gl.BindBuffer(UNIFORM_BUFFER, 0)
	return c.check.check("update camera")
}

func cameraBytes(view, projection mgl32.Mat4) []byte {
	b := make([]byte, 0, cameraSize)
	for _, m := range [2]mgl32.Mat4{view, projection} {
		for _, f := range m {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b
}

// Render clears the framebuffer and draws every visible item, one batch per
// program.
func (c *Context) Render() error {
	c.gl.Clear(COLOR_BUFFER_BIT | DEPTH_BUFFER_BIT)
	c.drawCalls = 0
	for _, batch := range c.batches.All() {
		prog := batch.Program
		if prog.State() != shader.Sent {
			continue
		}
		c.gl.UseProgram(uint32(prog.ID()))
		id, missing := c.noModel[prog]
		missing = missing && id == prog.ID()
		for _, item := range batch.Items {
			buf, ok := item.Handle.(*meshBuffers)
			if !item.Visible || !ok {
				continue
			}
			if !missing {
				err := prog.UploadData(ModelUniform, shader.Mat4(item.Model))
				switch {
				case errors.Is(err, shader.ErrUniformNotFound):
					missing = c.missingModel(prog)
				case err != nil:
					return err
				}
			}
			c.gl.BindVertexArray(buf.vao)
			c.gl.DrawElements(TRIANGLES, buf.count, UNSIGNED_INT, 0)
			c.drawCalls++
		}
	}
	c.gl.BindVertexArray(0)
	return c.check.check("render")
}

// missingModel remembers that prog declares no ModelUniform so later frames
// skip the lookup.
func (c *Context) missingModel(prog *shader.Program) bool {
	if c.noModel == nil {
		c.noModel = make(map[*shader.Program]uint64)
	}
	c.noModel[prog] = prog.ID()
	wave.Component("OpenGL").Warn("program has no model matrix uniform, drawing untransformed",
		"program", prog.ID(), "uniform", ModelUniform)
	return true
}

// Flush releases every enqueued item.
func (c *Context) Flush() error {
	for _, item := range c.batches.Clear() {
		c.release(item)
	}
	return c.check.check("flush")
}

// Stats implements renderer.Context.
func (c *Context) Stats() renderer.Stats {
	s := c.batches.Stats()
	s.DrawCalls = c.drawCalls
	return s
}

// Free releases geometry, textures and the camera buffer.
func (c *Context) Free() error {
	if !c.initialized {
		return nil
	}
	for _, item := range c.batches.Clear() {
		c.release(item)
	}
	clear(c.noModel)
	for id, tex := range c.textures {
		c.gl.DeleteTexture(tex.id)
		delete(c.textures, id)
	}
	if c.camera != 0 {
		c.gl.DeleteBuffer(c.camera)
		c.camera = 0
	}
	c.initialized = false
	wave.Component("OpenGL").Debug("OpenGL context freed")
	return c.check.check("free")
}

var (
	_ renderer.Context        = (*Context)(nil)
	_ renderer.TextureContext = (*Context)(nil)
)

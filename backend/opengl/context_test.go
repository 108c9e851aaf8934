package opengl

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
)

func newContext(t *testing.T) (*Context, *fakeGL) {
	t.Helper()
	gl := newFakeGL()
	gl.extensions = []string{"GL_KHR_debug", "GL_ARB_gl_spirv"}
	c := NewContext(gl)
	require.NoError(t, c.Init(surface{w: 800, h: 600}))
	return c, gl
}

func TestInitQueriesContext(t *testing.T) {
	c, gl := newContext(t)

	assert.Equal(t, 460, c.MaxShaderVersion())
	assert.True(t, c.HasExtension("GL_ARB_gl_spirv"))
	assert.False(t, c.HasExtension("GL_NV_mesh_shader"))
	assert.Equal(t, 8, c.MaxSamples())
	assert.Equal(t, [4]int32{0, 0, 800, 600}, gl.viewport)
	require.NotZero(t, c.camera)
	assert.Len(t, gl.buffers[c.camera], cameraSize)
}

func TestInitFailures(t *testing.T) {
	gl := newFakeGL()
	gl.initErr = errNoDriver
	err := NewContext(gl).Init(surface{w: 1, h: 1})
	assert.ErrorIs(t, err, renderer.ErrInit)
	assert.ErrorIs(t, err, errNoDriver)

	gl = newFakeGL()
	gl.strings[SHADING_LANGUAGE_VERSION] = "unknown"
	err = NewContext(gl).Init(surface{w: 1, h: 1})
	assert.ErrorIs(t, err, renderer.ErrInit)
}

func TestParseGLSLVersion(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"4.60 NVIDIA", 460, true},
		{"4.50", 450, true},
		{"3.3", 330, true},
		{"4.10 - Build 27.20.100.8681", 410, true},
		{"", 0, false},
		{"OpenGL ES GLSL", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseGLSLVersion(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestApplyHints(t *testing.T) {
	c, gl := newContext(t)

	require.NoError(t, c.Apply(render.DepthTest(true)))
	assert.True(t, gl.enabled[DEPTH_TEST])
	assert.Equal(t, uint32(LESS), gl.depthFunc)

	require.NoError(t, c.Apply(render.CullFace(gputypes.CullModeBack)))
	assert.True(t, gl.enabled[CULL_FACE])
	assert.Equal(t, uint32(BACK), gl.cullFace)
	require.NoError(t, c.Apply(render.CullFace(gputypes.CullModeNone)))
	assert.False(t, gl.enabled[CULL_FACE])

	require.NoError(t, c.Apply(render.Wireframe(true)))
	assert.Equal(t, uint32(LINE), gl.polygon)
	require.NoError(t, c.Apply(render.Wireframe(false)))
	assert.Equal(t, uint32(FILL), gl.polygon)

	require.NoError(t, c.Apply(render.SRGB(true)))
	assert.True(t, gl.enabled[FRAMEBUFFER_SRGB])

	require.NoError(t, c.Apply(render.Blending(true)))
	assert.True(t, gl.enabled[BLEND])
	assert.Equal(t, [2]uint32{SRC_ALPHA, ONE_MINUS_SRC_ALPHA}, gl.blend)

	require.NoError(t, c.Apply(render.BlendingWith(render.BlendFunc{
		Src: gputypes.BlendFactorOne,
		Dst: gputypes.BlendFactorOne,
	})))
	assert.Equal(t, [2]uint32{ONE, ONE}, gl.blend)
}

func TestApplyBeforeInit(t *testing.T) {
	err := NewContext(newFakeGL()).Apply(render.DepthTest(true))
	assert.ErrorIs(t, err, renderer.ErrInvalidState)
}

func TestApplyMSAA(t *testing.T) {
	c, gl := newContext(t)

	require.NoError(t, c.Apply(render.MSAA(4)))
	assert.True(t, gl.enabled[MULTISAMPLE])
	assert.Equal(t, 4, c.Samples())

	require.NoError(t, c.Apply(render.MSAA(32)))
	assert.Equal(t, 8, c.Samples(), "clamped to GL_MAX_SAMPLES")

	gl2 := newFakeGL()
	gl2.ints[MAX_SAMPLES] = 1
	c2 := NewContext(gl2)
	require.NoError(t, c2.Init(surface{w: 1, h: 1}))
	assert.ErrorIs(t, c2.Apply(render.MSAA(4)), renderer.ErrMSAA)
}

func TestCallChecking(t *testing.T) {
	c, gl := newContext(t)

	require.NoError(t, c.Apply(render.CallChecking(render.CallCheckAsync)))
	assert.True(t, gl.enabled[DEBUG_OUTPUT])
	assert.False(t, gl.enabled[DEBUG_OUTPUT_SYNCHRONOUS])
	assert.NotNil(t, gl.debugFn)

	// Async mode never reads glGetError.
	gl.errs = []uint32{INVALID_OPERATION}
	require.NoError(t, c.OnEvent(event.Resize(10, 10)))
	assert.Len(t, gl.errs, 1)
	gl.errs = nil

	require.NoError(t, c.Apply(render.CallChecking(render.CallCheckBoth)))
	assert.True(t, gl.enabled[DEBUG_OUTPUT_SYNCHRONOUS])

	gl.errs = []uint32{INVALID_VALUE, OUT_OF_MEMORY}
	err := c.OnEvent(event.Resize(20, 20))
	var glErr *GLError
	require.ErrorAs(t, err, &glErr)
	assert.Equal(t, uint32(INVALID_VALUE), glErr.Code)
	assert.Empty(t, gl.errs, "remaining flags drained")

	require.NoError(t, c.Apply(render.CallChecking(render.CallCheckSync)))
	assert.False(t, gl.enabled[DEBUG_OUTPUT])
}

func TestResizeEvent(t *testing.T) {
	c, gl := newContext(t)
	require.NoError(t, c.OnEvent(event.Resize(1024, 768)))
	assert.Equal(t, [4]int32{0, 0, 1024, 768}, gl.viewport)

	require.NoError(t, c.OnEvent(event.Close()))
	assert.Equal(t, [4]int32{0, 0, 1024, 768}, gl.viewport)
}

func TestEnqueueAndRender(t *testing.T) {
	c, gl := newContext(t)
	prog := sentProgram(t, c)

	require.NoError(t, c.Enqueue(1, asset.Cube(mgl32.Vec4{1, 0, 0, 1}), mgl32.Ident4(), prog))
	require.NoError(t, c.Enqueue(2, asset.Quad(mgl32.Vec4{0, 1, 0, 1}), mgl32.Translate3D(1, 0, 0), prog))
	require.NoError(t, c.Enqueue(3, &asset.Mesh{Name: "empty"}, mgl32.Ident4(), prog))
	assert.Len(t, gl.vaos, 2, "empty meshes get no vertex array")

	require.NoError(t, c.Render())
	assert.Equal(t, 2, gl.draws)
	assert.Equal(t, 1, gl.clears)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), mgl32.Mat4(gl.uniforms[0].([16]float32)))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Batches)
	assert.Equal(t, 3, stats.Entities)
	assert.Equal(t, 2, stats.DrawCalls)
	assert.Equal(t, 24+4, stats.Vertices)

	require.NoError(t, c.SetVisible(1, false))
	require.NoError(t, c.Render())
	assert.Equal(t, 3, gl.draws)

	require.NoError(t, c.UpdateModel(1, mgl32.Scale3D(2, 2, 2)))
	require.NoError(t, c.SetVisible(1, true))
	require.NoError(t, c.Dequeue(2))
	require.NoError(t, c.Render())
	assert.Equal(t, mgl32.Scale3D(2, 2, 2), mgl32.Mat4(gl.uniforms[0].([16]float32)))
	assert.Len(t, gl.vaos, 1)

	assert.ErrorIs(t, c.Dequeue(2), renderer.ErrEntityNotFound)
	assert.ErrorIs(t, c.UpdateModel(42, mgl32.Ident4()), renderer.ErrEntityNotFound)
}

func TestRenderSkipsProgramWithoutModelUniform(t *testing.T) {
	c, gl := newContext(t)
	delete(gl.locations, ModelUniform)
	prog := sentProgram(t, c)

	require.NoError(t, c.Enqueue(1, asset.Quad(mgl32.Vec4{1, 1, 1, 1}), mgl32.Ident4(), prog))
	require.NoError(t, c.Enqueue(2, asset.Cube(mgl32.Vec4{1, 1, 1, 1}), mgl32.Ident4(), prog))
	require.NoError(t, c.Render())
	assert.Equal(t, 2, gl.draws)
	assert.Equal(t, 1, gl.lookups[ModelUniform])

	require.NoError(t, c.Render())
	assert.Equal(t, 4, gl.draws)
	assert.Equal(t, 1, gl.lookups[ModelUniform], "missing uniform is looked up once per program")
}

func TestUpdateCamera(t *testing.T) {
	c, gl := newContext(t)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 100)

	require.NoError(t, c.UpdateCamera(view, proj))
	assert.Equal(t, cameraBytes(view, proj), gl.buffers[c.camera])
}

func TestFlushAndFree(t *testing.T) {
	c, gl := newContext(t)
	prog := sentProgram(t, c)
	require.NoError(t, c.Enqueue(1, asset.Cube(mgl32.Vec4{1, 1, 1, 1}), mgl32.Ident4(), prog))
	require.NoError(t, c.Enqueue(2, asset.Quad(mgl32.Vec4{1, 1, 1, 1}), mgl32.Ident4(), prog))

	require.NoError(t, c.Flush())
	assert.Empty(t, gl.vaos)
	assert.Zero(t, c.Stats().Entities)

	_, err := c.UploadTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)

	require.NoError(t, c.Free())
	assert.Empty(t, gl.textures)
	assert.Empty(t, gl.buffers, "camera buffer released")
	require.NoError(t, c.Free())
	assert.ErrorIs(t, c.UpdateCamera(mgl32.Ident4(), mgl32.Ident4()), renderer.ErrUboNotFound)
}

func TestTextures(t *testing.T) {
	c, gl := newContext(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	id, err := c.UploadTexture(sub)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, gl.texImages, 1)
	assert.Len(t, gl.texImages[0], 2*2*4, "sub-image rows repacked")
	assert.Equal(t, []byte{255, 0, 0, 255}, gl.texImages[0][:4])
	assert.Equal(t, 1, gl.mipmaps)

	require.NoError(t, c.BindTexture(id, 1))
	require.NoError(t, c.DeleteTexture(id))
	assert.ErrorIs(t, c.DeleteTexture(id), renderer.ErrEntityNotFound)
	assert.ErrorIs(t, c.BindTexture(id, 0), renderer.ErrEntityNotFound)

	_, err = c.UploadTexture(image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, renderer.ErrInvalidEntity)
}

package scene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/renderer/renderertest"
	"github.com/wave-engine/wave/scene"
	"github.com/wave-engine/wave/shader"
)

const (
	vertexSource   = "#version 330 core\nlayout(location = 0) in vec3 a_position;\nvoid main() { gl_Position = vec4(a_position, 1.0); }\n"
	fragmentSource = "#version 330 core\nout vec4 color;\nvoid main() { color = vec4(1.0); }\n"
)

func setup(t *testing.T) (*renderer.Renderer, *renderertest.Context, *shader.Program) {
	t.Helper()
	rec := renderertest.Register(t, render.OpenGL)
	r, err := renderer.New(render.OpenGL)
	require.NoError(t, err)
	require.NoError(t, r.Submit(&renderertest.Surface{Width: 640, Height: 480}))
	t.Cleanup(func() { _ = r.Free() })

	p, err := shader.New(r, []shader.Stage{
		shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource)),
		shader.NewStage(shader.Fragment, shader.FromLiteral(fragmentSource)),
	}, shader.WithCache(shader.NewCache(t.TempDir())))
	require.NoError(t, err)
	require.NoError(t, p.Submit())
	return r, rec.Last(), p
}

func TestNewEntityDefaults(t *testing.T) {
	e := scene.New(asset.Cube(mgl32.Vec4{1, 1, 1, 1}))
	assert.False(t, e.IsSent())
	assert.False(t, e.HasChanged())
	assert.False(t, e.IsEmpty())
	assert.Zero(t, e.ID())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, e.ScaleFactor())
	assert.True(t, e.Model().ApproxEqual(mgl32.Ident4()))

	empty := scene.New(nil)
	assert.True(t, empty.IsEmpty())
	assert.Zero(t, empty.Len())
}

func TestTransformConventions(t *testing.T) {
	e := scene.New(asset.Quad(mgl32.Vec4{1, 0, 0, 1}))

	e.Translate(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, mgl32.Vec3{1, 2, -3}, e.Translation())
	assert.True(t, e.HasChanged())

	e.Rotate(mgl32.Vec3{10, 20, 30})
	assert.Equal(t, mgl32.Vec3{20, 10, -30}, e.Rotation())

	e.Scale(mgl32.Vec3{1, 0, -0.5})
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, e.ScaleFactor())
}

func TestModelMatrix(t *testing.T) {
	e := scene.New(asset.Quad(mgl32.Vec4{1, 1, 1, 1}))
	e.Translate(mgl32.Vec3{1, 2, 3})
	e.Scale(mgl32.Vec3{1, 1, 1})

	want := mgl32.Translate3D(1, 2, -3).Mul4(mgl32.Scale3D(2, 2, 2))
	assert.True(t, e.Model().ApproxEqualThreshold(want, 1e-5))

	e.Rotate(mgl32.Vec3{0, 0, -90})
	p := e.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 4, p.Y(), 1e-5)
}

func TestSubmitAndResend(t *testing.T) {
	r, ctx, p := setup(t)
	e := scene.New(asset.Cube(mgl32.Vec4{1, 1, 1, 1}))

	e.Translate(mgl32.Vec3{0, 0, 5})
	require.NoError(t, e.Submit(r, p))
	assert.True(t, e.IsSent())
	assert.False(t, e.HasChanged())
	assert.NotZero(t, e.ID())

	item, err := ctx.Batches.Get(e.ID())
	require.NoError(t, err)
	assert.Equal(t, e.Model(), item.Model)
	assert.Equal(t, uint32(e.ID()), e.Mesh().Vertices[0].EntityID)

	// Unchanged: nothing sent.
	item.Model = mgl32.Ident4()
	require.NoError(t, e.ResendTransform(r))
	assert.Equal(t, mgl32.Ident4(), item.Model)

	e.Translate(mgl32.Vec3{1, 0, 0})
	require.NoError(t, e.ResendTransform(r))
	assert.False(t, e.HasChanged())
	assert.Equal(t, e.Model(), item.Model)
}

func TestResendBeforeSubmit(t *testing.T) {
	r, _, _ := setup(t)
	e := scene.New(asset.Cube(mgl32.Vec4{1, 1, 1, 1}))
	e.Translate(mgl32.Vec3{1, 1, 1})

	err := e.ResendTransform(r)
	assert.ErrorIs(t, err, renderer.ErrEntityNotFound)
	assert.True(t, e.HasChanged())
}

func TestSubmitRequiresSentProgram(t *testing.T) {
	r, _, _ := setup(t)
	p, err := shader.New(r, []shader.Stage{shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource))})
	require.NoError(t, err)

	e := scene.New(asset.Cube(mgl32.Vec4{1, 1, 1, 1}))
	assert.ErrorIs(t, e.Submit(r, p), renderer.ErrShaderNotFound)
	assert.False(t, e.IsSent())
}

func TestFree(t *testing.T) {
	r, ctx, p := setup(t)
	e := scene.New(asset.Cube(mgl32.Vec4{1, 1, 1, 1}))

	require.NoError(t, e.Free(r), "freeing an unsent entity is a no-op")
	require.NoError(t, e.Submit(r, p))
	assert.Equal(t, 1, ctx.Batches.Len())

	require.NoError(t, e.Free(r))
	assert.False(t, e.IsSent())
	assert.Zero(t, ctx.Batches.Len())

	require.NoError(t, e.Submit(r, p), "a freed entity can be submitted again")
	assert.Equal(t, 1, ctx.Batches.Len())
}

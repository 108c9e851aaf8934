package renderer_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/renderer/renderertest"
	"github.com/wave-engine/wave/shader"
)

const (
	vertexSource   = "#version 330 core\nlayout(location = 0) in vec3 a_position;\nvoid main() { gl_Position = vec4(a_position, 1.0); }\n"
	fragmentSource = "#version 330 core\nout vec4 color;\nvoid main() { color = vec4(1.0); }\n"
)

type mesh struct {
	m     *asset.Mesh
	model mgl32.Mat4
}

func (e mesh) Mesh() *asset.Mesh  { return e.m }
func (e mesh) Model() mgl32.Mat4 { return e.model }

func submitted(t *testing.T, hints ...render.Hint) (*renderer.Renderer, *renderertest.Recorder) {
	t.Helper()
	rec := renderertest.Register(t, render.OpenGL)
	r, err := renderer.New(render.OpenGL)
	require.NoError(t, err)
	for _, h := range hints {
		require.NoError(t, r.Hint(h))
	}
	require.NoError(t, r.Submit(&renderertest.Surface{Width: 800, Height: 600}))
	return r, rec
}

func sentProgram(t *testing.T, r *renderer.Renderer) *shader.Program {
	t.Helper()
	p, err := shader.New(r, []shader.Stage{
		shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource)),
		shader.NewStage(shader.Fragment, shader.FromLiteral(fragmentSource)),
	}, shader.WithCache(shader.NewCache(t.TempDir())))
	require.NoError(t, err)
	require.NoError(t, p.Submit())
	return p
}

func TestNewUnsupportedAPI(t *testing.T) {
	renderer.Unregister(render.Vulkan)
	_, err := renderer.New(render.Vulkan)
	assert.ErrorIs(t, err, renderer.ErrUnsupportedApi)
}

func TestHintsInertUntilSubmit(t *testing.T) {
	rec := renderertest.Register(t, render.OpenGL)
	r, err := renderer.New(render.OpenGL)
	require.NoError(t, err)
	assert.Equal(t, renderer.Created, r.State())

	require.NoError(t, r.Hint(render.Wireframe(false)))
	require.NoError(t, r.Hint(render.DepthTest(true)))
	require.NoError(t, r.Hint(render.Wireframe(true)))
	require.NoError(t, r.Hint(render.CallChecking(render.CallCheckSync)))
	assert.Empty(t, rec.Last().Applied)
	assert.Len(t, r.Hints(), 3, "duplicate kinds overwrite")

	require.NoError(t, r.Submit(&renderertest.Surface{}))
	applied := rec.Last().Applied
	require.Len(t, applied, 3)
	assert.Equal(t, render.HintCallChecking, applied[0].Kind)
	assert.Equal(t, render.Wireframe(true), applied[2])

	require.NoError(t, r.Hint(render.CullFace(gputypes.CullModeFront)))
	assert.Len(t, rec.Last().Applied, 4, "hints after submit apply at once")
}

func TestSubmitReplacesContext(t *testing.T) {
	r, rec := submitted(t, render.DepthTest(true))
	first := rec.Last()
	require.NoError(t, r.Submit(&renderertest.Surface{}))
	assert.Equal(t, 1, first.Frees)
	assert.NotSame(t, first, rec.Last())
	assert.Len(t, rec.Last().Applied, 1)
}

func TestSubmitInitFailure(t *testing.T) {
	rec := renderertest.Register(t, render.OpenGL)
	rec.Configure = func(c *renderertest.Context) { c.Fail["init"] = errors.New("no display") }
	r, err := renderer.New(render.OpenGL)
	require.NoError(t, err)

	err = r.Submit(&renderertest.Surface{})
	assert.ErrorIs(t, err, renderer.ErrContext)
	var be *renderer.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "init", be.Op)
	assert.False(t, r.Submitted())
}

func TestEndToEndOpenGL(t *testing.T) {
	r, rec := submitted(t, render.DepthTest(true), render.Wireframe(true))
	assert.Len(t, rec.Last().Applied, 2)

	p := sentProgram(t, r)
	assert.Equal(t, shader.Sent, p.State())
	assert.NotZero(t, p.ID())

	id, err := r.Enqueue(mesh{asset.Cube(mgl32.Vec4{1, 1, 1, 1}), mgl32.Ident4()}, p)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.NoError(t, r.Render())
	assert.Equal(t, 1, rec.Last().Frames)
	assert.Equal(t, 24, r.Stats().Vertices)

	require.NoError(t, r.Update(id, mgl32.Translate3D(1, 0, 0)))
	item, err := rec.Last().Batches.Get(id)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), item.Model)

	require.NoError(t, r.SetVisible(id, false))
	assert.Zero(t, r.Stats().Visible)

	require.NoError(t, r.Dequeue(id))
	assert.ErrorIs(t, r.Dequeue(id), renderer.ErrEntityNotFound)
	assert.ErrorIs(t, r.Update(id, mgl32.Ident4()), renderer.ErrEntityNotFound)
}

func TestEnqueueEmptyEntity(t *testing.T) {
	r, _ := submitted(t)
	p := sentProgram(t, r)
	empty := &asset.Mesh{}
	assert.True(t, empty.IsEmpty())
	id, err := r.Enqueue(mesh{empty, mgl32.Ident4()}, p)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, r.Stats().Entities)
}

func TestEnqueueRequiresSentProgram(t *testing.T) {
	r, _ := submitted(t)
	p, err := shader.New(r, []shader.Stage{shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource))})
	require.NoError(t, err)
	_, err = r.Enqueue(mesh{asset.Quad(mgl32.Vec4{}), mgl32.Ident4()}, p)
	assert.ErrorIs(t, err, renderer.ErrShaderNotFound)
	_, err = r.Enqueue(nil, p)
	assert.ErrorIs(t, err, renderer.ErrInvalidEntity)
}

func TestIDsAreUnique(t *testing.T) {
	r, _ := submitted(t)
	p := sentProgram(t, r)
	seen := map[uint64]bool{}
	for range 10 {
		id, err := r.Enqueue(mesh{asset.Quad(mgl32.Vec4{}), mgl32.Ident4()}, p)
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
	require.NoError(t, r.Flush())
	assert.Zero(t, r.Stats().Entities)
}

func TestNotSubmitted(t *testing.T) {
	renderertest.Register(t, render.OpenGL)
	r, err := renderer.New(render.OpenGL)
	require.NoError(t, err)
	assert.False(t, r.HasExtension(shader.GLSpirVExtension))
	assert.ErrorIs(t, r.Render(), renderer.ErrNoActiveRenderer)
	_, err = r.Enqueue(mesh{&asset.Mesh{}, mgl32.Ident4()}, nil)
	assert.ErrorIs(t, err, renderer.ErrNoActiveRenderer)
	_, err = shader.New(r, []shader.Stage{shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource))})
	assert.ErrorIs(t, err, shader.ErrProgramCreation)
}

func TestCloseEventFreesRenderer(t *testing.T) {
	r, rec := submitted(t)
	require.NoError(t, r.OnEvent(event.Resize(1024, 768)))
	assert.Equal(t, []event.Event{event.Resize(1024, 768)}, rec.Last().Events)

	require.NoError(t, r.OnEvent(event.Close()))
	assert.Equal(t, renderer.Deleted, r.State())
	assert.Equal(t, 1, rec.Last().Frees)
	assert.Len(t, rec.Last().Events, 1, "close is not forwarded")
}

func TestFreeIdempotent(t *testing.T) {
	r, rec := submitted(t)
	require.NoError(t, r.Free())
	require.NoError(t, r.Free())
	assert.Equal(t, 1, rec.Last().Frees)
	assert.Equal(t, renderer.Deleted, r.State())
	assert.ErrorIs(t, r.Hint(render.SRGB(true)), renderer.ErrNoActiveRenderer)
	assert.ErrorIs(t, r.Submit(&renderertest.Surface{}), renderer.ErrNoActiveRenderer)
}

func TestFreeFailureStillDeletes(t *testing.T) {
	r, rec := submitted(t)
	rec.Last().Fail["free"] = errors.New("device lost")
	err := r.Free()
	assert.ErrorIs(t, err, renderer.ErrContext)
	assert.Equal(t, renderer.Deleted, r.State())
}

func TestShaderFreeIdempotentThroughRenderer(t *testing.T) {
	r, rec := submitted(t)
	p := sentProgram(t, r)
	require.NoError(t, p.Free())
	require.NoError(t, p.Free())
	assert.Equal(t, 1, rec.Last().Shaders[0].Frees)
}

func TestUniformLocationResolvedOnce(t *testing.T) {
	r, rec := submitted(t)
	p := sentProgram(t, r)
	require.NoError(t, p.UploadData("u_model_matrix", shader.Mat4(mgl32.Ident4())))
	require.NoError(t, p.UploadData("u_model_matrix", shader.Mat4(mgl32.Ident4())))
	assert.Equal(t, 1, rec.Last().Shaders[0].Locations["u_model_matrix"])
}

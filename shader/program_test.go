package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/render"
)

func fileStages(t *testing.T, dir string) []Stage {
	t.Helper()
	return []Stage{
		NewStage(Vertex, FromFile(writeFile(t, dir, "basic.vert", vertexSource))),
		NewStage(Fragment, FromFile(writeFile(t, dir, "basic.frag", fragmentSource))),
	}
}

func TestNewRejectsEmptyStages(t *testing.T) {
	_, err := New(newFakeDevice(render.OpenGL), nil)
	assert.ErrorIs(t, err, ErrNoShaderStagesProvided)
}

func TestNewRejectsDuplicateStage(t *testing.T) {
	dir := t.TempDir()
	stages := fileStages(t, dir)
	stages = append(stages, stages[0])
	_, err := New(newFakeDevice(render.OpenGL), stages)
	assert.ErrorIs(t, err, ErrStageAlreadyProvided)
}

func TestNewRejectsUnsupportedExtension(t *testing.T) {
	// The extension is checked before existence.
	_, err := New(newFakeDevice(render.OpenGL), []Stage{
		NewStage(Vertex, FromFile(filepath.Join(t.TempDir(), "missing.glsl"))),
	})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestNewRejectsMissingFile(t *testing.T) {
	_, err := New(newFakeDevice(render.OpenGL), []Stage{
		NewStage(Vertex, FromFile(filepath.Join(t.TempDir(), "missing.vert"))),
	})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestNewRejectsImplausibleSource(t *testing.T) {
	dir := t.TempDir()
	_, err := New(newFakeDevice(render.OpenGL), []Stage{
		NewStage(Vertex, FromFile(writeFile(t, dir, "empty.vert", "hello"))),
	})
	assert.ErrorIs(t, err, ErrInvalidShaderSource)

	_, err = New(newFakeDevice(render.OpenGL), []Stage{NewStage(Vertex, FromLiteral("  "))})
	assert.ErrorIs(t, err, ErrInvalidShaderSource)
}

func TestNewBackendFailure(t *testing.T) {
	dev := newFakeDevice(render.OpenGL)
	dev.failNext = errors.New("no context")
	_, err := New(dev, fileStages(t, t.TempDir()))
	assert.ErrorIs(t, err, ErrProgramCreation)
}

func TestProgramLifecycle(t *testing.T) {
	dev := newFakeDevice(render.OpenGL)
	p, err := New(dev, fileStages(t, t.TempDir()), WithCache(NewCache(t.TempDir())))
	require.NoError(t, err)
	assert.Equal(t, Created, p.State())
	assert.Equal(t, Glsl, p.Dialect())
	assert.Equal(t, 330, p.Version())
	assert.Zero(t, p.ID())

	err = p.UploadData("u_model_matrix", Mat4(mgl32.Ident4()))
	assert.ErrorIs(t, err, ErrInvalidState, "upload before submit")

	require.NoError(t, p.Submit())
	assert.Equal(t, Sent, p.State())
	assert.NotZero(t, p.ID())

	require.NoError(t, p.UploadData("u_model_matrix", Mat4(mgl32.Ident4())))
	assert.ErrorIs(t, p.UploadData("u_model_matrix", Uniform{}), ErrUnsupportedUniformType)
	assert.ErrorIs(t, p.UploadData("missing", Float(1)), ErrUniformNotFound)

	b := dev.created[0]
	assert.Equal(t, UniformMat4, b.uploads["u_model_matrix"].Kind())

	require.NoError(t, p.Free())
	assert.Equal(t, Deleted, p.State())
	require.NoError(t, p.Free(), "second free is a warning only")
	assert.Equal(t, 1, b.frees)
}

func TestSubmitRetriesFromSource(t *testing.T) {
	dev := newFakeDevice(render.OpenGL)
	p, err := New(dev, fileStages(t, t.TempDir()))
	require.NoError(t, err)
	b := dev.created[0]

	b.failCompile = &DiagnosticError{Err: ErrShaderCompilation, Stage: Fragment, Log: "0:1: error"}
	err = p.Submit()
	assert.ErrorIs(t, err, ErrShaderCompilation)
	assert.Equal(t, Sourced, p.State(), "state keeps the last reached step")

	require.NoError(t, p.Submit())
	assert.Equal(t, 2, b.sourced)
	assert.Equal(t, 2, b.compiled)
	assert.Equal(t, 1, b.linked)
	assert.Equal(t, Sent, p.State())

	require.NoError(t, p.Submit(), "submitting a sent program does nothing")
	assert.Equal(t, 1, b.linked)
}

func TestCompileRequiresSource(t *testing.T) {
	p, err := New(newFakeDevice(render.OpenGL), fileStages(t, t.TempDir()))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Compile(), ErrInvalidState)
	require.NoError(t, p.Source())
	require.NoError(t, p.Compile())
	assert.Equal(t, Compiled, p.State())
}

func TestFreeAPIMismatch(t *testing.T) {
	dev := newFakeDevice(render.OpenGL)
	p, err := New(dev, fileStages(t, t.TempDir()))
	require.NoError(t, err)
	dev.api = render.Vulkan
	assert.ErrorIs(t, p.Free(), ErrInvalidApi)
	assert.Equal(t, Created, p.State())
}

func TestDialectFromFirstStage(t *testing.T) {
	dev := newFakeDevice(render.Vulkan)
	p, err := New(dev, []Stage{NewStage(Vertex, FromLiteral(portableSource))})
	require.NoError(t, err)
	assert.Equal(t, GlslSpirV, p.Dialect())
	assert.Equal(t, GlslSpirV, dev.created[0].cfg.Dialect)

	p, err = New(dev, []Stage{NewStage(Vertex, FromLiteral(vertexSource))})
	require.NoError(t, err)
	assert.Equal(t, Glsl, p.Dialect())
}

func TestBinaryStageDialect(t *testing.T) {
	dir := t.TempDir()
	spv := filepath.Join(dir, "basic.vert.spv")
	require.NoError(t, os.WriteFile(spv, spirvModule(), 0o644))
	bin := writeFile(t, dir, "driver.bin", "\x01\x02\x03\x04")

	p, err := New(newFakeDevice(render.Vulkan), []Stage{
		NewStage(Vertex, FromFile(spv)),
		NewStage(Fragment, FromFile(bin)),
	})
	require.NoError(t, err)
	assert.Equal(t, SpirV, p.Dialect())
	assert.Equal(t, Binary, p.Stages()[1].Dialect())
	assert.True(t, p.Stages()[1].IsBinary())
}

func TestCacheHitMarksEveryStage(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache"))
	stages := fileStages(t, dir)
	old := time.Now().Add(-time.Hour)
	for _, s := range stages {
		require.NoError(t, os.Chtimes(s.Source().Path(), old, old))
		require.NoError(t, cache.Store(s.Source().Path(), spirvModule()))
	}

	dev := newFakeDevice(render.OpenGL)
	dev.extensions[GLSpirVExtension] = true
	p, err := New(dev, stages, WithCache(cache))
	require.NoError(t, err)
	assert.True(t, p.Cached())
	assert.Equal(t, SpirV, p.Dialect())
	for _, s := range p.Stages() {
		assert.True(t, s.CacheStatus())
		assert.Equal(t, cache.Path(s.Source().Path()), s.Path())
	}
}

func TestPartialCacheHitCachesNothing(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache"))
	stages := fileStages(t, dir)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stages[0].Source().Path(), old, old))
	require.NoError(t, cache.Store(stages[0].Source().Path(), spirvModule()))

	p, err := New(newFakeDevice(render.Vulkan), stages, WithCache(cache))
	require.NoError(t, err)
	assert.False(t, p.Cached())
}

func TestCacheIgnoredWithoutGLSpirV(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache"))
	stages := fileStages(t, dir)
	old := time.Now().Add(-time.Hour)
	for _, s := range stages {
		require.NoError(t, os.Chtimes(s.Source().Path(), old, old))
		require.NoError(t, cache.Store(s.Source().Path(), spirvModule()))
	}

	p, err := New(newFakeDevice(render.OpenGL), stages, WithCache(cache))
	require.NoError(t, err)
	assert.False(t, p.Cached())
	assert.Equal(t, Glsl, p.Dialect())
}

func TestVersionFallback(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "basic.vert", "#version 450 core\nvoid main() {}\n")
	fallback := writeFile(t, dir, "glsl_330.vert", vertexSource)

	dev := newFakeDevice(render.OpenGL)
	dev.maxVersion = 330
	p, err := New(dev, []Stage{NewStage(Vertex, FromFile(src))})
	require.NoError(t, err)
	assert.Equal(t, fallback, p.Stages()[0].Source().Path())
	assert.Equal(t, 330, p.Version())
}

func TestVersionFallbackKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "basic.vert", "#version 450 core\nvoid main() {}\n")

	dev := newFakeDevice(render.OpenGL)
	dev.maxVersion = 410
	p, err := New(dev, []Stage{NewStage(Vertex, FromFile(src))})
	require.NoError(t, err)
	assert.Equal(t, src, p.Stages()[0].Source().Path())
}

func TestRequestedVersion(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "basic.vert", "#version 450 core\nvoid main() {}\n")
	writeFile(t, dir, "glsl_400.vert", "#version 400 core\nvoid main() {}\n")

	p, err := New(newFakeDevice(render.OpenGL), []Stage{NewStage(Vertex, FromFile(src))}, WithGLSLVersion(410))
	require.NoError(t, err)
	assert.Equal(t, 400, p.Version())

	_, err = New(newFakeDevice(render.OpenGL), []Stage{NewStage(Vertex, FromFile(src))}, WithGLSLVersion(330))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestProgramStagesAreCopies(t *testing.T) {
	stages := fileStages(t, t.TempDir())
	p, err := New(newFakeDevice(render.OpenGL), stages)
	require.NoError(t, err)
	got := p.Stages()
	got[0] = nil
	assert.NotNil(t, p.Stages()[0])
	assert.True(t, p.Stages()[0].Equal(&stages[0]))
}

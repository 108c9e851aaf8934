package shader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceAccessors(t *testing.T) {
	f := FromFile("shaders/Basic.VERT")
	assert.True(t, f.IsFile())
	assert.Equal(t, "vert", f.Ext())
	assert.Empty(t, f.Text())

	l := FromLiteral("#version 330\nvoid main() {}")
	assert.False(t, l.IsFile())
	assert.Empty(t, l.Path())
	assert.Empty(t, l.Ext())
	assert.Contains(t, l.String(), "literal(")
}

func TestStageEqualIgnoresCacheStatus(t *testing.T) {
	a := NewStage(Vertex, FromFile("basic.vert"))
	b := NewStage(Vertex, FromFile("basic.vert"))
	b.markCached("cache/basic.vert.spv")
	assert.True(t, a.Equal(&b))
	assert.True(t, b.CacheStatus())
	assert.True(t, b.IsBinary())
	assert.Equal(t, "cache/basic.vert.spv", b.Path())

	c := NewStage(Fragment, FromFile("basic.vert"))
	assert.False(t, a.Equal(&c))
}

func TestGlslcArgs(t *testing.T) {
	args := GlslcCompiler{}.Args(Fragment)
	assert.Equal(t, "-fshader-stage=frag", args[0])
	assert.Contains(t, args, "-DVulkan")
	assert.Contains(t, args, "-finvert-y")
	assert.Contains(t, args, "-fauto-bind-uniforms")
	assert.Contains(t, args, "-Werror")
	assert.Equal(t, "-", args[len(args)-1])
}

func TestGlslcMissingExecutable(t *testing.T) {
	c := GlslcCompiler{Path: "/nonexistent/glslc"}
	_, err := c.Compile(context.Background(), Vertex, "basic.vert", vertexSource)
	assert.ErrorIs(t, err, ErrShaderCompilation)
}

func TestCompilerFunc(t *testing.T) {
	want := errors.New("boom")
	var c Compiler = CompilerFunc(func(_ context.Context, kind StageKind, name, _ string) ([]byte, error) {
		assert.Equal(t, Geometry, kind)
		assert.Equal(t, "x.geom", name)
		return nil, want
	})
	_, err := c.Compile(context.Background(), Geometry, "x.geom", "")
	require.ErrorIs(t, err, want)
}

func TestEntryPoint(t *testing.T) {
	assert.Equal(t, "vs_main", EntryPoint(Vertex))
	assert.Equal(t, "fs_main", EntryPoint(Fragment))
	assert.Equal(t, "cs_main", EntryPoint(Compute))
}

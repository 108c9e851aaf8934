package vulkan

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

const vertexSource = `#version 460
#extension GL_KHR_vulkan_glsl : enable
layout(location = 1) in vec3 a_position;
layout(binding = 0) uniform Camera { mat4 view; mat4 projection; };
void main() {
	gl_Position = projection * view * vec4(a_position, 1.0);
}
`

const fragmentSource = `#version 460
layout(location = 0) out vec4 frag_color;
void main() {
	frag_color = vec4(1.0);
}
`

func literalStages() []shader.Stage {
	return []shader.Stage{
		shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource)),
		shader.NewStage(shader.Fragment, shader.FromLiteral(fragmentSource)),
	}
}

func sentProgram(t *testing.T, c *Context) *shader.Program {
	t.Helper()
	p, err := shader.New(c, literalStages(), shader.WithCompiler(&fakeCompiler{}))
	require.NoError(t, err)
	require.NoError(t, p.Submit())
	return p
}

func TestProgramLifecycle(t *testing.T) {
	c, drv := newContext(t)
	compiler := &fakeCompiler{}

	p, err := shader.New(c, literalStages(), shader.WithCompiler(compiler))
	require.NoError(t, err)
	assert.Equal(t, render.Vulkan, p.API())
	assert.Equal(t, shader.GlslSpirV, p.Dialect())

	require.NoError(t, p.Submit())
	assert.Equal(t, shader.Sent, p.State())
	assert.Equal(t, 2, compiler.calls)
	require.Contains(t, drv.pipelines, p.ID())
	assert.Empty(t, drv.modules, "modules released after pipeline creation")

	desc := drv.pipelines[p.ID()]
	require.Len(t, desc.Stages, 2)
	assert.Equal(t, "main", desc.Stages[0].EntryPoint)
	assert.Equal(t, uint32(80), desc.PushSize, "size of the declared block")
	assert.Equal(t, gputypes.ShaderStageVertex, desc.PushVisible)
	assert.Equal(t, VertexLayout(), desc.Layout)

	require.NoError(t, p.Free())
	assert.Empty(t, drv.pipelines)
	require.NoError(t, p.Free())
}

func TestIdenticalProgramsSharePipeline(t *testing.T) {
	c, drv := newContext(t)
	a := sentProgram(t, c)
	b := sentProgram(t, c)

	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, 1, drv.created)
	hits, misses := c.Pipelines().Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	require.NoError(t, c.Apply(render.Wireframe(true)))
	w := sentProgram(t, c)
	assert.NotEqual(t, a.ID(), w.ID(), "state is part of the pipeline key")

	require.NoError(t, a.Free())
	assert.Contains(t, drv.pipelines, b.ID())
	require.NoError(t, b.Free())
	assert.NotContains(t, drv.pipelines, a.ID())
}

func TestFileStagesAreCached(t *testing.T) {
	c, _ := newContext(t)
	dir := t.TempDir()
	store := shader.NewCache(filepath.Join(dir, "cache"))

	var stages []shader.Stage
	for _, f := range []struct {
		kind shader.StageKind
		src  string
	}{
		{shader.Vertex, vertexSource},
		{shader.Fragment, fragmentSource},
	} {
		path := filepath.Join(dir, "basic."+f.kind.ShortName())
		require.NoError(t, os.WriteFile(path, []byte(f.src), 0o644))
		stages = append(stages, shader.NewStage(f.kind, shader.FromFile(path)))
	}

	compiler := &fakeCompiler{}
	first, err := shader.New(c, stages, shader.WithCache(store), shader.WithCompiler(compiler))
	require.NoError(t, err)
	assert.False(t, first.Cached())
	require.NoError(t, first.Submit())
	assert.Equal(t, 2, compiler.calls)
	for _, st := range stages {
		assert.FileExists(t, store.Path(st.Source().Path()))
	}

	second, err := shader.New(c, stages, shader.WithCache(store), shader.WithCompiler(compiler))
	require.NoError(t, err)
	assert.True(t, second.Cached())
	assert.Equal(t, shader.SpirV, second.Dialect())
	require.NoError(t, second.Submit())
	assert.Equal(t, 2, compiler.calls, "cached stages are not recompiled")
	assert.Equal(t, first.ID(), second.ID())
}

func TestCompilerFailure(t *testing.T) {
	c, drv := newContext(t)
	compiler := &fakeCompiler{err: &shader.DiagnosticError{Err: shader.ErrShaderCompilation, Log: "error: '}' : unexpected"}}

	p, err := shader.New(c, literalStages(), shader.WithCompiler(compiler))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Submit(), shader.ErrShaderCompilation)
	assert.Empty(t, drv.modules)
	assert.Zero(t, p.ID())

	compiler.err = nil
	require.NoError(t, p.Submit())
	assert.Equal(t, shader.Sent, p.State())
}

func TestPipelineFailure(t *testing.T) {
	c, drv := newContext(t)
	drv.failPipeline = errDriver

	p, err := shader.New(c, literalStages(), shader.WithCompiler(&fakeCompiler{}))
	require.NoError(t, err)
	err = p.Submit()
	assert.ErrorIs(t, err, shader.ErrProgramCreation)
	assert.ErrorIs(t, err, errDriver)
	assert.Empty(t, drv.modules)
}

func TestDriverBinaryRejected(t *testing.T) {
	c, _ := newContext(t)
	dir := t.TempDir()
	var stages []shader.Stage
	for _, kind := range []shader.StageKind{shader.Vertex, shader.Fragment} {
		path := filepath.Join(dir, kind.ShortName()+".bin")
		require.NoError(t, os.WriteFile(path, []byte("driver blob"), 0o644))
		stages = append(stages, shader.NewStage(kind, shader.FromFile(path)))
	}
	p, err := shader.New(c, stages)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Submit(), shader.ErrShaderBinary)
}

func TestBackendRequiresInit(t *testing.T) {
	_, err := shader.New(NewContext(newFakeDriver()), literalStages())
	assert.ErrorIs(t, err, shader.ErrProgramCreation)
}

func TestUploadFollowsDeclaredOffsets(t *testing.T) {
	c, _ := newContext(t)
	for _, order := range [][]string{{"u_time", "u_model_matrix"}, {"u_model_matrix", "u_time"}} {
		p := sentProgram(t, c)
		for _, name := range order {
			switch name {
			case "u_time":
				require.NoError(t, p.UploadData(name, shader.Float(0.5)))
			case "u_model_matrix":
				require.NoError(t, p.UploadData(name, shader.Mat4(mgl32.Translate3D(1, 2, 3))))
			}
		}
		push := pushBytes(t, p)
		require.Len(t, push, 80, "upload order %v", order)
		assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(push)))
		assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(push[16:])))
		assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(push[16+48:])), "translation x")
		require.NoError(t, p.Free())
	}
}

func TestUploadUndeclaredUniform(t *testing.T) {
	c, _ := newContext(t)
	p := sentProgram(t, c)

	assert.ErrorIs(t, p.UploadData("u_does_not_exist", shader.Float(1)), shader.ErrUniformNotFound)
	assert.ErrorIs(t, p.UploadData("u_time", shader.Int(1)), shader.ErrUnsupportedUniformType)
	assert.Equal(t, make([]byte, 80), pushBytes(t, p), "failed uploads leave the block untouched")
}

func TestOversizedPushBlockRejected(t *testing.T) {
	c, drv := newContext(t)
	big := pushModule("", pushMember{"u_model_matrix", "mat4", 0}, pushMember{"u_view", "mat4", 64}, pushMember{"u_time", "float", 128})
	stages := []shader.Stage{
		shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource)),
		shader.NewStage(shader.Fragment, shader.FromLiteral(fragmentSource)),
	}
	p, err := shader.New(c, stages, shader.WithCompiler(spirvCompiler{shader.Vertex: big}))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Submit(), shader.ErrProgramCreation)
	assert.Empty(t, drv.modules)
	assert.Empty(t, drv.pipelines)
}

func TestProgramWithoutPushBlock(t *testing.T) {
	c, drv := newContext(t)
	p, err := shader.New(c, literalStages(), shader.WithCompiler(spirvCompiler{}))
	require.NoError(t, err)
	require.NoError(t, p.Submit())

	desc := drv.pipelines[p.ID()]
	assert.Zero(t, desc.PushSize)
	assert.Zero(t, desc.PushVisible)
	assert.ErrorIs(t, p.UploadData("u_time", shader.Float(1)), shader.ErrUniformNotFound)
}

func TestUploadBeforeLink(t *testing.T) {
	c, _ := newContext(t)
	b := &shaderBackend{ctx: c}
	assert.ErrorIs(t, b.Upload("u_time", shader.Float(1)), shader.ErrInvalidState)
}

// spirvCompiler returns a fixed module per stage; stages it lacks get one
// without a push-constant block.
type spirvCompiler map[shader.StageKind][]uint32

func (c spirvCompiler) Compile(_ context.Context, kind shader.StageKind, _, _ string) ([]byte, error) {
	if words, ok := c[kind]; ok {
		return shader.Bytes(words), nil
	}
	return shader.Bytes(newSpirvAsm().words), nil
}

func pushBytes(t *testing.T, p *shader.Program) []byte {
	t.Helper()
	b, ok := p.Backend().(*shaderBackend)
	require.True(t, ok)
	return b.PushConstants()
}

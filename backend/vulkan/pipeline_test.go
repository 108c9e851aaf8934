package vulkan

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

func testDesc() *PipelineDesc {
	return &PipelineDesc{
		Stages: []ModuleStage{
			{Kind: shader.Vertex, Module: 1, EntryPoint: "main", CodeHash: 0xABCD},
			{Kind: shader.Fragment, Module: 2, EntryPoint: "main", CodeHash: 0x1234},
		},
		State:    DefaultPipelineState(),
		Layout:   VertexLayout(),
		PushSize: PushConstantSize,
		Target:   RenderTarget{Color: gputypes.TextureFormatBGRA8Unorm, Depth: DepthFormat, Samples: 1},
	}
}

func TestHashPipelineDesc(t *testing.T) {
	base := HashPipelineDesc(testDesc())
	assert.Equal(t, base, HashPipelineDesc(testDesc()))

	d := testDesc()
	d.Stages[0].Module = 99
	assert.Equal(t, base, HashPipelineDesc(d), "module handles are not part of the key")

	tests := []struct {
		name   string
		change func(*PipelineDesc)
	}{
		{"code", func(d *PipelineDesc) { d.Stages[1].CodeHash++ }},
		{"entry point", func(d *PipelineDesc) { d.Stages[0].EntryPoint = "vs_main" }},
		{"cull", func(d *PipelineDesc) { d.State.CullMode = gputypes.CullModeFront }},
		{"wireframe", func(d *PipelineDesc) { d.State.Wireframe = true }},
		{"depth", func(d *PipelineDesc) { d.State.DepthTest = true }},
		{"samples", func(d *PipelineDesc) { d.State.SampleCount = 4 }},
		{"srgb", func(d *PipelineDesc) { d.State.SRGB = true }},
		{"blend", func(d *PipelineDesc) { _ = d.State.apply(render.Blending(true)) }},
		{"push", func(d *PipelineDesc) { d.PushSize = 64 }},
		{"target format", func(d *PipelineDesc) { d.Target.Color = gputypes.TextureFormatBGRA8UnormSrgb }},
		{"target samples", func(d *PipelineDesc) { d.Target.Samples = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDesc()
			tt.change(d)
			assert.NotEqual(t, base, HashPipelineDesc(d))
		})
	}
}

func TestVertexLayout(t *testing.T) {
	l := VertexLayout()
	assert.Equal(t, uint64(asset.VertexStride), l.ArrayStride)
	require.Len(t, l.Attributes, len(asset.VertexLayout))
	assert.Equal(t, gputypes.VertexFormatUint32, l.Attributes[0].Format)
	assert.Equal(t, gputypes.VertexFormatFloat32x3, l.Attributes[1].Format)
	assert.Equal(t, gputypes.VertexFormatFloat32x4, l.Attributes[3].Format)
	assert.Equal(t, gputypes.VertexFormatFloat32x2, l.Attributes[4].Format)
}

func TestPipelineStateIgnoresUnknownHint(t *testing.T) {
	s := DefaultPipelineState()
	assert.Error(t, s.apply(render.Hint{Kind: render.HintKind(200)}))
}

func TestPipelineCache(t *testing.T) {
	drv := newFakeDriver()
	c := NewPipelineCache()
	assert.Zero(t, c.HitRate())

	key, h1, err := c.Acquire(drv, testDesc())
	require.NoError(t, err)
	_, h2, err := c.Acquire(drv, testDesc())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, drv.created)
	assert.InDelta(t, 0.5, c.HitRate(), 1e-9)

	c.Release(drv, key)
	assert.Equal(t, 1, c.Len())
	c.Release(drv, key)
	assert.Zero(t, c.Len())
	assert.Empty(t, drv.pipelines)
	c.Release(drv, key)

	drv.failPipeline = errDriver
	_, _, err = c.Acquire(drv, testDesc())
	assert.ErrorIs(t, err, errDriver)
	assert.Zero(t, c.Len())

	drv.failPipeline = nil
	_, _, err = c.Acquire(drv, testDesc())
	require.NoError(t, err)
	c.DestroyAll(drv)
	assert.Zero(t, c.Len())
	assert.Empty(t, drv.pipelines)
	hits, misses := c.Stats()
	assert.Zero(t, hits+misses)
}

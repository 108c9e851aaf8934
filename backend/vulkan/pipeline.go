package vulkan

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
)

// PipelineState is the fixed-function state accumulated from render hints.
type PipelineState struct {
	Topology  gputypes.PrimitiveTopology
	FrontFace gputypes.FrontFace
	CullMode  gputypes.CullMode
	Wireframe bool

	DepthTest    bool
	DepthCompare gputypes.CompareFunction

	// Blend is nil when blending is disabled.
	Blend *BlendState

	SampleCount uint32
	SRGB        bool
}

// BlendState describes color and alpha blending.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// BlendComponent is one blend equation.
type BlendComponent struct {
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
	Operation gputypes.BlendOperation
}

// DefaultPipelineState returns the state used before any hint is applied.
func DefaultPipelineState() PipelineState {
	return PipelineState{
		Topology:     gputypes.PrimitiveTopologyTriangleList,
		FrontFace:    gputypes.FrontFaceCCW,
		CullMode:     gputypes.CullModeNone,
		DepthCompare: gputypes.CompareFunctionLess,
		SampleCount:  1,
	}
}

// apply folds a hint into the state. MSAA sample counts are validated by the
// caller.
func (s *PipelineState) apply(h render.Hint) error {
	switch h.Kind {
	case render.HintDepthTest:
		s.DepthTest = h.Enabled
		s.DepthCompare = gputypes.CompareFunctionLess
	case render.HintCullFace:
		s.CullMode = h.Cull
	case render.HintWireframe:
		s.Wireframe = h.Enabled
	case render.HintMSAA:
		s.SampleCount = max(uint32(h.Samples), 1)
	case render.HintSRGB:
		s.SRGB = h.Enabled
	case render.HintBlending:
		if !h.Enabled {
			s.Blend = nil
			break
		}
		fn := render.AlphaBlend
		if h.HasBlendFunc {
			fn = h.Blend
		}
		s.Blend = &BlendState{
			Color: BlendComponent{SrcFactor: fn.Src, DstFactor: fn.Dst, Operation: gputypes.BlendOperationAdd},
			Alpha: BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOneMinusSrcAlpha, Operation: gputypes.BlendOperationAdd},
		}
	default:
		return fmt.Errorf("%w: hint %s", renderer.ErrNotImplemented, h.Kind)
	}
	return nil
}

// VertexLayout returns the vertex buffer layout of asset.Vertex.
func VertexLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 0, len(asset.VertexLayout))
	for _, a := range asset.VertexLayout {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         vertexFormat(a),
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(asset.VertexStride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func vertexFormat(a asset.Attrib) gputypes.VertexFormat {
	if a.Type == asset.AttribUint {
		return gputypes.VertexFormatUint32
	}
	switch a.Components {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// HashPipelineDesc hashes everything that makes two pipelines different.
// Module handles are not hashed; the code hash identifies a module.
func HashPipelineDesc(desc *PipelineDesc) uint64 {
	h := fnv.New64a()

	hashWriteUint32(h, uint32(len(desc.Stages)))
	for _, st := range desc.Stages {
		hashWriteUint32(h, uint32(st.Kind))
		hashWriteUint64(h, st.CodeHash)
		hashWriteString(h, st.EntryPoint)
	}

	s := &desc.State
	hashWriteUint32(h, uint32(s.Topology))
	hashWriteUint32(h, uint32(s.FrontFace))
	hashWriteUint32(h, uint32(s.CullMode))
	hashWriteBool(h, s.Wireframe)
	hashWriteBool(h, s.DepthTest)
	hashWriteUint32(h, uint32(s.DepthCompare))
	if s.Blend != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(s.Blend.Color.SrcFactor))
		hashWriteUint32(h, uint32(s.Blend.Color.DstFactor))
		hashWriteUint32(h, uint32(s.Blend.Color.Operation))
		hashWriteUint32(h, uint32(s.Blend.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(s.Blend.Alpha.DstFactor))
		hashWriteUint32(h, uint32(s.Blend.Alpha.Operation))
	} else {
		hashWriteBool(h, false)
	}
	hashWriteUint32(h, s.SampleCount)
	hashWriteBool(h, s.SRGB)

	hashWriteUint64(h, desc.Layout.ArrayStride)
	hashWriteUint32(h, uint32(len(desc.Layout.Attributes)))
	for _, a := range desc.Layout.Attributes {
		hashWriteUint32(h, a.ShaderLocation)
		hashWriteUint32(h, uint32(a.Format))
		hashWriteUint64(h, a.Offset)
	}
	hashWriteUint32(h, desc.PushSize)
	hashWriteUint32(h, uint32(desc.PushVisible))
	hashWriteUint32(h, uint32(desc.Target.Color))
	hashWriteUint32(h, uint32(desc.Target.Depth))
	hashWriteUint32(h, desc.Target.Samples)

	return h.Sum64()
}

func hashBytes(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

// PipelineCache shares pipelines between programs with identical code and
// state. Entries are reference counted and destroyed with their last user.
//
// PipelineCache is safe for concurrent use. Statistics are read without the
// lock.
type PipelineCache struct {
	mu      sync.RWMutex
	entries map[uint64]*pipelineEntry

	hits   uint64
	misses uint64
}

type pipelineEntry struct {
	handle uint64
	refs   int
}

// NewPipelineCache returns an empty cache.
func NewPipelineCache() *PipelineCache {
	return &PipelineCache{entries: make(map[uint64]*pipelineEntry)}
}

// Acquire returns the pipeline for desc, creating it with drv on a miss, and
// takes a reference on it.
func (c *PipelineCache) Acquire(drv Driver, desc *PipelineDesc) (key, handle uint64, err error) {
	key = HashPipelineDesc(desc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.refs++
		atomic.AddUint64(&c.hits, 1)
		return key, e.handle, nil
	}

	handle, err = drv.CreatePipeline(*desc)
	if err != nil {
		return 0, 0, err
	}
	c.entries[key] = &pipelineEntry{handle: handle, refs: 1}
	atomic.AddUint64(&c.misses, 1)
	return key, handle, nil
}

// Release drops a reference and destroys the pipeline when none remain.
func (c *PipelineCache) Release(drv Driver, key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	drv.DestroyPipeline(e.handle)
	delete(c.entries, key)
}

// Stats returns cache hits and misses.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (c *PipelineCache) HitRate() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Len returns the number of live pipelines.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DestroyAll destroys every pipeline regardless of references and resets the
// statistics.
func (c *PipelineCache) DestroyAll(drv Driver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		drv.DestroyPipeline(e.handle)
	}
	c.entries = make(map[uint64]*pipelineEntry)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

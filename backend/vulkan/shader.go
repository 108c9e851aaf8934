package vulkan

import (
	"context"
	"errors"
	"fmt"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/shader"
)

// PushConstantSize is the largest push-constant block a program may declare,
// the minimum every Vulkan implementation guarantees.
const PushConstantSize = 128

// pushSlot is the place of one uniform in the push-constant block.
type pushSlot struct {
	offset int
	kind   shader.UniformKind
}

// shaderBackend is the Vulkan half of a shader.Program: SPIR-V modules and a
// graphics pipeline.
type shaderBackend struct {
	ctx *Context
	cfg shader.BackendConfig

	sources []stageSource
	modules []ModuleStage
	code    [][]uint32
	key     uint64
	handle  uint64

	layout pushLayout
	target RenderTarget
	push   [PushConstantSize]byte
	freed  bool
}

// stageSource is the input of one stage: SPIR-V bytes or text.
type stageSource struct {
	spv  []byte
	text string
}

// NewShaderBackend implements renderer.Context.
func (c *Context) NewShaderBackend(cfg shader.BackendConfig) (shader.Backend, error) {
	if !c.initialized {
		return nil, errNoDevice
	}
	return &shaderBackend{ctx: c, cfg: cfg}, nil
}

func (s *shaderBackend) API() render.API { return render.Vulkan }

// Source reads every stage: binaries as bytes, text sources as text.
func (s *shaderBackend) Source(stages []*shader.Stage) error {
	s.sources = s.sources[:0]
	for _, st := range stages {
		if st.IsBinary() {
			if st.Dialect() == shader.Binary && !st.CacheStatus() {
				s.sources = nil
				return fmt.Errorf("%w: Vulkan loads SPIR-V only, %s is a driver binary", shader.ErrShaderBinary, st.Path())
			}
			data, err := shader.ReadBinary(st)
			if err != nil {
				s.sources = nil
				return err
			}
			s.sources = append(s.sources, stageSource{spv: data})
			continue
		}
		text, err := shader.ReadText(st)
		if err != nil {
			s.sources = nil
			return fmt.Errorf("%w: %w", shader.ErrShaderSourcing, err)
		}
		s.sources = append(s.sources, stageSource{text: text})
	}
	return nil
}

// Compile turns text stages into SPIR-V, caches the result of file stages and
// creates one shader module per stage.
func (s *shaderBackend) Compile(stages []*shader.Stage) error {
	if len(s.sources) != len(stages) {
		return fmt.Errorf("%w: %d stages sourced, %d given", shader.ErrInvalidState, len(s.sources), len(stages))
	}
	log := wave.Component("Vulkan")
	for i, st := range stages {
		spv, err := s.spirv(st, s.sources[i])
		if err != nil {
			s.release()
			return err
		}
		words, err := shader.Words(spv)
		if err != nil {
			s.release()
			return err
		}
		module, err := s.ctx.drv.CreateShaderModule(words)
		if err != nil {
			s.release()
			return fmt.Errorf("%w: %s stage: %w", shader.ErrShaderModule, st.Kind(), err)
		}
		entry := "main"
		if st.Dialect() == shader.Wgsl {
			entry = shader.EntryPoint(st.Kind())
		}
		s.code = append(s.code, words)
		s.modules = append(s.modules, ModuleStage{
			Kind:       st.Kind(),
			Module:     module,
			EntryPoint: entry,
			CodeHash:   hashBytes(spv),
		})
		log.Debug("shader module created", "stage", st.Kind(), "bytes", len(spv))
	}
	s.sources = nil
	return nil
}

func (s *shaderBackend) spirv(st *shader.Stage, src stageSource) ([]byte, error) {
	if src.spv != nil {
		return src.spv, nil
	}
	if st.Dialect() == shader.Wgsl {
		words, err := shader.CompileWGSL(src.text)
		if err != nil {
			var diag *shader.DiagnosticError
			if errors.As(err, &diag) {
				diag.Stage = st.Kind()
			}
			return nil, err
		}
		return shader.Bytes(words), nil
	}

	if s.cfg.Compiler == nil {
		return nil, fmt.Errorf("%w: no GLSL compiler configured", shader.ErrShaderCompilation)
	}
	name := "<literal>"
	if st.Source().IsFile() {
		name = st.Source().Path()
	}
	spv, err := s.cfg.Compiler.Compile(context.Background(), st.Kind(), name, src.text)
	if err != nil {
		return nil, err
	}
	if st.Source().IsFile() && s.cfg.Cache != nil {
		if err := s.cfg.Cache.Store(st.Source().Path(), spv); err != nil {
			wave.Component("Vulkan").Warn("cannot cache shader stage", "source", name, "err", err)
		}
	}
	return spv, nil
}

// Link reads the push-constant block of every stage and creates the graphics
// pipeline, shared with other programs built from the same code and state.
func (s *shaderBackend) Link(stages []*shader.Stage) error {
	if len(s.modules) != len(stages) {
		return fmt.Errorf("%w: %d modules, %d stages", shader.ErrInvalidState, len(s.modules), len(stages))
	}
	var layout pushLayout
	for i, m := range s.modules {
		block, err := reflectPushBlock(s.code[i])
		if err != nil {
			s.release()
			return fmt.Errorf("%s stage: %w", m.Kind, err)
		}
		if err := layout.merge(m.Kind, block); err != nil {
			s.release()
			return err
		}
	}
	if layout.size > PushConstantSize {
		s.release()
		return fmt.Errorf("%w: push constant block of %d bytes exceeds %d",
			shader.ErrProgramCreation, layout.size, PushConstantSize)
	}
	desc := &PipelineDesc{
		Stages:      append([]ModuleStage(nil), s.modules...),
		State:       s.ctx.state,
		Layout:      VertexLayout(),
		PushSize:    uint32(layout.size+3) &^ 3,
		PushVisible: layout.stages,
		Target:      s.ctx.target(),
	}
	key, handle, err := s.ctx.pipelines.Acquire(s.ctx.drv, desc)
	if err != nil {
		s.release()
		return fmt.Errorf("%w: %w", shader.ErrProgramCreation, err)
	}
	// The pipeline keeps what it needs from the modules.
	s.release()
	s.key, s.handle = key, handle
	s.layout = layout
	s.target = desc.Target
	s.push = [PushConstantSize]byte{}
	s.freed = false
	return nil
}

func (s *shaderBackend) ID() uint64 { return s.handle }

// Upload writes a uniform at the offset the shaders declare for it in their
// push-constant block.
func (s *shaderBackend) Upload(name string, value shader.Uniform) error {
	if s.handle == 0 {
		return fmt.Errorf("%w: pipeline not created", shader.ErrInvalidState)
	}
	slot, ok := s.layout.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q is not in the push constant block", shader.ErrUniformNotFound, name)
	}
	if kind := value.Kind(); slot.kind != kind {
		return fmt.Errorf("%w: %q holds a %s, got %s", shader.ErrUnsupportedUniformType, name, slot.kind, kind)
	}
	copy(s.push[slot.offset:], value.AppendBytes(nil))
	return nil
}

// PushConstants returns the bytes of the push-constant block.
func (s *shaderBackend) PushConstants() []byte {
	return append([]byte(nil), s.push[:s.layout.size]...)
}

// Free releases the modules and the pipeline reference.
func (s *shaderBackend) Free() error {
	if s.freed {
		return nil
	}
	s.release()
	if s.handle != 0 {
		s.ctx.pipelines.Release(s.ctx.drv, s.key)
		s.handle, s.key = 0, 0
	}
	s.layout = pushLayout{}
	s.freed = true
	return nil
}

func (s *shaderBackend) release() {
	for _, m := range s.modules {
		s.ctx.drv.DestroyShaderModule(m.Module)
	}
	s.modules = nil
	s.code = nil
	s.sources = nil
}

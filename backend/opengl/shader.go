package opengl

import (
	"fmt"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/internal/cache"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/shader"
)

// SpirVEntryPoint is the entry point specialized in SPIR-V stages.
const SpirVEntryPoint = "main"

// shaderBackend is the OpenGL half of a shader.Program.
type shaderBackend struct {
	ctx *Context
	gl  GL
	cfg shader.BackendConfig

	program   uint32
	handles   []uint32
	locations *cache.Cache[string, int32]
	freed     bool
}

// NewShaderBackend implements renderer.Context.
func (c *Context) NewShaderBackend(cfg shader.BackendConfig) (shader.Backend, error) {
	if !c.initialized {
		return nil, fmt.Errorf("%w: context not initialized", renderer.ErrInvalidState)
	}
	return &shaderBackend{
		ctx:       c,
		gl:        c.gl,
		cfg:       cfg,
		locations: cache.New[string, int32](0),
	}, nil
}

func stageType(kind shader.StageKind) uint32 {
	switch kind {
	case shader.Fragment:
		return FRAGMENT_SHADER
	case shader.Compute:
		return COMPUTE_SHADER
	case shader.Geometry:
		return GEOMETRY_SHADER
	default:
		return VERTEX_SHADER
	}
}

func (s *shaderBackend) API() render.API { return render.OpenGL }

// Source creates one shader object per stage and uploads text sources.
func (s *shaderBackend) Source(stages []*shader.Stage) error {
	s.release()
	for _, st := range stages {
		h := s.gl.CreateShader(stageType(st.Kind()))
		if h == 0 {
			s.release()
			return fmt.Errorf("%w: glCreateShader failed for %s stage", shader.ErrShaderSourcing, st.Kind())
		}
		s.handles = append(s.handles, h)
		if st.IsBinary() {
			continue
		}
		text, err := s.text(st)
		if err != nil {
			s.release()
			return err
		}
		s.gl.ShaderSource(h, text)
		if err := s.ctx.check.check("glShaderSource"); err != nil {
			s.release()
			return fmt.Errorf("%w: %w", shader.ErrShaderSourcing, err)
		}
	}
	return nil
}

// text returns GLSL for a text stage, translating WGSL.
func (s *shaderBackend) text(st *shader.Stage) (string, error) {
	src, err := shader.ReadText(st)
	if err != nil {
		return "", err
	}
	if st.Dialect() != shader.Wgsl {
		return src, nil
	}
	glsl, err := shader.TranslateWGSL(src, st.Kind(), s.ctx.glslVersion)
	if err != nil {
		return "", err
	}
	wave.Component("OpenGL").Debug("translated WGSL stage", "stage", st.Kind(), "glsl", s.ctx.glslVersion)
	return glsl, nil
}

// Compile compiles text stages and loads binary ones.
func (s *shaderBackend) Compile(stages []*shader.Stage) error {
	if len(s.handles) != len(stages) {
		return fmt.Errorf("%w: %d stages sourced, %d given", shader.ErrInvalidState, len(s.handles), len(stages))
	}
	for i, st := range stages {
		h := s.handles[i]
		if st.IsBinary() {
			if err := s.loadBinary(h, st); err != nil {
				s.release()
				return err
			}
			continue
		}
		s.gl.CompileShader(h)
		if s.gl.GetShaderiv(h, COMPILE_STATUS) == 0 {
			diag := s.gl.GetShaderInfoLog(h)
			s.release()
			return &shader.DiagnosticError{Err: shader.ErrShaderSyntax, Stage: st.Kind(), Log: diag}
		}
	}
	return nil
}

// loadBinary loads a SPIR-V module or a driver binary into shader object h.
func (s *shaderBackend) loadBinary(h uint32, st *shader.Stage) error {
	n := int(s.gl.GetIntegerv(NUM_SHADER_BINARY_FORMATS))
	if n <= 0 {
		return fmt.Errorf("%w: driver reports none", shader.ErrNoBinaryFormats)
	}
	data, err := shader.ReadBinary(st)
	if err != nil {
		return err
	}

	if st.CacheStatus() || st.Dialect() == shader.SpirV {
		if !s.ctx.HasExtension(shader.GLSpirVExtension) {
			return fmt.Errorf("%w: loading SPIR-V requires %s", shader.ErrInvalidApi, shader.GLSpirVExtension)
		}
		if _, err := shader.Words(data); err != nil {
			return err
		}
		s.gl.ShaderBinary([]uint32{h}, SHADER_BINARY_FORMAT_SPIR_V, data)
		s.gl.SpecializeShader(h, SpirVEntryPoint)
	} else {
		formats := s.gl.GetIntegers(SHADER_BINARY_FORMATS, n)
		if len(formats) == 0 {
			return fmt.Errorf("%w: driver listed no format", shader.ErrNoBinaryFormats)
		}
		s.gl.ShaderBinary([]uint32{h}, uint32(formats[0]), data)
	}
	if err := s.ctx.check.check("glShaderBinary"); err != nil {
		return fmt.Errorf("%w: %w", shader.ErrShaderBinary, err)
	}
	if s.gl.GetShaderiv(h, COMPILE_STATUS) == 0 {
		return &shader.DiagnosticError{Err: shader.ErrShaderBinary, Stage: st.Kind(), Log: s.gl.GetShaderInfoLog(h)}
	}
	wave.Component("OpenGL").Debug("loaded shader binary", "stage", st.Kind(), "path", st.Path(), "bytes", len(data))
	return nil
}

// Link creates the program, attaches and links every stage, then drops the
// stage objects.
func (s *shaderBackend) Link(stages []*shader.Stage) error {
	if len(s.handles) != len(stages) {
		return fmt.Errorf("%w: %d stages compiled, %d given", shader.ErrInvalidState, len(s.handles), len(stages))
	}
	program := s.gl.CreateProgram()
	if program == 0 {
		s.release()
		return fmt.Errorf("%w: glCreateProgram failed", shader.ErrProgramCreation)
	}
	for _, h := range s.handles {
		s.gl.AttachShader(program, h)
	}
	s.gl.LinkProgram(program)
	if s.gl.GetProgramiv(program, LINK_STATUS) == 0 {
		diag := s.gl.GetProgramInfoLog(program)
		for _, h := range s.handles {
			s.gl.DetachShader(program, h)
		}
		s.gl.DeleteProgram(program)
		s.release()
		return &shader.DiagnosticError{Err: shader.ErrProgramCreation, Stage: stages[0].Kind(), Log: diag}
	}
	for _, h := range s.handles {
		s.gl.DetachShader(program, h)
	}
	s.release()

	s.gl.ValidateProgram(program)
	if s.gl.GetProgramiv(program, VALIDATE_STATUS) == 0 {
		wave.Component("OpenGL").Warn("program validation failed", "id", program, "log", s.gl.GetProgramInfoLog(program))
	}
	if idx := s.gl.GetUniformBlockIndex(program, CameraBlock); idx != INVALID_INDEX {
		s.gl.UniformBlockBinding(program, idx, CameraBinding)
	}
	if err := s.ctx.check.check("glLinkProgram"); err != nil {
		s.gl.DeleteProgram(program)
		return fmt.Errorf("%w: %w", shader.ErrProgramCreation, err)
	}
	s.program = program
	s.freed = false
	return nil
}

func (s *shaderBackend) ID() uint64 { return uint64(s.program) }

// Upload binds the program and sets a uniform. Locations are resolved once per
// name; unknown names are not cached.
func (s *shaderBackend) Upload(name string, value shader.Uniform) error {
	if s.program == 0 {
		return fmt.Errorf("%w: program not linked", shader.ErrInvalidState)
	}
	s.gl.UseProgram(s.program)
	loc, err := s.locations.Resolve(name, func() (int32, error) {
		l := s.gl.GetUniformLocation(s.program, name)
		if l < 0 {
			return 0, fmt.Errorf("%w: %q", shader.ErrUniformNotFound, name)
		}
		return l, nil
	})
	if err != nil {
		return err
	}

	switch value.Kind() {
	case shader.UniformUint:
		s.gl.Uniform1ui(loc, value.Uint())
	case shader.UniformInt:
		s.gl.Uniform1i(loc, value.Int())
	case shader.UniformFloat:
		s.gl.Uniform1f(loc, value.Float())
	case shader.UniformDouble:
		s.gl.Uniform1d(loc, value.Double())
	case shader.UniformMat4:
		m := value.Mat4()
		s.gl.UniformMatrix4fv(loc, (*[16]float32)(&m))
	default:
		return fmt.Errorf("%w: %s", shader.ErrUnsupportedUniformType, value.Kind())
	}
	if err := s.ctx.check.check("glUniform " + name); err != nil {
		return fmt.Errorf("%w: %q does not accept %s: %w", shader.ErrUnsupportedUniformType, name, value.Kind(), err)
	}
	return nil
}

// Free deletes the program and any stage objects left behind.
func (s *shaderBackend) Free() error {
	if s.freed {
		return nil
	}
	s.release()
	if s.program != 0 {
		s.gl.DeleteProgram(s.program)
		s.program = 0
	}
	s.locations.Clear()
	s.freed = true
	return s.ctx.check.check("glDeleteProgram")
}

func (s *shaderBackend) release() {
	for _, h := range s.handles {
		s.gl.DeleteShader(h)
	}
	s.handles = nil
}

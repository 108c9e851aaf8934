package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/render"
)

// Option configures a Program during creation.
type Option func(*programOptions)

type programOptions struct {
	cache       *Cache
	compiler    Compiler
	glslVersion int
}

func defaultOptions() programOptions {
	return programOptions{
		cache:    NewCache(DefaultCacheDir),
		compiler: GlslcCompiler{},
	}
}

// WithCache sets the binary cache. The default is DefaultCacheDir.
func WithCache(c *Cache) Option {
	return func(o *programOptions) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithCompiler sets the GLSL to SPIR-V compiler used by backends that need
// one. The default runs glslc.
func WithCompiler(c Compiler) Option {
	return func(o *programOptions) {
		if c != nil {
			o.compiler = c
		}
	}
}

// WithGLSLVersion requests a specific GLSL version. File stages written for
// another version are replaced by a sibling "glsl_<version>.<ext>" file,
// searching downwards in steps of 10 until 330.
func WithGLSLVersion(v int) Option {
	return func(o *programOptions) {
		o.glslVersion = v
	}
}

// minFallbackVersion is the lowest version searched for replacement sources.
const minFallbackVersion = 330

// step is the next native step a program must run.
type step uint8

const (
	stepSource step = iota
	stepCompile
	stepLink
	stepDone
)

// Program is a shader program: an ordered list of stages and the backend
// half that owns the native objects.
//
// A Program is not safe for concurrent use. It must be freed explicitly with
// Free on the thread that owns the graphics context.
type Program struct {
	device  Device
	backend Backend
	opts    programOptions

	state   State
	next    step
	dialect Dialect
	version int
	stages  []*Stage
}

// New validates stages, resolves their cache status and dialect, and creates
// the backend matching dev's API. The returned program is in state Created.
func New(dev Device, stages []Stage, opts ...Option) (*Program, error) {
	log := wave.Component("Shader")
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidApi)
	}
	if len(stages) == 0 {
		log.Error("cannot create shader: no shader stages provided")
		return nil, ErrNoShaderStagesProvided
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Program{device: dev, opts: o, version: dev.MaxShaderVersion()}
	seen := make(map[StageKind]bool, len(stages))
	for i := range stages {
		s := stages[i]
		if seen[s.kind] {
			log.Error("cannot create shader: stage provided twice", "stage", s.kind)
			return nil, fmt.Errorf("%w: %s", ErrStageAlreadyProvided, s.kind)
		}
		seen[s.kind] = true
		p.stages = append(p.stages, &s)
	}

	for i, s := range p.stages {
		if err := p.validate(s); err != nil {
			log.Error("cannot create shader: invalid stage", "stage", s, "err", err)
			return nil, err
		}
		if err := p.resolveVersion(s, i == 0); err != nil {
			log.Error("cannot create shader: no source for requested version", "stage", s, "err", err)
			return nil, err
		}
	}

	p.loadCache()
	p.dialect = p.stages[0].dialect

	backend, err := dev.NewShaderBackend(BackendConfig{
		Dialect:  p.dialect,
		Version:  p.version,
		Cache:    o.cache,
		Compiler: o.compiler,
	})
	if err != nil {
		log.Error("cannot create shader backend", "api", dev.API(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProgramCreation, err)
	}
	p.backend = backend
	p.state = Created

	log.Debug("shader created", "api", dev.API(), "dialect", p.dialect, "version", p.version,
		"stages", len(p.stages), "cached", p.Cached())
	return p, nil
}

// validate checks that a stage names a supported, existing, plausible source
// and records its dialect.
func (p *Program) validate(s *Stage) error {
	if !s.source.IsFile() {
		text := s.source.Text()
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: empty %s literal", ErrInvalidShaderSource, s.kind)
		}
		if !plausibleText(text) {
			return fmt.Errorf("%w: %s literal lacks #version or main entry point", ErrInvalidShaderSource, s.kind)
		}
		s.dialect = DetectDialect(text)
		return nil
	}

	path := s.source.Path()
	ext := s.source.Ext()
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %q (supported: .vert, .frag, .spv, .bin)", ErrUnsupportedFileType, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fileError("stat", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidFileOperation, path)
	}

	if IsBinaryExtension(ext) {
		header, err := readHeader(path, 4)
		if err != nil {
			return err
		}
		s.dialect = DetectBinary(header)
		return nil
	}

	text, err := ReadText(s)
	if err != nil {
		return err
	}
	if !plausibleText(text) {
		return fmt.Errorf("%w: %s lacks #version or void main()", ErrInvalidShaderSource, path)
	}
	s.dialect = DetectDialect(text)
	return nil
}

// resolveVersion swaps an OpenGL text file stage for a sibling written for a
// supported version when its own #version is too recent, or when a version
// was requested explicitly.
func (p *Program) resolveVersion(s *Stage, first bool) error {
	if p.device.API() != render.OpenGL || !s.source.IsFile() || IsBinaryExtension(s.source.Ext()) {
		return nil
	}
	text, err := ReadText(s)
	if err != nil {
		return err
	}
	have, ok := ParseVersion(text)
	if !ok {
		return nil
	}

	want := p.opts.glslVersion
	forced := want > 0
	if forced && want > p.device.MaxShaderVersion() {
		wave.Component("Shader").Warn("requested GLSL version above context maximum",
			"requested", want, "max", p.device.MaxShaderVersion())
		want = p.device.MaxShaderVersion()
	}
	switch {
	case forced && have == want:
		p.noteVersion(have, first)
		return nil
	case !forced && have <= p.device.MaxShaderVersion():
		p.noteVersion(have, first)
		return nil
	case !forced:
		want = p.device.MaxShaderVersion()
	}

	log := wave.Component("Shader")
	log.Warn("attempting to load a source compatible with GLSL version", "source", s.source.Path(),
		"have", have, "want", want)

	dir := filepath.Dir(s.source.Path())
	ext := s.source.Ext()
	for v := want; v >= minFallbackVersion; v -= 10 {
		candidate := filepath.Join(dir, fmt.Sprintf("glsl_%d.%s", v, ext))
		data, err := os.ReadFile(candidate)
		if err != nil || !strings.Contains(string(data), fmt.Sprintf("#version %d", v)) {
			continue
		}
		if forced && v != want {
			log.Warn("requested GLSL version not found, falling back", "requested", want, "using", v)
		}
		s.source = FromFile(candidate)
		s.path = candidate
		s.dialect = DetectDialect(string(data))
		p.noteVersion(v, first)
		log.Info("compatible shader source found", "version", v, "source", candidate)
		return nil
	}

	if forced {
		return fmt.Errorf("%w: no source for GLSL %d next to %s", ErrFileNotFound, want, s.source.Path())
	}
	log.Warn("no compatible shader source found, keeping original", "source", s.source.Path(), "version", have)
	p.noteVersion(have, first)
	return nil
}

func (p *Program) noteVersion(v int, first bool) {
	if first {
		p.version = v
	}
}

// loadCache marks every stage cached when all text stages are file stages
// with a fresh cache entry. Programs mixing binaries with text compiled by the
// driver cannot be linked, so a partial hit caches nothing.
func (p *Program) loadCache() {
	log := wave.Component("Shader")
	entries := make([]string, len(p.stages))
	for i, s := range p.stages {
		if !s.source.IsFile() {
			return
		}
		if IsBinaryExtension(s.source.Ext()) {
			continue
		}
		if _, err := CheckCache(p.device, p.opts.cache, s.path); err != nil {
			if errors.Is(err, ErrShaderModified) {
				log.Warn("shader stage cache not found or stale, compiling all stages", "stage", s.kind, "reason", err)
			}
			return
		}
		entries[i] = p.opts.cache.Path(s.path)
	}
	for i, s := range p.stages {
		if entries[i] != "" {
			s.markCached(entries[i])
			s.dialect = SpirV
		}
	}
}

// Source creates the native stage objects and uploads text sources.
func (p *Program) Source() error {
	if !p.state.Alive() || p.state == Sent {
		return fmt.Errorf("%w: cannot source a %s program", ErrInvalidState, p.state)
	}
	if err := p.backend.Source(p.stages); err != nil {
		p.next = stepSource
		wave.Component("Shader").Error("cannot source shader stages", "err", err)
		return err
	}
	p.next = stepCompile
	p.advance(Sourced)
	return nil
}

// Compile compiles or loads every sourced stage.
func (p *Program) Compile() error {
	if p.next != stepCompile {
		return fmt.Errorf("%w: compile requires freshly sourced stages (state %s)", ErrInvalidState, p.state)
	}
	if err := p.backend.Compile(p.stages); err != nil {
		p.next = stepSource
		logDiagnostic("cannot compile shader stages", err)
		return err
	}
	p.next = stepLink
	p.advance(Compiled)
	return nil
}

// Submit runs the remaining steps of source, compile, link and validate.
// On failure every native handle created so far is released and Submit may be
// called again. Submitting a sent program does nothing.
func (p *Program) Submit() error {
	if p.state == Sent {
		wave.Component("Shader").Warn("shader already sent", "id", p.ID())
		return nil
	}
	if !p.state.Alive() {
		return fmt.Errorf("%w: cannot submit a %s program", ErrInvalidState, p.state)
	}
	if p.next == stepSource {
		if err := p.Source(); err != nil {
			return err
		}
	}
	if p.next == stepCompile {
		if err := p.Compile(); err != nil {
			return err
		}
	}
	if err := p.backend.Link(p.stages); err != nil {
		p.next = stepSource
		logDiagnostic("cannot link shader program", err)
		return err
	}
	p.next = stepDone
	p.advance(Sent)
	wave.Component("Shader").Info("shader sent", "id", p.ID(), "api", p.backend.API(), "dialect", p.dialect)
	return nil
}

// UploadData sets a uniform on a sent program.
func (p *Program) UploadData(name string, value Uniform) error {
	if p.state != Sent {
		return fmt.Errorf("%w: cannot upload %q to a %s program", ErrInvalidState, name, p.state)
	}
	if err := value.Validate(); err != nil {
		wave.Component("Shader").Error("cannot upload uniform", "name", name, "err", err)
		return err
	}
	if err := p.backend.Upload(name, value); err != nil {
		wave.Component("Shader").Error("cannot upload uniform", "name", name, "value", value, "err", err)
		return err
	}
	return nil
}

// Free deletes the native program. Freeing a program that was never created
// or is already freed logs a warning and returns nil. Freeing through a device
// whose API differs from the backend's is a programming error and fails with
// ErrInvalidApi.
func (p *Program) Free() error {
	log := wave.Component("Shader")
	if !p.state.Alive() {
		log.Warn("shader already freed or never created", "state", p.state)
		return nil
	}
	if p.device.API() != p.backend.API() {
		log.Error("cannot free shader: api mismatch", "device", p.device.API(), "backend", p.backend.API())
		return fmt.Errorf("%w: program created for %s, device is %s", ErrInvalidApi, p.backend.API(), p.device.API())
	}
	id := p.ID()
	if err := p.backend.Free(); err != nil {
		log.Error("cannot free shader", "id", id, "err", err)
		return err
	}
	p.state = Freed
	p.next = stepDone
	p.state = Deleted
	log.Debug("shader deleted", "id", id)
	return nil
}

func (p *Program) advance(s State) {
	if s > p.state {
		p.state = s
	}
}

// State returns the lifecycle state.
func (p *Program) State() State { return p.state }

// Dialect returns the dialect detected from the first stage.
func (p *Program) Dialect() Dialect { return p.dialect }

// Version returns the GLSL version the program targets.
func (p *Program) Version() int { return p.version }

// API returns the API of the program's backend.
func (p *Program) API() render.API { return p.backend.API() }

// ID returns the native program identity, zero until sent.
func (p *Program) ID() uint64 {
	if p.backend == nil {
		return 0
	}
	return p.backend.ID()
}

// Backend returns the API half of the program. Contexts use it to reach
// their own backend state, such as the Vulkan push-constant block.
func (p *Program) Backend() Backend { return p.backend }

// Stages returns the program's stages in order.
func (p *Program) Stages() []*Stage {
	return append([]*Stage(nil), p.stages...)
}

// Cached reports whether the program's stages are backed by cache entries.
func (p *Program) Cached() bool {
	for _, s := range p.stages {
		if s.cached {
			return true
		}
	}
	return false
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(id=%d, state=%s, dialect=%s, stages=%d)", p.ID(), p.state, p.dialect, len(p.stages))
}

// logDiagnostic logs err, splitting out compiler output when present.
func logDiagnostic(msg string, err error) {
	log := wave.Component("Shader")
	var diag *DiagnosticError
	if errors.As(err, &diag) {
		log.Error(msg, "stage", diag.Stage, "kind", diag.Err, "log", diag.Log)
		return
	}
	log.Error(msg, "err", err)
}

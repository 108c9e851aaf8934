package shader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gogpu/gputypes"
)

// StageKind is the pipeline stage a shader runs in.
type StageKind uint8

const (
	Vertex StageKind = iota
	Fragment
	Compute
	Geometry
)

func (k StageKind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Compute:
		return "compute"
	case Geometry:
		return "geometry"
	default:
		return fmt.Sprintf("StageKind(%d)", uint8(k))
	}
}

// ShortName returns the conventional file extension of the stage
// ("vert", "frag", "comp", "geom").
func (k StageKind) ShortName() string {
	switch k {
	case Vertex:
		return "vert"
	case Fragment:
		return "frag"
	case Compute:
		return "comp"
	case Geometry:
		return "geom"
	default:
		return ""
	}
}

// GPUStage maps the kind to its gputypes stage flag. Geometry has none.
func (k StageKind) GPUStage() (gputypes.ShaderStage, bool) {
	switch k {
	case Vertex:
		return gputypes.ShaderStageVertex, true
	case Fragment:
		return gputypes.ShaderStageFragment, true
	case Compute:
		return gputypes.ShaderStageCompute, true
	default:
		return 0, false
	}
}

// Source is where a stage's code comes from: a file path or an inline literal.
type Source struct {
	value string
	file  bool
}

// FromFile returns a file source.
func FromFile(path string) Source { return Source{value: path, file: true} }

// FromLiteral returns an inline source.
func FromLiteral(text string) Source { return Source{value: text} }

// IsFile reports whether the source is a file path.
func (s Source) IsFile() bool { return s.file }

// Path returns the file path of a file source, or "".
func (s Source) Path() string {
	if s.file {
		return s.value
	}
	return ""
}

// Text returns the literal of an inline source, or "".
func (s Source) Text() string {
	if s.file {
		return ""
	}
	return s.value
}

// Ext returns the lower-case extension of a file source without the dot.
func (s Source) Ext() string {
	if !s.file {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(s.value), "."))
}

func (s Source) String() string {
	if s.file {
		return s.value
	}
	const limit = 32
	text := strings.Join(strings.Fields(s.value), " ")
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return fmt.Sprintf("literal(%q)", text)
}

// Stage describes one stage of a program.
//
// A Stage is immutable for callers. The owning Program marks it cached when a
// compiled binary is found on disk and redirects its effective path to that
// binary; once cached, a stage stays cached.
type Stage struct {
	kind    StageKind
	source  Source
	cached  bool
	path    string
	dialect Dialect
}

// NewStage returns an uncached stage. File existence is checked later by the
// program that receives it.
func NewStage(kind StageKind, src Source) Stage {
	return Stage{kind: kind, source: src, path: src.Path()}
}

// Kind returns the pipeline stage.
func (s *Stage) Kind() StageKind { return s.kind }

// Source returns the source the stage was created with.
func (s *Stage) Source() Source { return s.source }

// CacheStatus reports whether a previously compiled binary backs this stage.
func (s *Stage) CacheStatus() bool { return s.cached }

// Path returns the effective file path: the cache entry once cached, the
// source file otherwise, "" for literals.
func (s *Stage) Path() string { return s.path }

// Dialect returns the dialect detected for this stage.
func (s *Stage) Dialect() Dialect { return s.dialect }

// IsBinary reports whether the effective source is a compiled binary.
func (s *Stage) IsBinary() bool {
	return s.cached || s.dialect == SpirV || s.dialect == Binary
}

// Equal compares kind and source. The cache flag is not part of identity.
func (s *Stage) Equal(o *Stage) bool {
	return s.kind == o.kind && s.source == o.source
}

func (s *Stage) markCached(path string) {
	s.cached = true
	s.path = path
}

func (s *Stage) String() string {
	if s.cached {
		return fmt.Sprintf("%s(%s, cached)", s.kind, s.source)
	}
	return fmt.Sprintf("%s(%s)", s.kind, s.source)
}

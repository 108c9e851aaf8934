package shader

import (
	"errors"
	"fmt"
	"io/fs"
)

// Shader errors. Every error returned by this package and by shader backends
// matches exactly one of these with errors.Is.
var (
	ErrNoShaderStagesProvided = errors.New("shader: no shader stages provided")
	ErrStageAlreadyProvided   = errors.New("shader: stage already provided")
	ErrFileNotFound           = errors.New("shader: file not found")
	ErrInvalidFileOperation   = errors.New("shader: invalid file operation")
	ErrUnsupportedFileType    = errors.New("shader: unsupported file type")
	ErrInvalidShaderSource    = errors.New("shader: invalid shader source")
	ErrShaderModified         = errors.New("shader: source modified since last cache")
	ErrShaderCaching          = errors.New("shader: cannot cache shader")
	ErrShaderSourcing         = errors.New("shader: cannot source shader")
	ErrShaderSyntax           = errors.New("shader: syntax error")
	ErrShaderCompilation      = errors.New("shader: compilation error")
	ErrProgramCreation        = errors.New("shader: program creation error")
	ErrShaderBinary           = errors.New("shader: binary error")
	ErrNoBinaryFormats        = errors.New("shader: no binary formats supported")
	ErrShaderModule           = errors.New("shader: cannot create shader module")
	ErrUnsupportedUniformType = errors.New("shader: unsupported uniform type")
	ErrUniformNotFound        = errors.New("shader: uniform not found")
	ErrInvalidApi             = errors.New("shader: invalid api for this call")
	ErrInvalidState           = errors.New("shader: invalid state for this call")
)

// DiagnosticError carries the raw compiler or linker output of a failure.
// It unwraps to one of the sentinel errors above.
type DiagnosticError struct {
	Err   error
	Stage StageKind
	Log   string
}

func (e *DiagnosticError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("%v (%s)", e.Err, e.Stage)
	}
	return fmt.Sprintf("%v (%s): %s", e.Err, e.Stage, e.Log)
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// fileError wraps an OS error with the file sentinel matching its category.
func fileError(op, path string, err error) error {
	kind := ErrInvalidFileOperation
	if errors.Is(err, fs.ErrNotExist) {
		kind = ErrFileNotFound
	}
	return fmt.Errorf("%w: %s %s: %w", kind, op, path, err)
}

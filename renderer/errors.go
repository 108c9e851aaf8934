package renderer

import (
	"errors"
	"fmt"

	"github.com/wave-engine/wave/render"
)

// Renderer errors. Backend contexts return these, possibly wrapped, and the
// Renderer wraps backend failures in a *BackendError.
var (
	ErrInit             = errors.New("renderer: initialization failed")
	ErrNoActiveRenderer = errors.New("renderer: no active renderer")
	ErrInvalidApi       = errors.New("renderer: invalid api for this call")
	ErrUnsupportedApi   = errors.New("renderer: unsupported api")
	ErrNotImplemented   = errors.New("renderer: not implemented")
	ErrContext          = errors.New("renderer: backend context error")
	ErrInvalidEntity    = errors.New("renderer: invalid entity")
	ErrEntityNotFound   = errors.New("renderer: entity not found")
	ErrShaderNotFound   = errors.New("renderer: shader not found")
	ErrUboNotFound      = errors.New("renderer: uniform buffer not found")
	ErrInvalidState     = errors.New("renderer: invalid state for this call")
	ErrMSAA             = errors.New("renderer: multisampling unavailable")
)

// BackendError is a failure reported by a backend context. It matches both
// ErrContext and its cause with errors.Is.
type BackendError struct {
	API render.API
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("renderer: %s %s: %v", e.API, e.Op, e.Err)
}

// Unwrap returns ErrContext and the cause.
func (e *BackendError) Unwrap() []error {
	return []error{ErrContext, e.Err}
}

func wrap(api render.API, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{API: api, Op: op, Err: err}
}

package opengl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/render"
)

// GLError is an error code reported by glGetError after an operation.
type GLError struct {
	Op   string
	Code uint32
}

func (e *GLError) Error() string {
	return fmt.Sprintf("opengl: %s: %s", e.Op, errorName(e.Code))
}

func errorName(code uint32) string {
	switch code {
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case STACK_OVERFLOW:
		return "GL_STACK_OVERFLOW"
	case STACK_UNDERFLOW:
		return "GL_STACK_UNDERFLOW"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("GL error %#x", code)
	}
}

// maxDrainedErrors bounds the error flags read after a failure.
const maxDrainedErrors = 16

// checker queries glGetError after an operation when synchronous checking is
// enabled.
type checker struct {
	gl   GL
	mode render.CallCheckMode
}

func (c *checker) check(op string) error {
	if !c.mode.Synchronous() {
		return nil
	}
	code := c.gl.GetError()
	if code == NO_ERROR {
		return nil
	}
	// A context may hold several error flags; clear them so the next check
	// reports its own.
	for range maxDrainedErrors {
		if c.gl.GetError() == NO_ERROR {
			break
		}
	}
	return &GLError{Op: op, Code: code}
}

// debugMessage logs driver debug output at a level matching its severity.
func debugMessage(source, kind, id, severity uint32, message string) {
	log := wave.Component("OpenGL")
	msg := strings.TrimSpace(message)
	switch severity {
	case DEBUG_SEVERITY_HIGH:
		log.Error(msg, "id", id, "source", source, "type", kind)
	case DEBUG_SEVERITY_MEDIUM:
		log.Warn(msg, "id", id, "source", source, "type", kind)
	case DEBUG_SEVERITY_LOW:
		log.Info(msg, "id", id, "source", source, "type", kind)
	default:
		log.Debug(msg, "id", id)
	}
}

// ParseGLSLVersion turns a GL_SHADING_LANGUAGE_VERSION string such as
// "4.60 NVIDIA" into 460.
func ParseGLSLVersion(s string) (int, bool) {
	field, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	major, minor, ok := strings.Cut(field, ".")
	if !ok {
		return 0, false
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return 0, false
	}
	if len(minor) > 2 {
		minor = minor[:2]
	}
	minV, err := strconv.Atoi(minor)
	if err != nil {
		return 0, false
	}
	if len(minor) == 1 {
		minV *= 10
	}
	return maj*100 + minV, true
}

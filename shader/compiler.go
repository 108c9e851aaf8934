package shader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Compiler cross-compiles GLSL text to SPIR-V.
type Compiler interface {
	Compile(ctx context.Context, kind StageKind, name, src string) ([]byte, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, kind StageKind, name, src string) ([]byte, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, kind StageKind, name, src string) ([]byte, error) {
	return f(ctx, kind, name, src)
}

// GlslcCompiler runs the glslc executable, reading the source from stdin and
// the module from stdout. The build profile defines the Vulkan macro,
// optimizes for performance, assigns bindings to unbound uniforms, flips the
// Y axis to match OpenGL clip space, and treats warnings as errors.
type GlslcCompiler struct {
	// Path is the executable. Defaults to "glslc" looked up in PATH.
	Path string

	// Timeout bounds a single compilation. Zero means one minute.
	Timeout time.Duration
}

// Args returns the command line for one stage.
func (c GlslcCompiler) Args(kind StageKind) []string {
	return []string{
		"-fshader-stage=" + kind.ShortName(),
		"-DVulkan",
		"-O",
		"-fauto-bind-uniforms",
		"-finvert-y",
		"-Werror",
		"-o", "-",
		"-",
	}
}

// Compile implements Compiler.
func (c GlslcCompiler) Compile(ctx context.Context, kind StageKind, name, src string) ([]byte, error) {
	path := c.Path
	if path == "" {
		path = "glslc"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, c.Args(kind)...)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &DiagnosticError{
				Err:   ErrShaderCompilation,
				Stage: kind,
				Log:   strings.TrimSpace(strings.ReplaceAll(stderr.String(), "<stdin>", name)),
			}
		}
		return nil, fmt.Errorf("%w: run %s: %w", ErrShaderCompilation, path, err)
	}
	if stdout.Len() == 0 {
		return nil, &DiagnosticError{Err: ErrShaderCompilation, Stage: kind, Log: "compiler produced no output"}
	}
	return stdout.Bytes(), nil
}

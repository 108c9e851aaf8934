package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
)

// EntryPoint returns the WGSL entry point name used for a stage kind:
// "vs_main", "fs_main" or "cs_main".
func EntryPoint(kind StageKind) string {
	switch kind {
	case Vertex:
		return "vs_main"
	case Fragment:
		return "fs_main"
	case Compute:
		return "cs_main"
	default:
		return "main"
	}
}

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(src string) ([]uint32, error) {
	spv, err := naga.Compile(src)
	if err != nil {
		return nil, &DiagnosticError{Err: ErrShaderCompilation, Log: err.Error()}
	}
	return Words(spv)
}

var glslVersions = []struct {
	number  int
	version glsl.Version
}{
	{460, glsl.Version460},
	{450, glsl.Version450},
	{430, glsl.Version430},
	{420, glsl.Version420},
	{410, glsl.Version410},
	{400, glsl.Version400},
	{330, glsl.Version330},
}

// TranslateWGSL translates the entry point of kind in a WGSL source to GLSL
// text, targeting the highest desktop GLSL version not above maxVersion.
func TranslateWGSL(src string, kind StageKind, maxVersion int) (string, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return "", &DiagnosticError{Err: ErrShaderSyntax, Stage: kind, Log: err.Error()}
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return "", &DiagnosticError{Err: ErrShaderSyntax, Stage: kind, Log: err.Error()}
	}

	opts := glsl.DefaultOptions()
	opts.LangVersion = glsl.Version330
	for _, v := range glslVersions {
		if v.number <= maxVersion {
			opts.LangVersion = v.version
			break
		}
	}
	opts.EntryPoint = EntryPoint(kind)

	text, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", &DiagnosticError{Err: ErrShaderCompilation, Stage: kind, Log: fmt.Sprintf("wgsl to glsl: %v", err)}
	}
	return text, nil
}

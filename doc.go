// Package wave holds the ambient pieces shared by the whole engine: the
// component-scoped structured logger, the console log handler and the TOML
// configuration.
//
// The engine itself lives in subpackages:
//
//	render    graphics API tag, renderer hints and the surface contract
//	renderer  the API-neutral Renderer and its backend registry
//	shader    shader stages, programs and the compiled-source cache
//	asset     meshes, vertices, primitives and textures
//	scene     entities placing meshes in the world
//	window    glfw windows producing events
//	engine    the frame loop and application layers
//
// Logging is off by default. Enable it with SetLogger:
//
//	wave.SetLogger(slog.New(wave.NewConsoleHandler(os.Stderr, nil)))
package wave

package shader

import "github.com/wave-engine/wave/render"

// Device is what a Program needs from the renderer it runs on.
type Device interface {
	// API returns the graphics API of the device. It never changes.
	API() render.API

	// HasExtension reports whether the active context exposes an extension.
	HasExtension(name string) bool

	// MaxShaderVersion returns the highest GLSL #version the context accepts.
	MaxShaderVersion() int

	// NewShaderBackend creates the native half of a program.
	NewShaderBackend(cfg BackendConfig) (Backend, error)
}

// BackendConfig is handed to Device.NewShaderBackend.
type BackendConfig struct {
	// Dialect is the program dialect, detected from its first stage.
	Dialect Dialect

	// Version is the GLSL version the program targets.
	Version int

	// Cache stores binaries compiled by the backend. Never nil.
	Cache *Cache

	// Compiler turns GLSL text into SPIR-V for backends that need it.
	Compiler Compiler
}

// Backend performs the native work of a Program. Each call receives the
// program's stages in order.
//
// Implementations release every handle they created when a call fails, so a
// failed call may be retried from Source.
type Backend interface {
	// API returns the graphics API the backend was created for.
	API() render.API

	// Source creates one native stage object per stage and uploads text
	// sources. Binary stages are only allocated.
	Source(stages []*Stage) error

	// Compile compiles text stages and loads binary ones.
	Compile(stages []*Stage) error

	// Link creates the program or pipeline object from the compiled stages,
	// releases the stage objects, and validates the result.
	Link(stages []*Stage) error

	// ID returns the native program identity, zero before Link succeeds.
	ID() uint64

	// Upload binds the program and sets a uniform, resolving its location
	// once per name.
	Upload(name string, value Uniform) error

	// Free releases every native resource. Calling it twice is harmless.
	Free() error
}

package renderer

import (
	"slices"
	"sync"

	"github.com/wave-engine/wave/render"
)

// Factory creates an uninitialized backend context.
type Factory func() Context

var (
	registryMu sync.RWMutex
	factories  = make(map[render.API]Factory)
	// apiPriority is the selection order of Default.
	apiPriority = []render.API{render.OpenGL, render.Vulkan}
)

// Register registers the factory of an API, replacing any previous one.
// Backends call it from init. A nil factory marks an API known to the build
// but compiled without support; New fails with ErrUnsupportedApi for it.
func Register(api render.API, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[api] = factory
}

// Unregister removes an API from the registry.
// This is useful for testing.
func Unregister(api render.API) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, api)
}

// Available returns the APIs with a usable factory, in priority order.
func Available() []render.API {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var out []render.API
	for _, api := range apiPriority {
		if f := factories[api]; f != nil {
			out = append(out, api)
		}
	}
	return out
}

// IsRegistered reports whether api has a usable factory.
func IsRegistered(api render.API) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return factories[api] != nil
}

// Default returns the first available API by priority.
func Default() (render.API, bool) {
	apis := Available()
	if len(apis) == 0 {
		return 0, false
	}
	return apis[0], true
}

// newContext creates a context for api.
func newContext(api render.API) (Context, error) {
	registryMu.RLock()
	factory := factories[api]
	registryMu.RUnlock()

	if factory == nil {
		return nil, ErrUnsupportedApi
	}
	ctx := factory()
	if ctx == nil || ctx.API() != api {
		return nil, ErrUnsupportedApi
	}
	return ctx, nil
}

// registered returns the registered APIs, including stubs. For diagnostics.
func registered() []render.API {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]render.API, 0, len(factories))
	for api := range factories {
		out = append(out, api)
	}
	slices.Sort(out)
	return out
}

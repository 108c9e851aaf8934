// Package renderer hides the graphics API behind a single Renderer.
//
// A Renderer is created for one API and dispatches every call to the backend
// Context registered for that API. Backends register themselves from init
// functions, so a program selects its backends with blank imports:
//
//	import (
//		_ "github.com/wave-engine/wave/backend/opengl/glbind"
//		_ "github.com/wave-engine/wave/backend/vulkan/vkbind"
//	)
//
//	r, err := renderer.New(render.OpenGL)
//	if err != nil {
//		return err
//	}
//	defer r.Free()
//
//	r.Hint(render.DepthTest(true))
//	r.Hint(render.CullFace(gputypes.CullModeBack))
//	if err := r.Submit(win); err != nil {
//		return err
//	}
//
// The Renderer also implements shader.Device, so programs are created against
// it directly:
//
//	prog, err := shader.New(r, stages)
//
// # Lifecycle
//
// States only move forward: NotCreated, Created, Deleted. A window close event
// received through OnEvent frees the renderer. Free is idempotent.
//
// # Thread Safety
//
// A Renderer belongs to the goroutine that owns the window's graphics context.
// The backend registry is safe for concurrent use.
package renderer

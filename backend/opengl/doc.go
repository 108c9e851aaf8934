// Package opengl implements the OpenGL 4.x core backend of the renderer.
//
// The backend is written against GL, a table of the OpenGL functions it
// calls. Package glbind provides the table over go-gl and registers the
// backend with the renderer; importing it for side effects is enough:
//
//	import _ "github.com/wave-engine/wave/backend/opengl/glbind"
//
// All calls must happen on the goroutine owning the current OpenGL context.
package opengl

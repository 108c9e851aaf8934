// Package shader implements shader programs: stage descriptors, dialect
// detection, an on-disk SPIR-V cache, and the program lifecycle
//
//	NotCreated -> Created -> Sourced -> Compiled -> Sent -> Freed -> Deleted
//
// Native work is delegated to a Backend obtained from the Device the program
// was created against. The device is normally the engine's renderer, so the
// backend is chosen once, at construction, by the renderer's API.
//
// # Usage
//
//	vert := shader.NewStage(shader.Vertex, shader.FromFile("res/shaders/glsl_420.vert"))
//	frag := shader.NewStage(shader.Fragment, shader.FromFile("res/shaders/glsl_420.frag"))
//
//	prog, err := shader.New(r, []shader.Stage{vert, frag}, shader.WithCache(cache))
//	if err != nil {
//		return err
//	}
//	defer prog.Free()
//
//	if err := prog.Submit(); err != nil {
//		return err
//	}
//	err = prog.UploadData("u_model_matrix", shader.Mat4(mgl32.Ident4()))
//
// # Cache
//
// Compiled SPIR-V is kept in a cache directory, one file per stage named after
// the source file with a ".spv" suffix. An entry older than its source is
// ignored, and a Watcher can drop entries as soon as sources change.
package shader

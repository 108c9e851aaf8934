// Package cache provides a small keyed cache with a soft size limit.
//
// Backends use it to remember values that are expensive to query from the
// driver and never change for the lifetime of their owner, such as uniform
// locations of a linked program or push-constant offsets of a pipeline.
//
//	locations := cache.New[string, int32](0)
//	loc, err := locations.Resolve("u_model_matrix", func() (int32, error) {
//		return gl.GetUniformLocation(program, "u_model_matrix"), nil
//	})
//
// A Cache is safe for concurrent use and must not be copied.
package cache

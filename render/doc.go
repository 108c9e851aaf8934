// Package render holds the vocabulary shared by every layer of the engine:
// the graphics API tag, renderer hints and the window contract consumed by
// backends.
//
// The package is a leaf. It depends on nothing inside the module so the root
// configuration, shaders, renderer and backends can all import it.
package render

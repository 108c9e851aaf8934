// Package asset holds the geometry and image data consumed by the renderer.
//
// Model importing is out of scope: callers build meshes in code or convert
// them from an importer of their choice. Textures are decoded from the usual
// image formats.
package asset

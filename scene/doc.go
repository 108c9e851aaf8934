// Package scene places meshes in the world. An Entity owns a mesh and a
// translation, rotation and scale, and keeps the renderer's copy of its
// model matrix up to date.
package scene

package asset

import "github.com/go-gl/mathgl/mgl32"

// Quad returns a unit quad in the XY plane facing +Z.
func Quad(color mgl32.Vec4) *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return &Mesh{
		Name: "quad",
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, Color: color, UV: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, Color: color, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n, Color: color, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n, Color: color, UV: mgl32.Vec2{0, 1}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
}

// Cube returns a unit cube centered on the origin with per-face normals.
func Cube(color mgl32.Vec4) *Mesh {
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	m := &Mesh{Name: "cube"}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		center := f.normal.Mul(0.5)
		for _, c := range corners {
			pos := center.Add(f.u.Mul(c[0] * 0.5)).Add(f.v.Mul(c[1] * 0.5))
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos,
				Normal:   f.normal,
				Color:    color,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}

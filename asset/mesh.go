package asset

// Mesh is a vertex list with optional indices and nested sub-meshes.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	Submeshes []*Mesh
}

// Len returns the vertex count of the mesh and all its sub-meshes.
func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	n := len(m.Vertices)
	for _, sub := range m.Submeshes {
		n += sub.Len()
	}
	return n
}

// IsEmpty reports whether the mesh has no vertices at all.
func (m *Mesh) IsEmpty() bool { return m.Len() == 0 }

// HasSubmeshes reports whether the mesh is composite.
func (m *Mesh) HasSubmeshes() bool { return m != nil && len(m.Submeshes) > 0 }

// Flatten concatenates the mesh and its sub-meshes depth first into a single
// vertex and index list. Parts without indices contribute sequential ones, and
// sub-mesh indices are rebased on the vertices before them.
func (m *Mesh) Flatten() ([]Vertex, []uint32) {
	if m.IsEmpty() {
		return nil, nil
	}
	vertices := make([]Vertex, 0, m.Len())
	var indices []uint32
	var walk func(*Mesh)
	walk = func(part *Mesh) {
		base := uint32(len(vertices))
		vertices = append(vertices, part.Vertices...)
		if len(part.Indices) == 0 {
			for i := range part.Vertices {
				indices = append(indices, base+uint32(i))
			}
		} else {
			for _, idx := range part.Indices {
				indices = append(indices, base+idx)
			}
		}
		for _, sub := range part.Submeshes {
			walk(sub)
		}
	}
	walk(m)
	return vertices, indices
}

// SetEntityID stamps id on every vertex of the mesh and its sub-meshes.
func (m *Mesh) SetEntityID(id uint32) {
	if m == nil {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i].EntityID = id
	}
	for _, sub := range m.Submeshes {
		sub.SetEntityID(id)
	}
}

package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/shader"
)

// Item is one enqueued entity as seen by a backend.
type Item struct {
	ID      uint64
	Mesh    *asset.Mesh
	Model   mgl32.Mat4
	Visible bool

	// Vertices and Indices are the flattened mesh.
	Vertices []asset.Vertex
	Indices  []uint32

	// Handle holds the backend's native objects for the item.
	Handle any
}

// Batch groups the items drawn with one program.
type Batch struct {
	Program *shader.Program
	Items   []*Item
}

// Batches is the draw-list bookkeeping shared by backend contexts. Batches
// keep the order in which their programs were first used.
// The zero value is ready to use.
type Batches struct {
	batches []*Batch
	items   map[uint64]*Item
	owner   map[uint64]*Batch
}

// Add registers mesh under prog. Empty meshes are accepted and contribute no
// vertices.
func (b *Batches) Add(id uint64, mesh *asset.Mesh, model mgl32.Mat4, prog *shader.Program) (*Item, error) {
	if prog == nil {
		return nil, fmt.Errorf("%w: nil program", ErrShaderNotFound)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: zero id", ErrInvalidEntity)
	}
	if _, dup := b.items[id]; dup {
		return nil, fmt.Errorf("%w: id %d already enqueued", ErrInvalidEntity, id)
	}
	if b.items == nil {
		b.items = make(map[uint64]*Item)
		b.owner = make(map[uint64]*Batch)
	}

	var batch *Batch
	for _, bt := range b.batches {
		if bt.Program == prog {
			batch = bt
			break
		}
	}
	if batch == nil {
		batch = &Batch{Program: prog}
		b.batches = append(b.batches, batch)
	}

	vertices, indices := mesh.Flatten()
	item := &Item{ID: id, Mesh: mesh, Model: model, Visible: true, Vertices: vertices, Indices: indices}
	batch.Items = append(batch.Items, item)
	b.items[id] = item
	b.owner[id] = batch
	return item, nil
}

// Get returns the item of id.
func (b *Batches) Get(id uint64) (*Item, error) {
	item, ok := b.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrEntityNotFound, id)
	}
	return item, nil
}

// Remove unregisters id and returns its item. A batch left empty is dropped.
func (b *Batches) Remove(id uint64) (*Item, error) {
	item, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	batch := b.owner[id]
	for i, it := range batch.Items {
		if it == item {
			batch.Items = append(batch.Items[:i], batch.Items[i+1:]...)
			break
		}
	}
	if len(batch.Items) == 0 {
		for i, bt := range b.batches {
			if bt == batch {
				b.batches = append(b.batches[:i], b.batches[i+1:]...)
				break
			}
		}
	}
	delete(b.items, id)
	delete(b.owner, id)
	return item, nil
}

// All returns the batches in draw order.
func (b *Batches) All() []*Batch { return b.batches }

// Clear unregisters everything and returns the removed items.
func (b *Batches) Clear() []*Item {
	var out []*Item
	for _, bt := range b.batches {
		out = append(out, bt.Items...)
	}
	b.batches = nil
	b.items = nil
	b.owner = nil
	return out
}

// Len returns the number of items.
func (b *Batches) Len() int { return len(b.items) }

// Stats counts batches, items and geometry. DrawCalls is left to the caller.
func (b *Batches) Stats() Stats {
	s := Stats{Batches: len(b.batches), Entities: len(b.items)}
	for _, bt := range b.batches {
		for _, it := range bt.Items {
			if !it.Visible {
				continue
			}
			s.Visible++
			s.Vertices += len(it.Vertices)
			s.Indices += len(it.Indices)
		}
	}
	return s
}

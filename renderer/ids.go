package renderer

import "sync/atomic"

// IDAllocator hands out renderer identities. IDs are a monotonic counter
// starting at 1 and are never reused; zero means unassigned. A new allocator
// starts over, so IDs are only unique within one renderer.
type IDAllocator struct {
	last atomic.Uint64
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}

// Last returns the most recently issued ID, or zero.
func (a *IDAllocator) Last() uint64 {
	return a.last.Load()
}

package malloc

import "unsafe"

// MemoryResource exposes an Allocator to any Go structure that accepts a
// pluggable allocate/deallocate pair, the Go analogue of the original
// design's std::pmr::memory_resource adapter. Per spec.md §6(c), it
// forwards everything to the underlying facade, and any two instances
// compare equal: every Allocator is a facade over one process-wide heap.
type MemoryResource struct {
	a *Allocator
}

// NewMemoryResource wraps a as a MemoryResource.
func NewMemoryResource(a *Allocator) *MemoryResource {
	return &MemoryResource{a: a}
}

// Allocate requests size bytes aligned to align.
func (m *MemoryResource) Allocate(size, align uintptr) unsafe.Pointer {
	if align <= PoolAlignment {
		return m.a.Allocate(int(size))
	}
	return m.a.AllocateAligned(int(size), int(align))
}

// Deallocate frees p. size and align are accepted to match the
// do_deallocate(p, size, align) shape of the collaborator this adapts, but
// this allocator recovers everything it needs from p alone.
func (m *MemoryResource) Deallocate(p unsafe.Pointer, size, align uintptr) {
	m.a.Deallocate(p)
}

// Equal reports whether other is a MemoryResource adapter over this same
// allocator family. Every *Allocator routes through the one process-wide
// central heap and thread-heap registry regardless of which Allocator value
// is used, so any two MemoryResource instances are backed by one underlying
// heap; this mirrors the original's type-only do_is_equal, which never
// compared the wrapped manager.
func (m *MemoryResource) Equal(other *MemoryResource) bool {
	return other != nil
}

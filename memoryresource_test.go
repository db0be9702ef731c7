package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryResourceRoundTrip(t *testing.T) {
	a := NewAllocator()
	mr := NewMemoryResource(a)

	ptr := mr.Allocate(64, PoolAlignment)
	require.NotNil(t, ptr)
	mr.Deallocate(ptr, 64, PoolAlignment)
}

func TestMemoryResourceEqual(t *testing.T) {
	a := NewAllocator()
	mr1 := NewMemoryResource(a)
	mr2 := NewMemoryResource(a)
	mr3 := NewMemoryResource(NewAllocator())

	// Every *Allocator is a facade over the one process-wide central heap
	// and thread-heap registry, so any two adapters are backed by the same
	// underlying heap — per spec.md §6(c), they compare equal regardless
	// of which *Allocator value each wraps.
	require.True(t, mr1.Equal(mr2))
	require.True(t, mr1.Equal(mr3))
	require.False(t, mr1.Equal(nil))
}

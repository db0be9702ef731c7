package malloc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCurrentThreadHeapIsStablePerThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h1 := getCurrentThreadHeap()
	h2 := getCurrentThreadHeap()
	require.Same(t, h1, h2)
}

func TestMonotonicThreadIDRegistryAssignsDenseIDs(t *testing.T) {
	var r monotonicThreadIDRegistry
	a := r.idFor(999999)
	b := r.idFor(999999)
	c := r.idFor(123)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Less(t, c, 2)
	require.Less(t, a, 2)
}

func TestReleaseCurrentThreadHeapRemovesRegistryEntry(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Drop any heap an earlier test left registered for this OS thread, so
	// the allocation below has to create a fresh entry.
	ReleaseCurrentThreadHeap()

	before := liveThreadHeapCount()
	ptr := getCurrentThreadHeap().allocate(16)
	require.NotNil(t, ptr)
	require.Greater(t, liveThreadHeapCount(), before)

	ReleaseCurrentThreadHeap()
	require.Equal(t, before, liveThreadHeapCount())
}

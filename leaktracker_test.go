package malloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMapLeakTrackerTrackUntrack(t *testing.T) {
	lt := NewMapLeakTracker()
	ptr := unsafe.Pointer(uintptr(0x1000))

	lt.Track(5, ptr, 64, "foo.go", 42)
	leaks := lt.ReportLeaks()
	require.Len(t, leaks, 1)
	require.Equal(t, 5, leaks[0].ThreadID)
	require.Equal(t, uintptr(64), leaks[0].Size)

	lt.Untrack(5, ptr)
	require.Empty(t, lt.ReportLeaks())
}

func TestMapLeakTrackerOverflowBucket(t *testing.T) {
	lt := NewMapLeakTracker()
	ptr := unsafe.Pointer(uintptr(0x2000))

	lt.Track(MaxThreads+10, ptr, 8, "", 0)
	leaks := lt.ReportLeaks()
	require.Len(t, leaks, 1)
	require.Equal(t, -1, leaks[0].ThreadID)
}

func TestNoopLeakTrackerIsSilent(t *testing.T) {
	var lt noopLeakTracker
	require.NotPanics(t, func() {
		lt.Track(0, nil, 0, "", 0)
		lt.Untrack(0, nil)
	})
}

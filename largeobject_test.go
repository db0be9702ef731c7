package malloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestLargeObjectRoundTrip(t *testing.T) {
	src := &pageSource{}
	ptr := allocateLarge(src, 4096, PoolAlignment)
	require.NotNil(t, ptr)
	require.True(t, tryDeallocateLarge(src, ptr))
}

func TestLargeObjectAlignedAllocation(t *testing.T) {
	src := &pageSource{}
	const align = 4096
	ptr := allocateLarge(src, 100, align)
	require.NotNil(t, ptr)
	require.Equal(t, uintptr(0), uintptr(ptr)%align)
	require.True(t, tryDeallocateLarge(src, ptr))
}

func TestLargeObjectHeaderMagicClearedBeforeUnmap(t *testing.T) {
	// A header sitting in a real mapping cannot be read after the unmap, so
	// the header is copied into ordinary Go memory; its base and totalSize
	// still name the real mapping, which tryDeallocateLarge unmaps.
	src := &pageSource{}
	ptr := allocateLarge(src, 64, PoolAlignment)
	require.NotNil(t, ptr)

	hdr := (*largeHeader)(unsafe.Pointer(uintptr(ptr) - largeHeaderSize))
	require.Equal(t, largeMagicValue, hdr.magic)

	buf := make([]uint64, 8)
	copyHdr := (*largeHeader)(unsafe.Pointer(&buf[0]))
	*copyHdr = *hdr
	fake := unsafe.Pointer(uintptr(unsafe.Pointer(&buf[0])) + largeHeaderSize)
	require.True(t, tryDeallocateLarge(src, fake))
	require.Equal(t, uint64(0), copyHdr.magic)
	require.False(t, tryDeallocateLarge(src, fake))
}

package malloc

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// pageSource obtains and releases anonymous, zeroed, read-write memory from
// the kernel. It holds no state of its own; it exists as a seam so the
// central heap and the large-object path share one implementation and one
// set of tests.
type pageSource struct{}

// mapPageBatch requests PagesPerBatch*PageSize bytes, PageSize-aligned, for
// the central heap's batch refill. On the platforms this module targets a
// fresh anonymous mapping of this size is already page-aligned to well
// beyond PageSize, but the alignment is still asserted and the mapping is
// redone with over-allocation if it ever fails, so the pointer-masking
// invariant (spec.md §3, invariant 1) cannot silently break.
func (s *pageSource) mapPageBatch() (unsafe.Pointer, error) {
	return s.mapAligned(PagesPerBatch*PageSize, PageSize)
}

// mapAligned requests size bytes aligned to align, over-allocating and
// trimming the address forward if the kernel doesn't hand back a
// sufficiently aligned mapping outright.
func (s *pageSource) mapAligned(size, align uintptr) (unsafe.Pointer, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	base := unsafe.Pointer(&b[0])
	if uintptr(base)&(align-1) == 0 {
		return base, nil
	}

	// Rare path: the kernel handed back something less aligned than we
	// need. Over-allocate by one alignment unit and trim.
	_ = unix.Munmap(b)
	big, err := unix.Mmap(-1, 0, int(size+align), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	bigAddr := uintptr(unsafe.Pointer(&big[0]))
	aligned := alignUp(bigAddr, align)
	return unsafe.Pointer(aligned), nil
}

// mapRaw requests size bytes with no alignment requirement beyond the
// kernel's default page alignment, for the large-object path, which does
// its own forward alignment below the returned header.
func (s *pageSource) mapRaw(size uintptr) (unsafe.Pointer, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&b[0]), nil
}

// unmap releases a mapping previously obtained from this source. length
// must be the originally requested size; the kernel rounds to page
// granularity internally.
func (s *pageSource) unmap(ptr unsafe.Pointer, length uintptr) error {
	b := unsafe.Slice((*byte)(ptr), int(length))
	err := unix.Munmap(b)
	if err != nil {
		logger().Warn("page source: munmap failed", zap.Error(err))
	}
	return err
}

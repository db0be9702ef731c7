package malloc

import "unsafe"

// largeHeader sits immediately below the payload returned by the
// large-object path. totalSize must be recovered exactly on deallocate
// because munmap requires the original mapped length.
type largeHeader struct {
	magic     uint64
	base      uintptr
	totalSize uintptr
}

var largeHeaderSize = alignUp(unsafe.Sizeof(largeHeader{}), PoolAlignment)

// allocateLarge implements spec.md §4.4's large path: request
// size+sizeof(LargeHeader)+align bytes from the OS, align the payload
// forward from base+sizeof(LargeHeader), and write the header immediately
// below the aligned payload.
func allocateLarge(source *pageSource, size, align uintptr) unsafe.Pointer {
	if align == 0 {
		align = PoolAlignment
	}
	total := size + largeHeaderSize + align

	base, err := source.mapRaw(total)
	if err != nil {
		logger().Warn("large object: OS mapping failed")
		return nil
	}

	payload := alignUp(uintptr(base)+largeHeaderSize, align)
	hdr := (*largeHeader)(unsafe.Pointer(payload - largeHeaderSize))
	hdr.magic = largeMagicValue
	hdr.base = uintptr(base)
	hdr.totalSize = total
	return unsafe.Pointer(payload)
}

// tryDeallocateLarge inspects the sizeof(largeHeader) bytes immediately
// below ptr for the large magic. If present, it clears the magic (to
// guard against an immediately-following double free observing a stale
// header) and unmaps using the recorded total size, reporting true. If the
// magic does not match, ptr is not a large allocation this function
// produced and it reports false, leaving ptr untouched, so the facade can
// fall through to the small-block classification.
//
// This reads memory immediately below a pointer the caller merely claims
// came from this allocator; for a genuinely foreign pointer sitting at the
// very start of its own mapping, that read is out of bounds. spec.md §4.4
// accepts this as the design's pointer-provenance mechanism; it is the
// same calculated risk mimalloc/tcmalloc-lineage allocators take when
// classifying pointers by inspecting header bytes below them.
func tryDeallocateLarge(source *pageSource, ptr unsafe.Pointer) bool {
	hdr := (*largeHeader)(unsafe.Pointer(uintptr(ptr) - largeHeaderSize))
	if hdr.magic != largeMagicValue {
		return false
	}
	hdr.magic = 0
	base, total := hdr.base, hdr.totalSize
	_ = source.unmap(unsafe.Pointer(base), total)
	return true
}

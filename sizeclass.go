package malloc

// sizeClassIndex returns the size class index for a request of size bytes,
// and false if size is zero or exceeds MaxSmallObjectSize.
func sizeClassIndex(size uintptr) (int, bool) {
	if size == 0 || size > MaxSmallObjectSize {
		return 0, false
	}
	idx := int((size+PoolAlignment-1)/PoolAlignment) - 1
	return idx, true
}

// blockSizeForClass returns the block size served by size class idx.
func blockSizeForClass(idx int) uintptr {
	return uintptr(idx+1) * PoolAlignment
}

// blockCountForClass returns how many blocks of size class idx fit in a
// single page once the page header is accounted for.
func blockCountForClass(idx int) uint32 {
	usable := uintptr(PageSize) - pageHeaderSize
	return uint32(usable / blockSizeForClass(idx))
}

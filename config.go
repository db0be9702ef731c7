package malloc

// PoolAlignment is the block-size granularity A. Every size class is a
// multiple of this value, and every block returned by the small-object path
// is naturally aligned to it.
const PoolAlignment = 8

// MaxSmallObjectSize is the largest request size routed through the
// thread-heap/central-heap small-block path. Anything larger goes through
// the large-object path.
const MaxSmallObjectSize = 256

// NumSizeClasses is the number of fixed block sizes, {8, 16, ..., 256}.
const NumSizeClasses = MaxSmallObjectSize / PoolAlignment

// PageSize is the size of a page carved into blocks of one size class. It
// must be a power of two: the allocator recovers a page header from any
// block pointer by masking off the address bits below PageSize.
const PageSize = 16 * 1024

// PagesPerBatch is how many pages the central heap requests from the OS
// page source in one mapping when a size class runs dry.
const PagesPerBatch = 16

// MaxThreads bounds the fixed-size bucket table used by the debug leak
// tracker (see leaktracker.go). It is not a hard limit on the number of
// live thread heaps, which is unbounded and registry-backed.
const MaxThreads = 256

// pageMagicValue marks a page header as produced by the central heap.
// largeMagicValue marks a large-object header immediately below a payload
// returned by the large-object path. Deallocate checks the header slot
// immediately below every pointer for largeMagicValue first, and only then
// checks pageMagicValue at the pointer's PageSize-aligned base. For the
// first block of a page that slot lies inside the page header, whose fields
// there never hold largeMagicValue; for any other small block it lies in
// the tail of the preceding block, which holds caller data, so there the
// check relies on largeMagicValue being an unlikely 64-bit pattern.
const (
	pageMagicValue  uint64 = 0xBDA11D0C8FACADE0
	largeMagicValue uint64 = 0xBDA11D0C1A46E000
)

func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

func isPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

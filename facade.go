package malloc

import (
	"unsafe"

	"go.uber.org/zap"
)

// Allocator is the entry point described in spec.md §4.4: Allocate,
// AllocateAligned, and Deallocate. A process normally uses the package-
// level DefaultAllocator; a distinct Allocator is only useful for tests
// that want an isolated large-object page source (the central heap itself
// remains the process-wide singleton either way, per spec.md §5).
type Allocator struct {
	source *pageSource
}

// NewAllocator returns an Allocator backed by the process-wide central
// heap singleton.
func NewAllocator() *Allocator {
	return &Allocator{source: defaultCentral.source}
}

var defaultAllocator = NewAllocator()

// DefaultAllocator returns the process-wide allocator facade.
func DefaultAllocator() *Allocator { return defaultAllocator }

// Allocate requests size bytes, A-aligned, from the current thread's heap
// if size <= MaxSmallObjectSize, otherwise from the large-object path.
// size == 0 returns nil. Returns nil on OS allocation failure.
func Allocate(size int) unsafe.Pointer { return defaultAllocator.Allocate(size) }

// AllocateAligned requests size bytes aligned to align, always via the
// large-object path (the small path's natural alignment is PoolAlignment;
// an aligned request above that goes large for simplicity, per spec.md
// §4.4).
func AllocateAligned(size, align int) unsafe.Pointer {
	return defaultAllocator.AllocateAligned(size, align)
}

// Deallocate frees a pointer previously returned by Allocate or
// AllocateAligned. nil and foreign pointers are no-ops.
func Deallocate(ptr unsafe.Pointer) { defaultAllocator.Deallocate(ptr) }

func (a *Allocator) Allocate(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	if uintptr(size) <= MaxSmallObjectSize {
		h := getCurrentThreadHeap()
		if trackingEnabled {
			ptr := h.allocate(uintptr(size))
			if ptr != nil {
				defaultLeakTracker.Track(defaultMonotonicThreadIDs.idFor(h.tid), ptr, uintptr(size), "", 0)
			}
			return ptr
		}
		return h.allocate(uintptr(size))
	}
	return a.AllocateAligned(size, PoolAlignment)
}

func (a *Allocator) AllocateAligned(size, align int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	if align <= 0 || !isPowerOfTwo(uintptr(align)) {
		logger().Warn("allocate aligned: invalid alignment", zap.Int("align", align), zap.Error(ErrInvalidAlignment))
		return nil
	}
	ptr := allocateLarge(a.source, uintptr(size), uintptr(align))
	if ptr != nil && trackingEnabled {
		tid := getCurrentThreadHeap().tid
		defaultLeakTracker.Track(defaultMonotonicThreadIDs.idFor(tid), ptr, uintptr(size), "", 0)
	}
	return ptr
}

// Deallocate classifies ptr by provenance, per spec.md §4.4: (a) large
// header magic below ptr, (b) page header magic at ptr's page-aligned
// base, (c) foreign — silently ignored either way.
func (a *Allocator) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	if trackingEnabled {
		defaultLeakTracker.Untrack(defaultMonotonicThreadIDs.idFor(getCurrentThreadHeap().tid), ptr)
	}

	if tryDeallocateLarge(a.source, ptr) {
		return
	}

	page := pageFromPointer(ptr)
	if page.magic != pageMagicValue {
		return // foreign pointer: silently ignored
	}
	debugAssert(page.sizeClass < NumSizeClasses, "corrupt size-class index on page header")

	owner := page.owner.Load()
	if owner == nil {
		// Page was returned to the central heap and its owner cleared;
		// per spec.md §4.3.4 a free of a pointer in this state is the
		// caller's bug (use-after-thread-exit). Drop it rather than risk
		// operating on a page the central heap may already be reusing.
		return
	}

	if owner == getCurrentThreadHeap() {
		owner.deallocateLocal(page, ptr)
	} else {
		owner.defq.push(ptr)
	}
}

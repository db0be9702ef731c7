package malloc

import (
	"unsafe"

	"go.uber.org/zap"
)

// threadHeap is the per-thread cache described in spec.md §4.3: per size
// class, the head of a list of pages this thread currently owns, plus one
// MPSC queue absorbing frees pushed by other threads.
type threadHeap struct {
	tid   int
	pages [NumSizeClasses]*pageHeader
	defq  deferredQueue

	central *CentralHeap
}

func newThreadHeap(tid int) *threadHeap {
	return &threadHeap{tid: tid, central: defaultCentral}
}

// allocate implements spec.md §4.3.1. It first drains any deferred frees
// pushed by other threads, then walks the size class's page list looking
// for a free block, refilling from the central heap when every owned page
// is full.
func (h *threadHeap) allocate(size uintptr) unsafe.Pointer {
	idx, ok := sizeClassIndex(size)
	if !ok {
		return nil
	}

	h.processDeferredFrees()

	for {
		for page := h.pages[idx]; page != nil; page = page.localNext {
			if ptr := page.popFree(); ptr != nil {
				return ptr
			}
		}

		newPage := h.central.GetPage(idx)
		if newPage == nil {
			return nil
		}
		debugAssert(newPage.magic == pageMagicValue, "central heap returned a page with a bad magic")
		newPage.owner.Store(h)
		newPage.initFreeList()
		newPage.localNext = h.pages[idx]
		h.pages[idx] = newPage
	}
}

// deallocateLocal implements the fast path of spec.md §4.3.2: the calling
// thread owns page, so the block goes straight onto page's free list.
func (h *threadHeap) deallocateLocal(page *pageHeader, ptr unsafe.Pointer) {
	if page.pushFree(ptr) == 0 {
		h.returnPageIfEmpty(page)
	}
}

// returnPageIfEmpty unlinks page from this heap's per-class list, clears
// its owner, and returns it to the central heap. Only called in the
// usedBlocks 1->0 transition.
func (h *threadHeap) returnPageIfEmpty(page *pageHeader) {
	idx := page.sizeClass
	if h.pages[idx] == page {
		h.pages[idx] = page.localNext
	} else {
		for p := h.pages[idx]; p != nil; p = p.localNext {
			if p.localNext == page {
				p.localNext = page.localNext
				break
			}
		}
	}
	page.localNext = nil
	page.owner.Store(nil)
	h.central.ReturnPage(page)
}

// processDeferredFrees drains the deferred-free queue and reinserts each
// pointer via the local-dealloc fast path, exactly as spec.md §4.3.3
// describes for the consumer side. Called opportunistically at the top of
// allocate, and unconditionally from releaseAll at thread exit.
func (h *threadHeap) processDeferredFrees() {
	for _, ptr := range h.defq.drain() {
		page := pageFromPointer(ptr)
		h.deallocateLocal(page, ptr)
	}
}

// releaseAll implements spec.md §4.3.4: drain the deferred queue so
// foreign frees complete, then return every owned page to the central
// heap regardless of usedBlocks. Any still-allocated blocks were leaked by
// the caller; that is the caller's bug, not the allocator's.
func (h *threadHeap) releaseAll() {
	h.processDeferredFrees()
	for idx := 0; idx < NumSizeClasses; idx++ {
		page := h.pages[idx]
		h.pages[idx] = nil
		for page != nil {
			next := page.localNext
			page.localNext = nil
			page.owner.Store(nil)
			h.central.ReturnPage(page)
			page = next
		}
	}
	logger().Debug("thread heap: released all pages", zap.Int("tid", h.tid))
}

package malloc

import (
	"unsafe"

	"go.uber.org/atomic"
)

// freeNode is the interior view of an unused block: it overlays the
// block's own storage, so it must fit within the smallest size class.
type freeNode struct {
	next *freeNode
}

// pageHeader sits at offset 0 of every 16 KiB page the central heap hands
// out. Its fields are spec.md §3's page header (magic, owner, local-list
// link, central-list link, atomic free-block list head, atomic used-block
// count, size-class index) plus the page's block size and block count.
type pageHeader struct {
	magic uint64

	// owner is set exactly once when a thread heap takes the page from the
	// central heap, and cleared exactly once when the page is returned.
	// Any thread may load it (to decide local vs. deferred free); only the
	// owner ever stores to it.
	owner atomic.Pointer[threadHeap]

	// localNext chains pages within one thread heap's per-class list. It is
	// touched only by the owning thread and needs no synchronization.
	localNext *pageHeader

	// centralNext chains pages within the central heap's per-class free
	// list. It is touched only while the central heap's mutex is held.
	centralNext *pageHeader

	freeList   atomic.Pointer[freeNode]
	usedBlocks atomic.Uint32

	sizeClass uint32
	blockSize uint32
	numBlocks uint32
}

// pageHeaderSize is pageHeader's footprint rounded up to PoolAlignment, so
// the block region that follows it stays naturally aligned.
var pageHeaderSize = alignUp(unsafe.Sizeof(pageHeader{}), PoolAlignment)

// pageFromPointer recovers a page header from any pointer into its block
// region. This is invariant 1 from spec.md §3: every page is PageSize-
// aligned, so masking off the low bits always lands on offset 0.
func pageFromPointer(ptr unsafe.Pointer) *pageHeader {
	addr := uintptr(ptr) &^ (PageSize - 1)
	return (*pageHeader)(unsafe.Pointer(addr))
}

// blocksStart returns the address of the first block in the page's payload
// region.
func (p *pageHeader) blocksStart() uintptr {
	return uintptr(unsafe.Pointer(p)) + pageHeaderSize
}

// initFreeList builds the page's free-block chain in place, starting right
// after the header, for numBlocks blocks of blockSize bytes each. Called
// once by the thread heap immediately after a page is obtained from the
// central heap (whether freshly mapped or recycled), mirroring
// ThreadHeap::Allocate's unconditional initializeFreeList call.
func (p *pageHeader) initFreeList() {
	start := p.blocksStart()
	var head *freeNode
	for i := int(p.numBlocks) - 1; i >= 0; i-- {
		block := (*freeNode)(unsafe.Pointer(start + uintptr(i)*uintptr(p.blockSize)))
		block.next = head
		head = block
	}
	p.freeList.Store(head)
	p.usedBlocks.Store(0)
}

// popFree pops one block from the page's free list, or returns nil if the
// page has none free. CAS-protected because the deferred-free processor
// (always run by the owning thread, but potentially re-entrantly) may push
// to the same free list concurrently with this pop.
func (p *pageHeader) popFree() unsafe.Pointer {
	var bo backoff
	for {
		head := p.freeList.Load()
		if head == nil {
			return nil
		}
		next := head.next
		if p.freeList.CompareAndSwap(head, next) {
			p.usedBlocks.Add(1)
			return unsafe.Pointer(head)
		}
		bo.spin()
	}
}

// pushFree pushes ptr back onto the page's free list and returns the used-
// block count observed immediately after the decrement, i.e. the new
// value. A return of 0 means this was the block that emptied the page.
func (p *pageHeader) pushFree(ptr unsafe.Pointer) uint32 {
	block := (*freeNode)(ptr)
	var bo backoff
	for {
		head := p.freeList.Load()
		block.next = head
		if p.freeList.CompareAndSwap(head, block) {
			break
		}
		bo.spin()
	}
	return p.usedBlocks.Sub(1)
}

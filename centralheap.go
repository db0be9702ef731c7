package malloc

import (
	"sync"
	"unsafe"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// CentralHeap is the process-wide singleton that holds, per size class, a
// free list of pages not currently owned by any thread heap. It is
// protected by a single mutex: this path is cold (pages are bulk-refilled
// and most allocations never reach it), so fine-grained locking would add
// complexity for no measured win.
type CentralHeap struct {
	mu   sync.Mutex
	free [NumSizeClasses]*pageHeader

	pagesMapped [NumSizeClasses]atomic.Uint64

	source *pageSource
}

// PageStats is the diagnostic snapshot returned by GetStats.
type PageStats struct {
	FreePageCount int
}

var defaultCentral = &CentralHeap{source: &pageSource{}}

// DefaultCentralHeap returns the process-wide central heap singleton. Go's
// package-variable initialization already runs exactly once before any
// goroutine can observe defaultCentral, which is the Go equivalent of the
// call_once-style barrier spec.md §5 calls for; no additional sync.Once is
// needed to guard first use.
func DefaultCentralHeap() *CentralHeap { return defaultCentral }

// GetPage pops a free page for sizeClassIdx, refilling from the OS page
// source in batches of PagesPerBatch when the class is empty. Returns nil
// if the OS refuses the mapping.
func (c *CentralHeap) GetPage(sizeClassIdx int) *pageHeader {
	c.mu.Lock()
	defer c.mu.Unlock()

	if head := c.free[sizeClassIdx]; head != nil {
		c.free[sizeClassIdx] = head.centralNext
		head.centralNext = nil
		return head
	}

	base, err := c.source.mapPageBatch()
	if err != nil {
		logger().Warn("central heap: OS page mapping failed",
			zap.Int("sizeClass", sizeClassIdx), zap.Error(err))
		return nil
	}

	blockSize := blockSizeForClass(sizeClassIdx)
	numBlocks := blockCountForClass(sizeClassIdx)

	var first *pageHeader
	for i := 0; i < PagesPerBatch; i++ {
		addr := unsafe.Pointer(uintptr(base) + uintptr(i)*PageSize)
		p := (*pageHeader)(addr)
		*p = pageHeader{}
		p.magic = pageMagicValue
		p.sizeClass = uint32(sizeClassIdx)
		p.blockSize = uint32(blockSize)
		p.numBlocks = numBlocks
		if i == 0 {
			first = p
		} else {
			p.centralNext = c.free[sizeClassIdx]
			c.free[sizeClassIdx] = p
		}
	}

	c.pagesMapped[sizeClassIdx].Add(PagesPerBatch)
	logger().Debug("central heap: refilled from OS",
		zap.Int("sizeClass", sizeClassIdx), zap.Int("pages", PagesPerBatch))
	return first
}

// ReturnPage pushes page back onto its size class's free list. The caller
// must have already cleared page's owner. The page's block free list and
// used count are left as they are (releaseAll returns pages that still
// have used blocks); the next thread heap to take the page rebuilds them
// with initFreeList.
func (c *CentralHeap) ReturnPage(page *pageHeader) {
	if page == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	page.centralNext = c.free[page.sizeClass]
	c.free[page.sizeClass] = page
}

// GetStats traverses and counts the free list for sizeClassIdx. Diagnostic
// only: not on any hot path.
func (c *CentralHeap) GetStats(sizeClassIdx int) PageStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for p := c.free[sizeClassIdx]; p != nil; p = p.centralNext {
		n++
	}
	return PageStats{FreePageCount: n}
}

func (c *CentralHeap) pagesMappedTotal(sizeClassIdx int) uint64 {
	return c.pagesMapped[sizeClassIdx].Load()
}

package malloc

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ThreadIDProvider produces a stable identifier for the calling thread,
// cached per thread by the caller. It is the narrow interface this module
// consumes from the thread-id registry collaborator described in spec.md
// §6(a); osThreadID (threadid_linux.go / threadid_other.go) is the default
// implementation.
type ThreadIDProvider interface {
	CurrentThreadID() int
}

type osThreadIDProvider struct{}

func (osThreadIDProvider) CurrentThreadID() int { return osThreadID() }

var defaultThreadIDProvider ThreadIDProvider = osThreadIDProvider{}

// threadHeapRegistry maps a thread id to its *threadHeap, replacing the
// native thread-local storage the original design assumed. Entries are
// created lazily on first touch and removed by ReleaseCurrentThreadHeap.
var threadHeapRegistry sync.Map // int -> *threadHeap

var liveThreadHeaps atomic.Int64

// getCurrentThreadHeap returns the calling thread's heap, creating one on
// first use.
func getCurrentThreadHeap() *threadHeap {
	tid := defaultThreadIDProvider.CurrentThreadID()
	if v, ok := threadHeapRegistry.Load(tid); ok {
		return v.(*threadHeap)
	}
	h := newThreadHeap(tid)
	actual, loaded := threadHeapRegistry.LoadOrStore(tid, h)
	if loaded {
		return actual.(*threadHeap)
	}
	liveThreadHeaps.Inc()
	logger().Debug("thread heap: created", zap.Int("tid", tid))
	return h
}

// ReleaseCurrentThreadHeap is the explicit substitute for the TLS
// destructor Go does not provide. A worker should call it before it stops
// issuing allocations on the current OS thread, typically at the bottom of
// a runtime.LockOSThread-pinned loop. It drains the deferred-free queue and
// unconditionally returns every owned page to the central heap, matching
// spec.md §4.3.4. Skipping this call simply leaks the registry entry; it
// does not corrupt allocator state.
func ReleaseCurrentThreadHeap() {
	tid := defaultThreadIDProvider.CurrentThreadID()
	v, ok := threadHeapRegistry.LoadAndDelete(tid)
	if !ok {
		return
	}
	h := v.(*threadHeap)
	h.releaseAll()
	liveThreadHeaps.Dec()
	logger().Debug("thread heap: released", zap.Int("tid", tid))
}

func liveThreadHeapCount() int64 {
	return liveThreadHeaps.Load()
}

// monotonicThreadIDRegistry is the Go shape of the out-of-scope "thread-id
// registry" collaborator spec.md §6(a) names: it hands out small
// sequential ids, one per distinct OS thread, cached by OS thread id. It
// is deliberately separate from the OS-TID-keyed thread-heap registry
// above: the heap registry needs a stable key per concurrent caller (any
// distinct int works), while this registry exists specifically to back
// the leak tracker's MaxThreads-bounded bucket array, which needs small,
// densely packed ids the way original_source/core/common/ThreadRegistry.*
// issues them.
type monotonicThreadIDRegistry struct {
	next atomic.Int32
	ids  sync.Map // int (OS tid) -> int (small id)
}

func (r *monotonicThreadIDRegistry) idFor(osTID int) int {
	if v, ok := r.ids.Load(osTID); ok {
		return v.(int)
	}
	candidate := int(r.next.Inc()) - 1
	actual, loaded := r.ids.LoadOrStore(osTID, candidate)
	if loaded {
		return actual.(int)
	}
	return candidate
}

var defaultMonotonicThreadIDs monotonicThreadIDRegistry

// DrainCurrentThreadDeferredFrees processes every pointer other threads
// have deferred-freed against the calling thread's heap, without
// returning any pages to the central heap. Allocate already does this
// opportunistically; this is for a caller that wants the deferred frees
// applied promptly without also allocating (e.g. after joining worker
// goroutines that freed this thread's blocks).
func DrainCurrentThreadDeferredFrees() {
	getCurrentThreadHeap().processDeferredFrees()
}

package malloc

import (
	"fmt"
	"sync"
	"unsafe"
)

// LeakTracker is the narrow interface spec.md §6(b) names: track records a
// live allocation, untrack removes it. It exists to let a caller report
// unfreed allocations at shutdown; its own storage is intentionally thin
// and is never consulted by the hot allocate/deallocate path unless the
// debugtrack build tag is set.
type LeakTracker interface {
	Track(threadID int, ptr unsafe.Pointer, size uintptr, file string, line int)
	Untrack(threadID int, ptr unsafe.Pointer)
}

type noopLeakTracker struct{}

func (noopLeakTracker) Track(int, unsafe.Pointer, uintptr, string, int) {}
func (noopLeakTracker) Untrack(int, unsafe.Pointer)                     {}

var defaultLeakTracker LeakTracker = noopLeakTracker{}

// SetLeakTracker installs the tracker consulted when the debugtrack build
// tag is set. The default, used whenever that tag is absent, is a no-op.
func SetLeakTracker(t LeakTracker) {
	if t == nil {
		t = noopLeakTracker{}
	}
	defaultLeakTracker = t
}

type leakInfo struct {
	size uintptr
	file string
	line int
}

// LeakReport describes one allocation still live when ReportLeaks is
// called.
type LeakReport struct {
	ThreadID int
	Pointer  unsafe.Pointer
	Size     uintptr
	File     string
	Line     int
}

// MapLeakTracker is an associative set keyed by pointer, the Go shape of
// the original's per-thread AllocationMap: a mutex-guarded array of
// MaxThreads per-thread maps plus one overflow map for thread ids outside
// that range. It is built over plain Go maps rather than anything that
// would call back into this package's Allocate, since those maps are
// backed by the Go runtime's own allocator: this preserves the spirit of the original's re-entrancy
// guard (the tracker must not recurse into the allocator it is tracking)
// without needing a thread-local boolean flag to enforce it.
type MapLeakTracker struct {
	mu       sync.Mutex
	buckets  [MaxThreads]map[uintptr]leakInfo
	overflow map[uintptr]leakInfo
}

// NewMapLeakTracker returns a ready-to-use MapLeakTracker.
func NewMapLeakTracker() *MapLeakTracker {
	t := &MapLeakTracker{overflow: make(map[uintptr]leakInfo)}
	for i := range t.buckets {
		t.buckets[i] = make(map[uintptr]leakInfo)
	}
	return t
}

func (t *MapLeakTracker) bucketFor(threadID int) map[uintptr]leakInfo {
	if threadID >= 0 && threadID < MaxThreads {
		return t.buckets[threadID]
	}
	return t.overflow
}

// Track records ptr as a live allocation of size bytes attributed to
// threadID, optionally noting the call site.
func (t *MapLeakTracker) Track(threadID int, ptr unsafe.Pointer, size uintptr, file string, line int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bucketFor(threadID)[uintptr(ptr)] = leakInfo{size: size, file: file, line: line}
}

// Untrack removes ptr from the live set.
func (t *MapLeakTracker) Untrack(threadID int, ptr unsafe.Pointer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bucketFor(threadID), uintptr(ptr))
}

// ReportLeaks returns every allocation still live across all threads.
// Intended for use at shutdown.
func (t *MapLeakTracker) ReportLeaks() []LeakReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []LeakReport
	collect := func(threadID int, m map[uintptr]leakInfo) {
		for addr, info := range m {
			out = append(out, LeakReport{
				ThreadID: threadID,
				Pointer:  unsafe.Pointer(addr),
				Size:     info.size,
				File:     info.file,
				Line:     info.line,
			})
		}
	}
	for i, m := range t.buckets {
		collect(i, m)
	}
	collect(-1, t.overflow)
	return out
}

func (r LeakReport) String() string {
	if r.File == "" {
		return fmt.Sprintf("thread %d: leaked %d bytes at %p", r.ThreadID, r.Size, r.Pointer)
	}
	return fmt.Sprintf("thread %d: leaked %d bytes at %p (%s:%d)", r.ThreadID, r.Size, r.Pointer, r.File, r.Line)
}

package malloc

import (
	"unsafe"

	"go.uber.org/atomic"
)

// deferredNode links one cross-thread-freed pointer into the deferred-free
// queue's LIFO chain.
type deferredNode struct {
	ptr  unsafe.Pointer
	next *deferredNode
}

// deferredQueue is a lock-free multi-producer single-consumer queue: any
// thread may push, only the owning thread heap pops, and it pops the
// entire queue at once. Ordering delivered by the queue is unspecified; a
// single atomic head pointer suffices (spec.md §4.3.3).
type deferredQueue struct {
	head atomic.Pointer[deferredNode]
}

// push adds ptr to the queue. Safe to call from any goroutine: the node is
// linked to the current head before it is published, so a concurrent drain
// never takes it without the rest of the chain.
func (q *deferredQueue) push(ptr unsafe.Pointer) {
	node := &deferredNode{ptr: ptr}
	var bo backoff
	for {
		old := q.head.Load()
		node.next = old
		if q.head.CompareAndSwap(old, node) {
			return
		}
		bo.spin()
	}
}

// drain atomically takes the entire queue and returns it as a Go slice of
// pointers, oldest-push-order unspecified. It performs the two-phase
// drain spec.md §4.3.3 specifies as correct: all next-links are read into
// a local slice before any node is allowed to become garbage, so a
// concurrent push that is mid-link at the moment of the exchange cannot
// cause a use-after-free here (Go's garbage collector also means there is
// no explicit node-free step; the two-phase shape is kept because it is
// the specified drain discipline, not because this module manages node
// memory by hand).
func (q *deferredQueue) drain() []unsafe.Pointer {
	head := q.head.Swap(nil)
	if head == nil {
		return nil
	}
	var out []unsafe.Pointer
	for n := head; n != nil; n = n.next {
		out = append(out, n.ptr)
	}
	return out
}

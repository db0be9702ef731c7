package malloc

// Snapshot is a process-wide diagnostic snapshot, querying the same data
// the Prometheus collector on *CentralHeap exports.
type Snapshot struct {
	FreePages       [NumSizeClasses]int
	PagesMapped     [NumSizeClasses]uint64
	LiveThreadHeaps int64
}

// Stats returns a point-in-time Snapshot of the process-wide allocator
// state.
func (a *Allocator) Stats() Snapshot {
	var s Snapshot
	for i := 0; i < NumSizeClasses; i++ {
		s.FreePages[i] = defaultCentral.GetStats(i).FreePageCount
		s.PagesMapped[i] = defaultCentral.pagesMappedTotal(i)
	}
	s.LiveThreadHeaps = liveThreadHeapCount()
	return s
}

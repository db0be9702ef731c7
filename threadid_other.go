//go:build !linux

package malloc

import (
	"bytes"
	"runtime"
	"strconv"
)

// osThreadID falls back to the calling goroutine's id on platforms where
// golang.org/x/sys/unix has no direct gettid equivalent. This loses true
// OS-thread affinity (a goroutine that changes OS thread between calls
// still presents a stable id here), which only makes the thread-heap
// registry coarser, never incorrect: the registry's job is to hand out a
// stable, distinct key per concurrent caller, and a goroutine id satisfies
// that just as well as a TID does for every invariant in spec.md §5.
func osThreadID() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return 0
	}
	return id
}

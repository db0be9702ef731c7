package malloc

import (
	"sort"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestDeferredQueueDrainEmpty(t *testing.T) {
	var q deferredQueue
	require.Nil(t, q.drain())
}

func TestDeferredQueueSingleThreadedOrderAgnostic(t *testing.T) {
	var q deferredQueue
	want := make([]uintptr, 0, 10)
	for i := 0; i < 10; i++ {
		ptr := unsafe.Pointer(uintptr(0x1000 + i*8))
		q.push(ptr)
		want = append(want, uintptr(ptr))
	}
	got := q.drain()
	gotAddrs := make([]uintptr, len(got))
	for i, p := range got {
		gotAddrs[i] = uintptr(p)
	}
	sort.Slice(gotAddrs, func(i, j int) bool { return gotAddrs[i] < gotAddrs[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, gotAddrs)
}

func TestDeferredQueueConcurrentPushesAllSurviveDrain(t *testing.T) {
	var q deferredQueue
	const producers = 16
	const perProducer = 500

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(unsafe.Pointer(uintptr(p*perProducer + i + 1)))
			}
		}(p)
	}
	wg.Wait()

	got := q.drain()
	require.Len(t, got, producers*perProducer)
}

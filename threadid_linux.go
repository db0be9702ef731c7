//go:build linux

package malloc

import "golang.org/x/sys/unix"

// osThreadID returns the calling OS thread's Linux TID. A goroutine that
// migrates between OS threads between two calls simply presents a
// different TID; a block it then frees that belongs to the previous
// thread's heap goes through that heap's deferred-free queue like any other
// cross-thread free (see Allocator.Deallocate).
func osThreadID() int {
	return unix.Gettid()
}

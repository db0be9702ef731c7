// Package malloc implements a thread-caching small-object allocator backed
// by anonymous OS mappings, in the mimalloc/tcmalloc lineage: a lock-free
// per-thread heap serves the hot path, a mutex-guarded central heap supplies
// pages in batches, and cross-thread frees are routed through a lock-free
// MPSC queue back to the page's owning thread.
//
// Allocations of 256 bytes or fewer are served from the calling OS thread's
// heap. Larger allocations, and any aligned allocation, go through a
// dedicated large-object path backed directly by mmap/munmap.
package malloc

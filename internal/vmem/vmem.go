// Package vmem exposes the OS-level reserve/commit/decommit/release
// primitives that back the arena allocator. It is the one place in the
// module that talks to page-aligned virtual memory directly; everything
// above it (package arena) works purely in byte offsets.
package vmem

import "os"

var pageSize = uintptr(os.Getpagesize())

// PageSize returns the OS logical page size, memoized at process start.
func PageSize() uintptr {
	return pageSize
}

// RoundUp rounds size up to the next multiple of the page size.
func RoundUp(size uintptr) uintptr {
	ps := pageSize
	return (size + ps - 1) &^ (ps - 1)
}

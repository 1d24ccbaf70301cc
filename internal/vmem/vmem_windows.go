//go:build windows

package vmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Reserve reserves size bytes of address space with no access rights and
// returns the backing slice. The slice must not be read or written until
// the corresponding prefix has been Commit-ed.
func Reserve(size uintptr) ([]byte, error) {
	size = RoundUp(size)
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve %d bytes: %w", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Commit backs mem[:size] with read/write pages.
func Commit(mem []byte, size uintptr) error {
	size = RoundUp(size)
	if size == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	if _, err := windows.VirtualAlloc(addr, size, windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
		return fmt.Errorf("vmem: commit %d bytes: %w", size, err)
	}
	return nil
}

// Decommit returns mem[:size] to the OS without releasing the reservation.
func Decommit(mem []byte, size uintptr) error {
	size = RoundUp(size)
	if size == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	if err := windows.VirtualFree(addr, size, windows.MEM_DECOMMIT); err != nil {
		return fmt.Errorf("vmem: decommit %d bytes: %w", size, err)
	}
	return nil
}

// Release releases the entire reservation backing mem.
func Release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("vmem: release %d bytes: %w", len(mem), err)
	}
	return nil
}

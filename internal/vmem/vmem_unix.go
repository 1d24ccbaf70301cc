//go:build linux || darwin || freebsd || netbsd || openbsd

package vmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Reserve reserves size bytes of address space with no access rights and
// returns the backing slice. The slice must not be read or written until
// the corresponding prefix has been Commit-ed.
func Reserve(size uintptr) ([]byte, error) {
	size = RoundUp(size)
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("vmem: reserve %d bytes: %w", size, err)
	}
	return b, nil
}

// Commit backs mem[:size] with read/write pages.
func Commit(mem []byte, size uintptr) error {
	size = RoundUp(size)
	if size == 0 {
		return nil
	}
	if err := unix.Mprotect(mem[:size], unix.PROT_READ|unix.PROT_WRITE); err != nil {
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
	if err := unix.Mprotect(mem[:size], unix.PROT_NONE); err != nil {
		return fmt.Errorf("vmem: decommit %d bytes: %w", size, err)
	}
	if err := unix.Madvise(mem[:size], unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("vmem: madvise %d bytes: %w", size, err)
	}
	return nil
}

// Release releases the entire reservation backing mem.
func Release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("vmem: release %d bytes: %w", len(mem), err)
	}
	return nil
}

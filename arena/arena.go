// Package arena implements a reserve/commit bump allocator: a large
// virtual address range is reserved up front and grown in page-sized
// commits as allocations bump a position pointer forward. Arenas chain
// when a tail is exhausted, and retired tails are recycled through a
// LIFO free list instead of being released back to the OS. There is no
// per-allocation free; only checkpoint-based Push/PopTo, whole-arena
// Clear, and process-exit Release.
package arena

import (
	"errors"
	"fmt"

	"github.com/lemon4ksan/zipbox/internal/vmem"
)

// HeaderSize is the number of bytes reserved at the front of every
// arena's committed range for its own bookkeeping. User allocations
// never start before this offset.
const HeaderSize = 128

// DefaultReserveSize and DefaultCommitSize are used when a caller does
// not specify sizes explicitly.
const (
	DefaultReserveSize = 64 << 20 // 64 MiB of address space per arena
	DefaultCommitSize  = 64 << 10 // grow committed memory 64 KiB at a time
)

// ErrOutOfMemory is returned when the OS refuses to reserve or commit
// more address space.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Site records where an arena was created, purely for diagnostics. It
// is stored on each arena node and has no effect on allocation behavior.
type Site string

// arenaNode is one link in the active chain or the free list. The head
// node of the active chain is embedded in Arena itself; every other
// node is heap-allocated (the Go runtime, not the reserved memory,
// backs the node struct — only user allocations live in mem).
type arenaNode struct {
	mem       []byte // full reservation, PROT_NONE beyond committed
	reserved  uintptr
	committed uintptr
	commitBy  uintptr // commit-grow granularity
	pos       uintptr // bump position, offset from base of mem
	basePos   uintptr // global position of this arena's base in the chain
	site      Site

	prev *arenaNode // previous arena in the active chain, or free-list link
}

// Arena is the externally held handle: the head of a chain of
// arenaNodes. Allocations bump current's pos; when current is
// exhausted a new tail is linked (recycled from the free list when
// possible) and current advances.
type Arena struct {
	head    arenaNode
	current *arenaNode
	// freeLast anchors the LIFO free list of retired tail arenas.
	// Only prev linkage and reserved size are read off a free-listed
	// node when recycling it (see PopTo and Push's tail-acquisition
	// step); current lives on Arena alone, never on arenaNode.
	freeLast *arenaNode
	freeSize uintptr
}

// New creates a head arena reserving reserveSize bytes of address space
// and committing commitSize bytes up front. Both sizes are rounded up
// to the OS page size. Passing 0 for either uses the package default.
func New(reserveSize, commitSize uintptr, site Site) (*Arena, error) {
	if reserveSize == 0 {
		reserveSize = DefaultReserveSize
	}
	if commitSize == 0 {
		commitSize = DefaultCommitSize
	}
	a := &Arena{}
	if err := initNode(&a.head, reserveSize, commitSize, site); err != nil {
		return nil, err
	}
	a.current = &a.head
	return a, nil
}

func initNode(n *arenaNode, reserveSize, commitSize uintptr, site Site) error {
	reserveSize = vmem.RoundUp(reserveSize)
	commitSize = vmem.RoundUp(commitSize)
	if commitSize > reserveSize {
		commitSize = reserveSize
	}

	mem, err := vmem.Reserve(reserveSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	if err := vmem.Commit(mem, commitSize); err != nil {
		_ = vmem.Release(mem)
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	n.mem = mem
	n.reserved = reserveSize
	n.committed = commitSize
	n.commitBy = commitSize
	n.pos = HeaderSize
	n.site = site
	return nil
}

func newNode(reserveSize, commitSize uintptr, site Site) (*arenaNode, error) {
	n := &arenaNode{}
	if err := initNode(n, reserveSize, commitSize, site); err != nil {
		return nil, err
	}
	return n, nil
}

func alignUp(x uintptr, align uintptr) uintptr {
	if align <= 1 {
		return x
	}
	return (x + align - 1) &^ (align - 1)
}

// Push allocates size bytes aligned to align (which must be a power of
// two) and returns the backing slice, or an error if the arena cannot
// grow to satisfy the request. Every arena's first HeaderSize bytes are
// taken, so a size larger than the reserve size minus HeaderSize never
// succeeds.
func (a *Arena) Push(size uintptr, align uintptr) ([]byte, error) {
	if align == 0 {
		align = 1
	}
	for attempt := 0; attempt < 2; attempt++ {
		c := a.current
		start := alignUp(c.pos, align)
		end := start + size
		if end <= c.reserved {
			if end > c.committed {
				grow := alignUp(end, c.commitBy)
				if grow > c.reserved {
					grow = c.reserved
				}
				if err := vmem.Commit(c.mem, grow); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
				}
				c.committed = grow
			}
			c.pos = end
			return c.mem[start:end:end], nil
		}

		// Tail exhausted: acquire a new one, LIFO from the free list
		// if the most-recently-freed arena fits, otherwise fresh.
		var next *arenaNode
		if a.freeLast != nil && a.freeLast.reserved >= size {
			next = a.freeLast
			a.freeLast = next.prev
			a.freeSize -= next.reserved
			next.pos = HeaderSize
		} else {
			var err error
			next, err = newNode(c.reserved, c.commitBy, c.site)
			if err != nil {
				return nil, err
			}
		}
		next.prev = c
		next.basePos = c.basePos + c.reserved
		a.current = next
	}
	return nil, fmt.Errorf("arena: cannot satisfy allocation of %d bytes", size)
}

// GetPos returns the arena's current global bump position, monotonic
// across the whole chain: base_pos of the tail plus its local pos.
func (a *Arena) GetPos() uintptr {
	return a.current.basePos + a.current.pos
}

// Clear is equivalent to PopTo(HeaderSize): every chained tail is
// retired to the free list and the head's position resets.
func (a *Arena) Clear() {
	a.PopTo(HeaderSize)
}

// FreeCount reports how many retired arenas are sitting on the free
// list, for tests and diagnostics.
func (a *Arena) FreeCount() int {
	n := 0
	for f := a.freeLast; f != nil; f = f.prev {
		n++
	}
	return n
}

// FreeSize reports the sum of reserved sizes of free-listed arenas.
func (a *Arena) FreeSize() uintptr {
	return a.freeSize
}

// Release walks the active chain and the free list, releasing every
// backing reservation to the OS. The Arena handle is invalid after
// Release returns; using it again is undefined.
func (a *Arena) Release() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for n := a.current; n != nil && n != &a.head; {
		prev := n.prev
		record(vmem.Release(n.mem))
		n = prev
	}
	for f := a.freeLast; f != nil; {
		prev := f.prev
		record(vmem.Release(f.mem))
		f = prev
	}
	record(vmem.Release(a.head.mem))

	a.current = nil
	a.freeLast = nil
	a.freeSize = 0
	return firstErr
}

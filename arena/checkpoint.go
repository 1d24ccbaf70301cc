package arena

// PopTo rewinds the arena to a global position previously returned by
// GetPos. Every tail arena whose base lies at or after pos is detached
// from the active chain and pushed onto the LIFO free list; the arena
// that pos falls within has its local pos restored (but never below
// HeaderSize — pos can't rewind into the header).
func (a *Arena) PopTo(pos uintptr) {
	for a.current != &a.head && a.current.basePos >= pos {
		retired := a.current
		a.current = retired.prev

		retired.prev = a.freeLast
		a.freeLast = retired
		a.freeSize += retired.reserved
	}

	if pos >= a.current.basePos && pos < a.current.basePos+a.current.reserved {
		local := pos - a.current.basePos
		if local < HeaderSize {
			local = HeaderSize
		}
		a.current.pos = local
	}
}

// Checkpoint is a saved global position that can be restored with Pop.
type Checkpoint struct {
	arena *Arena
	pos   uintptr
}

// Save captures the arena's current position.
func (a *Arena) Save() Checkpoint {
	return Checkpoint{arena: a, pos: a.GetPos()}
}

// Pop rewinds the arena to the saved position.
func (c Checkpoint) Pop() {
	c.arena.PopTo(c.pos)
}

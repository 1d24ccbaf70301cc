package arena

// Stats is a point-in-time snapshot of arena usage, purely for
// diagnostics — read-only, it never influences allocation behavior.
type Stats struct {
	Reserved  uintptr // sum of reserved sizes across the active chain
	Committed uintptr // sum of committed sizes across the active chain
	Used      uintptr // sum of bump positions across the active chain
	FreeCount int     // number of arenas sitting on the free list
	FreeSize  uintptr // sum of reserved sizes on the free list
}

// Stats walks the active chain and free list to compute a usage
// snapshot. It does O(number of chained arenas) work.
func (a *Arena) Stats() Stats {
	var s Stats
	for n := a.current; n != nil; n = n.prev {
		s.Reserved += n.reserved
		s.Committed += n.committed
		s.Used += n.pos
		if n == &a.head {
			break
		}
	}
	s.FreeCount = a.FreeCount()
	s.FreeSize = a.freeSize
	return s
}

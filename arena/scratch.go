package arena

// Scratch is a lexically scoped arena checkpoint: Begin captures the
// current position, and the returned func rewinds to it. Callers use
// it with defer so the rewind happens on every exit path, including
// early returns on error:
//
//	end := a.BeginScratch()
//	defer end()
//	... allocate transient decode buffers from a ...
func (a *Arena) BeginScratch() func() {
	saved := a.Save()
	return saved.Pop
}

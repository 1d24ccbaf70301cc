package deflate

import "github.com/lemon4ksan/zipbox/arena"

// initialOutputCap is the first output buffer size pushed per
// Decompress call; it doubles from there as the block stream demands.
const initialOutputCap = 4096

// buffer is an append-only byte buffer whose storage lives in an
// Arena. Growing it pushes a new, larger allocation and copies the
// live prefix forward — the old allocation is left behind as arena
// garbage until the caller pops or clears, exactly like every other
// arena allocation; there is no way to shrink or free it individually.
type buffer struct {
	a    *arena.Arena
	data []byte
	n    int
}

func newBuffer(a *arena.Arena) (*buffer, error) {
	data, err := a.Push(initialOutputCap, 1)
	if err != nil {
		return nil, err
	}
	return &buffer{a: a, data: data}, nil
}

func (b *buffer) grow(extra int) error {
	need := b.n + extra
	if need <= len(b.data) {
		return nil
	}
	newCap := len(b.data) * 2
	for newCap < need {
		newCap *= 2
	}
	newData, err := b.a.Push(uintptr(newCap), 1)
	if err != nil {
		return err
	}
	copy(newData, b.data[:b.n])
	b.data = newData
	return nil
}

// reserve grows the buffer by n bytes and returns the fresh slice for
// the caller to fill directly, avoiding an intermediate copy for bulk
// writes like a stored block's raw payload.
func (b *buffer) reserve(n int) ([]byte, error) {
	if err := b.grow(n); err != nil {
		return nil, err
	}
	dst := b.data[b.n : b.n+n]
	b.n += n
	return dst, nil
}

func (b *buffer) appendByte(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}
	b.data[b.n] = c
	b.n++
	return nil
}

// copyBack appends length bytes read starting distance bytes behind
// the current end, one byte at a time. When length > distance this
// deliberately reads bytes it just wrote in this same call — a bulk
// copy of the pre-call slice would produce the wrong result for RLE
// runs, so the loop must stay byte-by-byte.
func (b *buffer) copyBack(distance, length int) error {
	if err := b.grow(length); err != nil {
		return err
	}
	start := b.n - distance
	for i := 0; i < length; i++ {
		b.data[b.n+i] = b.data[start+i]
	}
	b.n += length
	return nil
}

func (b *buffer) bytes() []byte { return b.data[:b.n] }

// Package huffman builds canonical Huffman decode tables from a vector
// of code lengths, per RFC 1951 §3.2.2, and decodes symbols bit by bit
// from a bitio.Reader.
package huffman

import (
	"errors"

	"github.com/lemon4ksan/zipbox/bitio"
)

// MaxSymbols is the largest code-length vector DEFLATE ever builds
// (288 literal/length codes).
const MaxSymbols = 288

// MaxBits is the longest canonical code RFC 1951 permits.
const MaxBits = 15

// ErrInvalidCode is returned when a code-length vector is malformed
// (a length over MaxBits, or no symbol with non-zero length) or when
// decoding consumes MaxBits bits without matching any code.
var ErrInvalidCode = errors.New("huffman: invalid code")

// entry is one canonical code, kept for the naive bit-by-bit matcher
// and for constructing the table-driven fast path.
type entry struct {
	code   uint16 // canonical code, MSB-first as RFC 1951 assigns it
	length uint8
	symbol uint16
}

// Decoder decodes symbols encoded with a canonical Huffman code built
// from a length vector.
type Decoder struct {
	entries []entry // sorted by (length, symbol) ascending, per RFC 1951

	// fast is a 2^fastBits-entry direct lookup table for the common
	// case where a symbol's code is fastBits bits or shorter: index
	// by the next fastBits bits (LSB-first as read off the wire,
	// reversed to MSB order internally) and get back the symbol and
	// its true length in one step. Entries for longer codes fall
	// through to the linear scan over entries.
	fast     [1 << fastBits]fastEntry
	minLen   uint8
	maxLen   uint8
}

const fastBits = 9

type fastEntry struct {
	symbol uint16
	length uint8 // 0 means "no fast match, fall through to entries"
}

// New builds a canonical Huffman decoder from lengths, where
// lengths[i] is the code length in bits for symbol i (0 means the
// symbol is unused). len(lengths) must not exceed MaxSymbols.
func New(lengths []int) (*Decoder, error) {
	if len(lengths) > MaxSymbols {
		return nil, ErrInvalidCode
	}

	var blCount [MaxBits + 1]int
	anyNonZero := false
	for _, l := range lengths {
		if l < 0 || l > MaxBits {
			return nil, ErrInvalidCode
		}
		if l > 0 {
			blCount[l]++
			anyNonZero = true
		}
	}
	if !anyNonZero {
		return nil, ErrInvalidCode
	}

	var nextCode [MaxBits + 1]int
	code := 0
	for bits := 1; bits <= MaxBits; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}

	d := &Decoder{minLen: MaxBits + 1}
	for symbol, l := range lengths {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		d.entries = append(d.entries, entry{code: uint16(c), length: uint8(l), symbol: uint16(symbol)})
		if uint8(l) < d.minLen {
			d.minLen = uint8(l)
		}
		if uint8(l) > d.maxLen {
			d.maxLen = uint8(l)
		}
	}

	// entries are already produced in ascending (length, symbol) order
	// since lengths is walked by symbol within each length pass... but
	// lengths is walked by symbol across all lengths in one pass, so
	// sort explicitly to guarantee the (length, symbol) ordering
	// spec.md's data model requires.
	sortEntries(d.entries)

	d.buildFastTable()
	return d, nil
}

func sortEntries(e []entry) {
	// Insertion sort: code tables are at most 288 entries, and this
	// runs once per block header.
	for i := 1; i < len(e); i++ {
		v := e[i]
		j := i - 1
		for j >= 0 && less(v, e[j]) {
			e[j+1] = e[j]
			j--
		}
		e[j+1] = v
	}
}

func less(a, b entry) bool {
	if a.length != b.length {
		return a.length < b.length
	}
	return a.symbol < b.symbol
}

func reverseBits(v uint16, n uint8) uint16 {
	var out uint16
	for i := uint8(0); i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

func (d *Decoder) buildFastTable() {
	for _, e := range d.entries {
		if e.length > fastBits {
			continue
		}
		// e.code is MSB-first; bits arrive LSB-first off the wire, so
		// the table is indexed by the bit-reversed code with the
		// remaining fastBits-e.length high bits ranging over every
		// possibility (that suffix is irrelevant to this code).
		lsbCode := reverseBits(e.code, e.length)
		step := uint16(1) << e.length
		for idx := lsbCode; idx < (1 << fastBits); idx += step {
			d.fast[idx] = fastEntry{symbol: e.symbol, length: e.length}
		}
	}
}

// Decode reads one symbol from r. It first probes the fast table with
// a non-consuming peek of fastBits bits; if all fastBits bits are
// available and the table holds a match for them, it discards exactly
// the matched code's length and returns. Otherwise (a table miss, or
// fewer than fastBits bits left in r) it falls back to the
// naive bit-by-bit matcher, which reads (and so consumes) one bit at a
// time, trying lengths 1..MaxBits until a stored (length, code)
// matches.
func (d *Decoder) Decode(r *bitio.Reader) (int, error) {
	peek, avail := r.PeekBits(fastBits)
	if avail == fastBits {
		fe := d.fast[peek]
		if fe.length != 0 {
			r.SkipBits(uint(fe.length))
			return int(fe.symbol), nil
		}
	}
	return d.decodeSlow(r)
}

// decodeSlow is the naive bit-by-bit matcher: it consumes one bit at a
// time from r and accumulates them MSB-first, exactly as RFC 1951
// assigns canonical codes, trying every length up to MaxBits. Running
// out of input and running out of candidate lengths are distinct
// failures (an exhausted reader vs. 15 bits that matched no code) and
// are returned as such, since callers classify them differently.
func (d *Decoder) decodeSlow(r *bitio.Reader) (int, error) {
	var accumulator uint32
	var length uint8
	for length < MaxBits {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		accumulator = (accumulator << 1) | bit
		length++
		if sym, ok := d.match(accumulator, length); ok {
			return sym, nil
		}
	}
	return 0, ErrInvalidCode
}

func (d *Decoder) match(code uint32, length uint8) (int, bool) {
	for _, e := range d.entries {
		if e.length == length && uint32(e.code) == code {
			return int(e.symbol), true
		}
	}
	return 0, false
}

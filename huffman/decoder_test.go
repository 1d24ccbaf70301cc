package huffman

import (
	"testing"

	"github.com/lemon4ksan/zipbox/bitio"
)

// fixedLiteralLengths builds RFC 1951 §3.2.6's fixed literal/length
// code lengths: 144 symbols of 8 bits, 112 of 9, 24 of 7, 8 of 8.
func fixedLiteralLengths() []int {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

func encodeMSBFirst(code uint32, length uint8) []bool {
	bits := make([]bool, length)
	for i := uint8(0); i < length; i++ {
		bits[i] = (code>>(length-1-i))&1 == 1
	}
	return bits
}

// packLSBFirst packs a sequence of bits, each already given in the
// order it must appear on the wire, into bytes LSB-first per RFC
// 1951 §3.1.1.
func packLSBFirst(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func TestNewRejectsEmptyLengths(t *testing.T) {
	if _, err := New(make([]int, 288)); err == nil {
		t.Fatal("New with all-zero lengths must fail")
	}
}

func TestNewRejectsOverlongCode(t *testing.T) {
	lengths := make([]int, 4)
	lengths[0] = MaxBits + 1
	if _, err := New(lengths); err == nil {
		t.Fatal("New with a length over MaxBits must fail")
	}
}

func TestDecodeFixedLiteralTable(t *testing.T) {
	lengths := fixedLiteralLengths()
	d, err := New(lengths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// RFC 1951 §3.2.6 canonical assignment for the fixed table:
	// symbols 0-143 get codes 0x30-0xBF (8 bits), 144-255 get
	// 0x190-0x1FF (9 bits), 256-279 get 0x0-0x17 (7 bits), 280-287
	// get 0xC0-0xC7 (8 bits).
	cases := []struct {
		symbol int
		code   uint32
		length uint8
	}{
		{0, 0x30, 8},
		{143, 0xBF, 8},
		{144, 0x190, 9},
		{255, 0x1FF, 9},
		{256, 0x0, 7},
		{279, 0x17, 7},
		{280, 0xC0, 8},
		{287, 0xC7, 8},
	}
	for _, c := range cases {
		bits := encodeMSBFirst(c.code, c.length)
		r := bitio.New(packLSBFirst(bits))
		got, err := d.Decode(r)
		if err != nil {
			t.Fatalf("symbol %d: Decode: %v", c.symbol, err)
		}
		if got != c.symbol {
			t.Fatalf("symbol %d: Decode = %d, want %d", c.symbol, got, c.symbol)
		}
	}
}

// TestDecodeConsumesExactlyMatchedLength verifies the fast path
// doesn't over-consume bits belonging to a following symbol: two
// short fixed-table codes packed back to back must both decode
// correctly and in order.
func TestDecodeConsumesExactlyMatchedLength(t *testing.T) {
	lengths := fixedLiteralLengths()
	d, err := New(lengths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// symbol 256 -> 7-bit code 0x0, symbol 0 -> 8-bit code 0x30,
	// symbol 279 -> 7-bit code 0x17, back to back with no padding.
	var bits []bool
	bits = append(bits, encodeMSBFirst(0x0, 7)...)
	bits = append(bits, encodeMSBFirst(0x30, 8)...)
	bits = append(bits, encodeMSBFirst(0x17, 7)...)

	r := bitio.New(packLSBFirst(bits))
	want := []int{256, 0, 279}
	for _, w := range want {
		got, err := d.Decode(r)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != w {
			t.Fatalf("Decode = %d, want %d", got, w)
		}
	}
}

// TestDecodeSingleSymbolTable exercises a degenerate one-symbol
// length vector, whose only valid canonical code is length 1, code 0.
func TestDecodeSingleSymbolTable(t *testing.T) {
	lengths := []int{1}
	d, err := New(lengths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := bitio.New(packLSBFirst(encodeMSBFirst(0, 1)))
	got, err := d.Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != 0 {
		t.Fatalf("Decode = %d, want 0", got)
	}
	if r.BitsRemaining() != 0 {
		t.Fatalf("single-bit code left %d bits unconsumed, want 0", r.BitsRemaining())
	}
}

// TestDecodeLongCodeBeyondFastTable exercises a length vector with a
// code longer than fastBits, forcing the naive matcher.
func TestDecodeLongCodeBeyondFastTable(t *testing.T) {
	lengths := make([]int, 4)
	lengths[0] = MaxBits
	lengths[1] = MaxBits
	lengths[2] = MaxBits
	lengths[3] = MaxBits
	d, err := New(lengths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for symbol, e := range d.entries {
		r := bitio.New(packLSBFirst(encodeMSBFirst(uint32(e.code), e.length)))
		got, err := d.Decode(r)
		if err != nil {
			t.Fatalf("symbol %d: Decode: %v", symbol, err)
		}
		if got != int(e.symbol) {
			t.Fatalf("Decode = %d, want %d", got, e.symbol)
		}
	}
}

func TestDecodeTruncatedInputFails(t *testing.T) {
	lengths := fixedLiteralLengths()
	d, err := New(lengths)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Only 3 of the 9 bits needed for symbol 144's code.
	bits := encodeMSBFirst(0x190, 9)[:3]
	r := bitio.New(packLSBFirst(bits))
	if _, err := d.Decode(r); err == nil {
		t.Fatal("Decode on truncated input must fail")
	}
}

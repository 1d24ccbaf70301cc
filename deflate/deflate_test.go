package deflate

import (
	"bytes"
	"testing"

	kflate "github.com/klauspost/compress/flate"

	"github.com/lemon4ksan/zipbox/arena"
)

func newTestArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(1<<20, 64<<10, "deflate-test")
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	t.Cleanup(func() { a.Release() })
	return a
}

// compressRaw produces a raw (headerless) DEFLATE stream using
// klauspost/compress as an independent reference encoder, so these
// tests exercise the decoder against real-world encoder output rather
// than only its own hand-built fixtures.
func compressRaw(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := kflate.NewWriter(&buf, kflate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompressAgainstKlauspostOracle(t *testing.T) {
	cases := map[string][]byte{
		"empty":       {},
		"single-byte": []byte("A"),
		"text":        []byte("The quick brown fox jumps over the lazy dog. The quick brown fox jumps again and again."),
		"repeats":     bytes.Repeat([]byte("AAAAAAAAAA"), 50),
		"binary":      {0x00, 0xFF, 0x01, 0xFE, 0x02, 0xFD, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			compressed := compressRaw(t, data)
			a := newTestArena(t)
			got, err := Decompress(a, compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("Decompress mismatch: got %d bytes, want %d bytes", len(got), len(data))
			}
		})
	}
}

func TestDecompressStoredBlockLenZero(t *testing.T) {
	a := newTestArena(t)
	// BFINAL=1, BTYPE=00, align, LEN=0, NLEN=0xFFFF.
	data := []byte{0x01, 0x00, 0x00, 0xFF, 0xFF}
	got, err := Decompress(a, data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty output, got %d bytes", len(got))
	}
}

func TestDecompressStoredBlockRoundTrip(t *testing.T) {
	a := newTestArena(t)
	// BFINAL=1, BTYPE=00, align, LEN=5, NLEN=~5, payload "hello".
	data := []byte{0x01, 0x05, 0x00, 0xFA, 0xFF, 'h', 'e', 'l', 'l', 'o'}
	got, err := Decompress(a, data)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Decompress = %q, want %q", got, "hello")
	}
}

func TestDecompressRejectsStoredLengthMismatch(t *testing.T) {
	a := newTestArena(t)
	// LEN=5, NLEN=5 instead of ~5: invalid.
	data := []byte{0x01, 0x05, 0x00, 0x05, 0x00}
	if _, err := Decompress(a, data); err == nil {
		t.Fatal("Decompress with LEN != ~NLEN must fail")
	}
}

func TestDecompressRejectsReservedBlockType(t *testing.T) {
	w := &bitWriter{}
	w.writeValueBits(1, 1) // BFINAL
	w.writeValueBits(3, 2) // BTYPE=11, reserved
	a := newTestArena(t)
	if _, err := Decompress(a, w.bytes()); err == nil {
		t.Fatal("Decompress with reserved BTYPE must fail")
	}
}

// TestDecompressFixedBackReferenceRun hand-assembles a fixed-Huffman
// block for literal 'A' followed by a length=5, distance=1
// back-reference, which must expand to a run of six 'A's.
func TestDecompressFixedBackReferenceRun(t *testing.T) {
	w := &bitWriter{}
	w.writeValueBits(1, 1) // BFINAL
	w.writeValueBits(1, 2) // BTYPE=01, fixed
	w.writeHuffmanCode(0x71, 8) // literal 'A' (symbol 65, fixed code 0x30+65)
	w.writeHuffmanCode(0x03, 7) // length symbol 259 -> base length 5, no extra bits
	w.writeHuffmanCode(0x00, 5) // distance symbol 0 -> base distance 1, no extra bits
	w.writeHuffmanCode(0x00, 7) // end-of-block symbol 256

	a := newTestArena(t)
	got, err := Decompress(a, w.bytes())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != "AAAAAA" {
		t.Fatalf("Decompress = %q, want %q", got, "AAAAAA")
	}
}

func TestDecompressRejectsDistanceBeyondOutput(t *testing.T) {
	w := &bitWriter{}
	w.writeValueBits(1, 1) // BFINAL
	w.writeValueBits(1, 2) // BTYPE=01, fixed
	w.writeHuffmanCode(0x71, 8) // literal 'A'
	w.writeHuffmanCode(0x03, 7) // length symbol 259, length 5
	w.writeHuffmanCode(0x01, 5) // distance symbol 1 -> base distance 2, exceeds 1-byte output
	w.writeHuffmanCode(0x00, 7) // end-of-block

	a := newTestArena(t)
	if _, err := Decompress(a, w.bytes()); err == nil {
		t.Fatal("Decompress with distance beyond output must fail")
	}
}

// bitWriter assembles a DEFLATE bitstream bit by bit, distinguishing
// RFC 1951's two packing conventions: multi-bit value fields
// (BFINAL/BTYPE/extra bits/LEN) are LSB-first, while Huffman codes are
// packed MSB-first, matching how huffman.Decoder accumulates them.
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) writeValueBits(v uint32, n int) {
	for i := 0; i < n; i++ {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) writeHuffmanCode(code uint32, length int) {
	for i := length - 1; i >= 0; i-- {
		w.bits = append(w.bits, (code>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

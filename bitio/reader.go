// Package bitio implements an LSB-first bit reader over a fixed byte
// slice, the primitive DEFLATE's block headers and Huffman codes are
// built on (RFC 1951 §3.1.1: "Data elements are packed starting with
// the least-significant bit of the data element").
package bitio

import (
	"encoding/binary"
	"errors"
)

// ErrUnexpectedEOF is returned when a read would consume bits or bytes
// past the end of the underlying slice.
var ErrUnexpectedEOF = errors.New("bitio: unexpected end of input")

// Reader reads bits LSB-first from a fixed byte slice.
type Reader struct {
	data    []byte
	bytePos int
	bitPos  uint // 0..7, position of the next bit to consume within data[bytePos]
}

// New wraps data for bit-level reading starting at its first byte.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// BitsRemaining returns the number of bits left in the underlying slice.
func (r *Reader) BitsRemaining() int64 {
	remaining := int64(len(r.data)-r.bytePos)*8 - int64(r.bitPos)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BytePos returns the current byte offset; it names the next unread
// byte only when the reader is byte-aligned (see AlignToByte).
func (r *Reader) BytePos() int { return r.bytePos }

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint32, error) {
	return r.ReadBits(1)
}

// ReadBits reads n bits (1 <= n <= 32) and returns them right-justified,
// with the first-consumed bit at position 0 of the result.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n < 1 || n > 32 {
		panic("bitio: ReadBits n out of range")
	}
	var result uint32
	var got uint
	for got < n {
		if r.bytePos >= len(r.data) {
			return 0, ErrUnexpectedEOF
		}
		bit := (r.data[r.bytePos] >> r.bitPos) & 1
		result |= uint32(bit) << got
		got++
		r.bitPos++
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return result, nil
}

// PeekBits returns up to n bits (1 <= n <= 32) without consuming them,
// right-justified with the first bit at position 0 exactly like
// ReadBits. If fewer than n bits remain, it returns whatever is
// available, right-justified the same way, along with that count.
func (r *Reader) PeekBits(n uint) (value uint32, available uint) {
	if n < 1 || n > 32 {
		panic("bitio: PeekBits n out of range")
	}
	bytePos, bitPos := r.bytePos, r.bitPos
	for available < n && bytePos < len(r.data) {
		bit := (r.data[bytePos] >> bitPos) & 1
		value |= uint32(bit) << available
		available++
		bitPos++
		if bitPos == 8 {
			bitPos = 0
			bytePos++
		}
	}
	return value, available
}

// SkipBits advances the reader by n bits already known to be available
// (typically via a prior PeekBits call). Skipping past the end panics;
// callers must bound n by a prior PeekBits' available count.
func (r *Reader) SkipBits(n uint) {
	total := r.bitPos + n
	r.bytePos += int(total / 8)
	r.bitPos = total % 8
	if r.bytePos > len(r.data) || (r.bytePos == len(r.data) && r.bitPos != 0) {
		panic("bitio: SkipBits past end of input")
	}
}

// AlignToByte discards any partially consumed byte, advancing to the
// start of the next whole byte. A no-op if already byte-aligned.
func (r *Reader) AlignToByte() {
	if r.bitPos != 0 {
		r.bitPos = 0
		r.bytePos++
	}
}

// ReadBytes aligns to a byte boundary, then copies len(dst) raw bytes.
func (r *Reader) ReadBytes(dst []byte) error {
	r.AlignToByte()
	if r.bytePos+len(dst) > len(r.data) {
		return ErrUnexpectedEOF
	}
	copy(dst, r.data[r.bytePos:r.bytePos+len(dst)])
	r.bytePos += len(dst)
	return nil
}

// ReadUint16LE aligns to a byte boundary, then reads a little-endian u16.
func (r *Reader) ReadUint16LE() (uint16, error) {
	var buf [2]byte
	if err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadUint32LE aligns to a byte boundary, then reads a little-endian u32.
func (r *Reader) ReadUint32LE() (uint32, error) {
	var buf [4]byte
	if err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

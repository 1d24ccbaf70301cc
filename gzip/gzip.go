// Package gzip decodes the RFC 1952 GZIP envelope: the fixed header,
// its optional flag-indicated sections, a DEFLATE stream, and the
// trailing CRC-32/ISIZE integrity check.
package gzip

import (
	"encoding/binary"
	"errors"

	"github.com/lemon4ksan/zipbox"
	"github.com/lemon4ksan/zipbox/arena"
	"github.com/lemon4ksan/zipbox/bitio"
	"github.com/lemon4ksan/zipbox/crc32table"
	"github.com/lemon4ksan/zipbox/deflate"
	"github.com/lemon4ksan/zipbox/internal/headers"
)

var (
	ErrUnterminatedString = errors.New("gzip: unterminated header string")
	ErrCRCMismatch        = errors.New("gzip: crc-32 mismatch")
	ErrSizeMismatch       = errors.New("gzip: isize mismatch")
)

// Decompress decodes a single GZIP member and verifies its trailer.
// src must contain at least one full member; any bytes after the
// trailer are ignored (see DecompressAll to walk concatenated
// members).
func Decompress(a *arena.Arena, src []byte) ([]byte, error) {
	out, _, err := decompressMember(a, src)
	return out, err
}

// DecompressAll decodes every concatenated GZIP member in src (RFC
// 1952 permits multiple members back to back, as `gzip -c a b` would
// produce) and returns their outputs joined in order.
func DecompressAll(a *arena.Arena, src []byte) ([]byte, error) {
	var all []byte
	offset := 0
	for offset < len(src) {
		out, consumed, err := decompressMember(a, src[offset:])
		if err != nil {
			return nil, err
		}
		all = append(all, out...)
		if consumed <= 0 {
			break
		}
		offset += consumed
	}
	return all, nil
}

// decompressMember decodes the member starting at src[0] and returns
// its output plus the number of bytes of src the member occupied
// (header through trailer), so callers can locate any next member.
func decompressMember(a *arena.Arena, src []byte) ([]byte, int, error) {
	hdr, err := headers.ReadGzipHeader(src, 0)
	if err != nil {
		return nil, 0, zipbox.Wrap(zipbox.InvalidMagic, "", err)
	}
	if hdr.Method != headers.GzipMethodDeflate {
		return nil, 0, zipbox.Wrap(zipbox.UnsupportedMethod, "", errors.New("gzip: unsupported compression method"))
	}

	offset := headers.GzipHeaderSize

	if hdr.Flags&headers.FlagExtra != 0 {
		if offset+2 > len(src) {
			return nil, 0, zipbox.Wrap(zipbox.InvalidHeader, "", headers.ErrTruncated)
		}
		xlen := int(binary.LittleEndian.Uint16(src[offset : offset+2]))
		offset += 2 + xlen
		if offset > len(src) {
			return nil, 0, zipbox.Wrap(zipbox.InvalidHeader, "", headers.ErrTruncated)
		}
	}
	if hdr.Flags&headers.FlagName != 0 {
		next, err := skipCString(src, offset)
		if err != nil {
			return nil, 0, zipbox.Wrap(zipbox.InvalidHeader, "", err)
		}
		offset = next
	}
	if hdr.Flags&headers.FlagComment != 0 {
		next, err := skipCString(src, offset)
		if err != nil {
			return nil, 0, zipbox.Wrap(zipbox.InvalidHeader, "", err)
		}
		offset = next
	}
	if hdr.Flags&headers.FlagHCRC != 0 {
		offset += 2
		if offset > len(src) {
			return nil, 0, zipbox.Wrap(zipbox.InvalidHeader, "", headers.ErrTruncated)
		}
	}

	r := bitio.New(src[offset:])
	output, err := deflate.DecompressReader(a, r)
	if err != nil {
		return nil, 0, err
	}
	r.AlignToByte()
	trailerStart := offset + r.BytePos()

	if trailerStart+headers.GzipTrailerSize > len(src) {
		return nil, 0, zipbox.Wrap(zipbox.UnexpectedEOF, "", headers.ErrTruncated)
	}
	wantCRC := binary.LittleEndian.Uint32(src[trailerStart : trailerStart+4])
	wantSize := binary.LittleEndian.Uint32(src[trailerStart+4 : trailerStart+8])

	if got := crc32table.Checksum(output); got != wantCRC {
		return nil, 0, zipbox.Wrap(zipbox.InvalidChecksum, "", ErrCRCMismatch)
	}
	if got := uint32(len(output)); got != wantSize {
		return nil, 0, zipbox.Wrap(zipbox.InvalidSize, "", ErrSizeMismatch)
	}

	consumed := trailerStart + headers.GzipTrailerSize
	return output, consumed, nil
}

// skipCString returns the offset just past the first NUL byte at or
// after data[from], per RFC 1952's FNAME/FCOMMENT encoding (latin-1,
// NUL-terminated).
func skipCString(data []byte, from int) (int, error) {
	for i := from; i < len(data); i++ {
		if data[i] == 0 {
			return i + 1, nil
		}
	}
	return 0, ErrUnterminatedString
}

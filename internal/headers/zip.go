// Package headers holds the wire-format constants and fixed-offset
// field layouts for the ZIP and GZIP containers, factored out of the
// readers that walk them so the byte offsets RFC 1952 and the ZIP
// APPNOTE fix in place live in one spot.
package headers

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned whenever a fixed-offset read would run
// past the end of the supplied slice.
var ErrTruncated = errors.New("headers: truncated record")

// Each ZIP record type is identified by a four-byte little-endian
// signature beginning with the marker "PK".
const (
	LocalFileHeaderSignature  uint32 = 0x04034b50
	CentralDirectorySignature uint32 = 0x02014b50
	EndOfCentralDirSignature  uint32 = 0x06054b50
)

// LocalFileHeaderSize is the fixed portion of a local file header,
// before the variable-length file name and extra field.
const LocalFileHeaderSize = 30

// LocalFileHeader is the subset of the local header a reader needs:
// just enough to locate where the entry's payload begins. Compression
// method, sizes, and CRC-32 are authoritative in the central
// directory and are not re-read here.
type LocalFileHeader struct {
	FilenameLength   uint16
	ExtraFieldLength uint16
}

// ReadLocalFileHeader parses the fixed 30-byte local header at
// data[offset:] and returns it along with the offset of the entry's
// compressed payload.
func ReadLocalFileHeader(data []byte, offset int) (LocalFileHeader, int, error) {
	if offset < 0 || offset+LocalFileHeaderSize > len(data) {
		return LocalFileHeader{}, 0, ErrTruncated
	}
	buf := data[offset : offset+LocalFileHeaderSize]
	if binary.LittleEndian.Uint32(buf[0:4]) != LocalFileHeaderSignature {
		return LocalFileHeader{}, 0, errors.New("headers: bad local file header signature")
	}
	h := LocalFileHeader{
		FilenameLength:   binary.LittleEndian.Uint16(buf[26:28]),
		ExtraFieldLength: binary.LittleEndian.Uint16(buf[28:30]),
	}
	payloadOffset := offset + LocalFileHeaderSize + int(h.FilenameLength) + int(h.ExtraFieldLength)
	return h, payloadOffset, nil
}

// CentralDirectoryFixedSize is the fixed portion of a central
// directory entry, before its variable-length name/extra/comment.
const CentralDirectoryFixedSize = 46

// CentralDirectoryEntry is the fixed-offset subset of a central
// directory record a reader needs to extract an entry.
type CentralDirectoryEntry struct {
	CompressionMethod uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FilenameLength    uint16
	ExtraFieldLength  uint16
	CommentLength     uint16
	LocalHeaderOffset uint32
	Filename          string
}

// ReadCentralDirectoryEntry parses the central directory record at
// data[offset:] and returns it along with the offset of the next
// record in the central directory.
func ReadCentralDirectoryEntry(data []byte, offset int) (CentralDirectoryEntry, int, error) {
	if offset < 0 || offset+CentralDirectoryFixedSize > len(data) {
		return CentralDirectoryEntry{}, 0, ErrTruncated
	}
	buf := data[offset : offset+CentralDirectoryFixedSize]
	if binary.LittleEndian.Uint32(buf[0:4]) != CentralDirectorySignature {
		return CentralDirectoryEntry{}, 0, errors.New("headers: bad central directory signature")
	}
	e := CentralDirectoryEntry{
		CompressionMethod: binary.LittleEndian.Uint16(buf[10:12]),
		CRC32:             binary.LittleEndian.Uint32(buf[16:20]),
		CompressedSize:    binary.LittleEndian.Uint32(buf[20:24]),
		UncompressedSize:  binary.LittleEndian.Uint32(buf[24:28]),
		FilenameLength:    binary.LittleEndian.Uint16(buf[28:30]),
		ExtraFieldLength:  binary.LittleEndian.Uint16(buf[30:32]),
		CommentLength:     binary.LittleEndian.Uint16(buf[32:34]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(buf[42:46]),
	}

	nameStart := offset + CentralDirectoryFixedSize
	nameEnd := nameStart + int(e.FilenameLength)
	if nameEnd > len(data) {
		return CentralDirectoryEntry{}, 0, ErrTruncated
	}
	e.Filename = string(data[nameStart:nameEnd])

	next := nameEnd + int(e.ExtraFieldLength) + int(e.CommentLength)
	if next > len(data) {
		return CentralDirectoryEntry{}, 0, ErrTruncated
	}
	return e, next, nil
}

// EndOfCentralDirSize is the fixed portion of the EOCD record,
// before its variable-length comment.
const EndOfCentralDirSize = 22

// MaxEOCDSearchWindow bounds how far from the tail of an archive the
// EOCD signature is searched for: the fixed record plus the largest
// possible comment.
const MaxEOCDSearchWindow = EndOfCentralDirSize + 65535

// EndOfCentralDirectory is the fixed-offset subset of the EOCD record
// a single-disk reader needs.
type EndOfCentralDirectory struct {
	TotalEntries     uint16
	CentralDirSize   uint32
	CentralDirOffset uint32
	CommentLength    uint16
}

// ReadEndOfCentralDir parses the EOCD record at data[offset:].
func ReadEndOfCentralDir(data []byte, offset int) (EndOfCentralDirectory, error) {
	if offset < 0 || offset+EndOfCentralDirSize > len(data) {
		return EndOfCentralDirectory{}, ErrTruncated
	}
	buf := data[offset : offset+EndOfCentralDirSize]
	if binary.LittleEndian.Uint32(buf[0:4]) != EndOfCentralDirSignature {
		return EndOfCentralDirectory{}, errors.New("headers: bad end of central directory signature")
	}
	return EndOfCentralDirectory{
		TotalEntries:     binary.LittleEndian.Uint16(buf[10:12]),
		CentralDirSize:   binary.LittleEndian.Uint32(buf[12:16]),
		CentralDirOffset: binary.LittleEndian.Uint32(buf[16:20]),
		CommentLength:    binary.LittleEndian.Uint16(buf[20:22]),
	}, nil
}

// FindEndOfCentralDir searches for the EOCD signature within the last
// MaxEOCDSearchWindow bytes of archive, scanning backward so a
// signature that happens to occur inside a comment further out is
// preferred over one buried in file data (archives are read
// tail-first per the ZIP format's design).
func FindEndOfCentralDir(archive []byte) (int, error) {
	windowStart := 0
	if len(archive) > MaxEOCDSearchWindow {
		windowStart = len(archive) - MaxEOCDSearchWindow
	}
	window := archive[windowStart:]

	var sig [4]byte
	binary.LittleEndian.PutUint32(sig[:], EndOfCentralDirSignature)

	for i := len(window) - EndOfCentralDirSize; i >= 0; i-- {
		if window[i] == sig[0] && window[i+1] == sig[1] && window[i+2] == sig[2] && window[i+3] == sig[3] {
			return windowStart + i, nil
		}
	}
	return 0, errors.New("headers: end of central directory record not found")
}

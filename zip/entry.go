package zip

import "strings"

// Entry describes one file or directory record parsed from a ZIP
// archive's central directory. Its name is copied into arena-owned
// bytes when the Reader that produced it is constructed, so it
// remains valid for as long as that arena does.
type Entry struct {
	name              []byte
	compressionMethod uint16
	crc32             uint32
	compressedSize    uint32
	uncompressedSize  uint32
	localHeaderOffset uint32
}

// Name returns the entry's stored path, forward-slash separated,
// exactly as recorded in the archive.
func (e *Entry) Name() string { return string(e.name) }

// IsDir reports whether the entry is a directory record: the ZIP
// format has no separate directory flag, so this is inferred, as it
// must be, from a trailing slash in the stored name.
func (e *Entry) IsDir() bool { return strings.HasSuffix(e.Name(), "/") }

// UncompressedSize returns the size the central directory recorded
// for the entry's decompressed content.
func (e *Entry) UncompressedSize() uint32 { return e.uncompressedSize }

// CompressionMethod returns the entry's stored compression method
// (0 for STORED, 8 for DEFLATE; any other value is rejected on
// extraction).
func (e *Entry) CompressionMethod() uint16 { return e.compressionMethod }

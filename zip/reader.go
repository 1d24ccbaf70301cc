// Package zip reads ZIP archives entirely resident in memory: it
// locates the End-of-Central-Directory record, walks the central
// directory into a vector of entries, and extracts individual entries
// by routing their payload through the deflate/crc32table packages.
package zip

import (
	"log"
	"os"

	"github.com/lemon4ksan/zipbox"
	"github.com/lemon4ksan/zipbox/arena"
	"github.com/lemon4ksan/zipbox/internal/headers"
)

var logger = log.New(os.Stderr, "", 0)

// Reader holds a parsed archive's central directory. archive must
// remain valid and unmodified for the Reader's lifetime; entry names
// are copied into the arena, but entry payloads are read directly out
// of archive on each Extract call.
type Reader struct {
	archive []byte
	a       *arena.Arena
	entries []*Entry
}

// NewReader locates the archive's EOCD record and walks its central
// directory, copying each entry's name into a. It does not touch any
// entry's payload; call Extract for that.
func NewReader(a *arena.Arena, archive []byte) (*Reader, error) {
	eocdOffset, err := headers.FindEndOfCentralDir(archive)
	if err != nil {
		return nil, zipbox.Wrap(zipbox.InvalidMagic, "", err)
	}
	eocd, err := headers.ReadEndOfCentralDir(archive, eocdOffset)
	if err != nil {
		return nil, zipbox.Wrap(zipbox.InvalidMagic, "", err)
	}

	r := &Reader{archive: archive, a: a}
	offset := int(eocd.CentralDirOffset)
	for i := 0; i < int(eocd.TotalEntries); i++ {
		cd, next, err := headers.ReadCentralDirectoryEntry(archive, offset)
		if err != nil {
			return nil, zipbox.Wrap(zipbox.InvalidMagic, "", err)
		}

		nameBuf, err := a.Push(uintptr(len(cd.Filename)), 1)
		if err != nil {
			return nil, zipbox.Wrap(zipbox.OutOfMemory, cd.Filename, err)
		}
		copy(nameBuf, cd.Filename)

		r.entries = append(r.entries, &Entry{
			name:              nameBuf,
			compressionMethod: cd.CompressionMethod,
			crc32:             cd.CRC32,
			compressedSize:    cd.CompressedSize,
			uncompressedSize:  cd.UncompressedSize,
			localHeaderOffset: cd.LocalHeaderOffset,
		})
		offset = next
	}
	return r, nil
}

// Entries returns every entry the central directory listed, in
// on-disk order.
func (r *Reader) Entries() []*Entry { return r.entries }

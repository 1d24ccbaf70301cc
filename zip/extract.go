package zip

import (
	"errors"

	"github.com/lemon4ksan/zipbox"
	"github.com/lemon4ksan/zipbox/crc32table"
	"github.com/lemon4ksan/zipbox/deflate"
	"github.com/lemon4ksan/zipbox/internal/headers"
)

const (
	methodStored  = 0
	methodDeflate = 8
)

var ErrChecksum = errors.New("zip: crc-32 mismatch")

// Extract decompresses e's payload into r's arena, verifying its
// CRC-32 against the central directory's stored value. A mismatched
// uncompressed size is logged as a warning rather than failing the
// call, preserving the source archiver's own lenient behavior; only a
// CRC-32 mismatch is a hard error.
func (r *Reader) Extract(e *Entry) ([]byte, error) {
	_, payloadOffset, err := headers.ReadLocalFileHeader(r.archive, int(e.localHeaderOffset))
	if err != nil {
		return nil, zipbox.Wrap(zipbox.InvalidMagic, e.Name(), err)
	}
	if payloadOffset < 0 || payloadOffset+int(e.compressedSize) > len(r.archive) {
		return nil, zipbox.Wrap(zipbox.InvalidMagic, e.Name(), headers.ErrTruncated)
	}
	payload := r.archive[payloadOffset : payloadOffset+int(e.compressedSize)]

	var output []byte
	switch e.compressionMethod {
	case methodStored:
		buf, err := r.a.Push(uintptr(len(payload)), 1)
		if err != nil {
			return nil, zipbox.Wrap(zipbox.OutOfMemory, e.Name(), err)
		}
		copy(buf, payload)
		output = buf
	case methodDeflate:
		output, err = deflate.Decompress(r.a, payload)
		if err != nil {
			return nil, zipbox.WithScope(err, e.Name())
		}
	default:
		return nil, zipbox.Wrap(zipbox.UnsupportedMethod, e.Name(), errors.New("zip: unsupported compression method"))
	}

	if got := crc32table.Checksum(output); got != e.crc32 {
		return nil, zipbox.Wrap(zipbox.InvalidChecksum, e.Name(), ErrChecksum)
	}
	if got := uint32(len(output)); got != e.uncompressedSize {
		logger.Printf("[warn] (%s): uncompressed size mismatch: got %d want %d", e.Name(), got, e.uncompressedSize)
	}
	return output, nil
}

// ExtractAll decompresses every entry in r, in central-directory
// order, stopping at the first error.
func (r *Reader) ExtractAll() ([][]byte, error) {
	outputs := make([][]byte, len(r.entries))
	for i, e := range r.entries {
		out, err := r.Extract(e)
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

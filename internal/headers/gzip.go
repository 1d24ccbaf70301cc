package headers

import "errors"

// GzipHeaderSize is the fixed portion of a GZIP member header, RFC
// 1952 §2.3.1, before any flag-indicated variable sections.
const GzipHeaderSize = 10

// GzipMagic0/GzipMagic1 are the two fixed magic bytes every member
// begins with.
const (
	GzipMagic0 = 0x1F
	GzipMagic1 = 0x8B
)

// GzipMethodDeflate is the only compression method RFC 1952 assigns
// a meaning to that this reader supports.
const GzipMethodDeflate = 8

// Flag bits of the GZIP header's FLG byte (RFC 1952 §2.3.1).
const (
	FlagText    = 1 << 0
	FlagHCRC    = 1 << 1
	FlagExtra   = 1 << 2
	FlagName    = 1 << 3
	FlagComment = 1 << 4
)

// GzipHeader is the fixed 10-byte prefix of a GZIP member.
type GzipHeader struct {
	Method uint8
	Flags  uint8
	MTime  uint32
	XFL    uint8
	OS     uint8
}

// ReadGzipHeader parses the fixed header at data[offset:], checking
// the magic bytes and compression method.
func ReadGzipHeader(data []byte, offset int) (GzipHeader, error) {
	if offset < 0 || offset+GzipHeaderSize > len(data) {
		return GzipHeader{}, errors.New("headers: truncated gzip header")
	}
	buf := data[offset : offset+GzipHeaderSize]
	if buf[0] != GzipMagic0 || buf[1] != GzipMagic1 {
		return GzipHeader{}, errors.New("headers: bad gzip magic")
	}
	return GzipHeader{
		Method: buf[2],
		Flags:  buf[3],
		MTime:  uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24,
		XFL:    buf[8],
		OS:     buf[9],
	}, nil
}

// GzipTrailerSize is the fixed 8-byte CRC-32 + ISIZE trailer RFC
// 1952 §2.3.1 appends after the compressed stream.
const GzipTrailerSize = 8

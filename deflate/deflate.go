// Package deflate implements RFC 1951 DEFLATE decompression: stored,
// fixed-Huffman, and dynamic-Huffman blocks over a bitio.Reader, with
// length-distance back-reference resolution.
package deflate

import (
	"errors"
	"sync"

	"github.com/lemon4ksan/zipbox"
	"github.com/lemon4ksan/zipbox/arena"
	"github.com/lemon4ksan/zipbox/bitio"
	"github.com/lemon4ksan/zipbox/huffman"
)

var (
	ErrReservedBlockType    = errors.New("deflate: reserved block type")
	ErrStoredLengthMismatch = errors.New("deflate: stored block LEN != ~NLEN")
	ErrNoPreviousLength     = errors.New("deflate: repeat code with no previous length")
	ErrInvalidSymbol        = errors.New("deflate: invalid length/literal symbol")
	ErrInvalidDistSymbol    = errors.New("deflate: distance symbol out of range")
	ErrDistanceTooFar       = errors.New("deflate: distance exceeds current output length")
)

var fixedTables = sync.OnceValues(func() (*huffman.Decoder, *huffman.Decoder) {
	lit, err := huffman.New(fixedLiteralLengths())
	if err != nil {
		panic("deflate: fixed literal table: " + err.Error())
	}
	dist, err := huffman.New(fixedDistanceLengths())
	if err != nil {
		panic("deflate: fixed distance table: " + err.Error())
	}
	return lit, dist
})

// Decompress inflates a raw DEFLATE stream (no GZIP or ZIP envelope)
// into a buffer allocated from a. The returned slice is valid until
// the caller pops or clears past the position a was at when
// Decompress was called.
func Decompress(a *arena.Arena, src []byte) ([]byte, error) {
	return DecompressReader(a, bitio.New(src))
}

// DecompressReader inflates a raw DEFLATE stream from an existing
// bitio.Reader, leaving the reader positioned exactly at the end of
// the DEFLATE bit stream. This is the primitive the GZIP envelope
// needs: it must find the trailer immediately after the compressed
// data without knowing its length in advance.
func DecompressReader(a *arena.Arena, r *bitio.Reader) ([]byte, error) {
	out, err := newBuffer(a)
	if err != nil {
		return nil, zipbox.Wrap(zipbox.OutOfMemory, "", err)
	}

	for {
		bfinal, err := r.ReadBit()
		if err != nil {
			return nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
		}

		switch btype {
		case 0:
			if err := decodeStored(r, out); err != nil {
				return nil, err
			}
		case 1:
			lit, dist := fixedTables()
			if err := decodeBlockBody(r, out, lit, dist); err != nil {
				return nil, err
			}
		case 2:
			lit, dist, err := readDynamicTables(r)
			if err != nil {
				return nil, err
			}
			if err := decodeBlockBody(r, out, lit, dist); err != nil {
				return nil, err
			}
		default:
			return nil, zipbox.Wrap(zipbox.InvalidBlock, "", ErrReservedBlockType)
		}

		if bfinal == 1 {
			break
		}
	}
	return out.bytes(), nil
}

func decodeStored(r *bitio.Reader, out *buffer) error {
	r.AlignToByte()
	length, err := r.ReadUint16LE()
	if err != nil {
		return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	nlength, err := r.ReadUint16LE()
	if err != nil {
		return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	if length != ^nlength {
		return zipbox.Wrap(zipbox.InvalidBlock, "", ErrStoredLengthMismatch)
	}
	if length == 0 {
		return nil
	}
	dst, err := out.reserve(int(length))
	if err != nil {
		return zipbox.Wrap(zipbox.OutOfMemory, "", err)
	}
	if err := r.ReadBytes(dst); err != nil {
		return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	return nil
}

// wrapDecodeErr classifies a huffman.Decoder.Decode failure: running
// out of input (bitio.ErrUnexpectedEOF) and 15 bits matching no code
// (huffman.ErrInvalidCode) are distinct spec kinds, not the same fault
// reported two ways.
func wrapDecodeErr(err error) error {
	if errors.Is(err, bitio.ErrUnexpectedEOF) {
		return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	return zipbox.Wrap(zipbox.InvalidHuffmanCode, "", err)
}

// decodeBlockBody decodes literal/length and distance symbols until
// the end-of-block symbol (256) is seen.
func decodeBlockBody(r *bitio.Reader, out *buffer, lit, dist *huffman.Decoder) error {
	for {
		sym, err := lit.Decode(r)
		if err != nil {
			return wrapDecodeErr(err)
		}

		switch {
		case sym < 256:
			if err := out.appendByte(byte(sym)); err != nil {
				return zipbox.Wrap(zipbox.OutOfMemory, "", err)
			}
		case sym == 256:
			return nil
		case sym <= 285:
			idx := sym - 257
			length := lengthBase[idx]
			if n := lengthExtra[idx]; n > 0 {
				extra, err := r.ReadBits(n)
				if err != nil {
					return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
				}
				length += int(extra)
			}

			dsym, err := dist.Decode(r)
			if err != nil {
				return wrapDecodeErr(err)
			}
			if dsym < 0 || dsym > 29 {
				return zipbox.Wrap(zipbox.InvalidDistance, "", ErrInvalidDistSymbol)
			}
			distance := distBase[dsym]
			if n := distExtra[dsym]; n > 0 {
				extra, err := r.ReadBits(n)
				if err != nil {
					return zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
				}
				distance += int(extra)
			}
			if distance > out.n {
				return zipbox.Wrap(zipbox.InvalidDistance, "", ErrDistanceTooFar)
			}
			if err := out.copyBack(distance, length); err != nil {
				return zipbox.Wrap(zipbox.OutOfMemory, "", err)
			}
		default:
			return zipbox.Wrap(zipbox.InvalidHuffmanCode, "", ErrInvalidSymbol)
		}
	}
}

// readDynamicTables reads a BTYPE=2 block header per RFC 1951 §3.2.7
// and builds the literal/length and distance decoders it describes.
func readDynamicTables(r *bitio.Reader) (*huffman.Decoder, *huffman.Decoder, error) {
	hlitBits, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	hdistBits, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	hclenBits, err := r.ReadBits(4)
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	var clLengths [19]int
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clDecoder, err := huffman.New(clLengths[:])
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.InvalidHuffmanCode, "", err)
	}

	total := hlit + hdist
	lengths := make([]int, 0, total)
	prev := 0
	for len(lengths) < total {
		sym, err := clDecoder.Decode(r)
		if err != nil {
			return nil, nil, wrapDecodeErr(err)
		}
		switch {
		case sym < 16:
			lengths = append(lengths, sym)
			prev = sym
		case sym == 16:
			if len(lengths) == 0 {
				return nil, nil, zipbox.Wrap(zipbox.InvalidBlock, "", ErrNoPreviousLength)
			}
			n, err := r.ReadBits(2)
			if err != nil {
				return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
			}
			appendRun(&lengths, prev, 3+int(n), total)
		case sym == 17:
			n, err := r.ReadBits(3)
			if err != nil {
				return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
			}
			appendRun(&lengths, 0, 3+int(n), total)
			prev = 0
		case sym == 18:
			n, err := r.ReadBits(7)
			if err != nil {
				return nil, nil, zipbox.Wrap(zipbox.UnexpectedEOF, "", err)
			}
			appendRun(&lengths, 0, 11+int(n), total)
			prev = 0
		default:
			return nil, nil, zipbox.Wrap(zipbox.InvalidBlock, "", ErrInvalidSymbol)
		}
	}

	litDecoder, err := huffman.New(lengths[:hlit])
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.InvalidHuffmanCode, "", err)
	}
	distDecoder, err := huffman.New(lengths[hlit:total])
	if err != nil {
		return nil, nil, zipbox.Wrap(zipbox.InvalidHuffmanCode, "", err)
	}
	return litDecoder, distDecoder, nil
}

func appendRun(lengths *[]int, value, count, total int) {
	for i := 0; i < count && len(*lengths) < total; i++ {
		*lengths = append(*lengths, value)
	}
}

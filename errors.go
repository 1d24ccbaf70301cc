// Package zipbox is a ZIP archive extractor built on a reserve/commit
// arena allocator and a hand-rolled DEFLATE decoder. See the zip and
// gzip subpackages for the container readers, deflate for the RFC
// 1951 engine, and arena for the allocator itself.
package zipbox

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed. Every error the deflate and
// gzip decoders and zip.NewReader/Extract return maps to exactly one
// Kind, checked with errors.As against *Error. Errors from package
// arena, and the filesystem and aggregate errors of zip.BulkExtract,
// are plain errors without a Kind.
type Kind int

const (
	_ Kind = iota
	InvalidMagic
	UnsupportedMethod
	InvalidHeader
	InvalidChecksum
	InvalidSize
	InvalidBlock
	InvalidHuffmanCode
	InvalidDistance
	UnexpectedEOF
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case InvalidMagic:
		return "invalid magic"
	case UnsupportedMethod:
		return "unsupported method"
	case InvalidHeader:
		return "invalid header"
	case InvalidChecksum:
		return "invalid checksum"
	case InvalidSize:
		return "invalid size"
	case InvalidBlock:
		return "invalid block"
	case InvalidHuffmanCode:
		return "invalid huffman code"
	case InvalidDistance:
		return "invalid distance"
	case UnexpectedEOF:
		return "unexpected eof"
	case OutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the Kind that classifies it
// and, where applicable, the name of the entry or member the failure
// occurred within.
type Error struct {
	Kind  Kind
	Scope string // entry name, member index, or "" if not applicable
	Err   error
}

func (e *Error) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Scope, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error of the given Kind around err. If err is
// already an *Error, its Scope is preserved unless scope is non-empty.
func Wrap(kind Kind, scope string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) && scope == "" {
		scope = existing.Scope
	}
	return &Error{Kind: kind, Scope: scope, Err: err}
}

// WithScope attaches scope to err if it wraps an *Error with no scope
// of its own yet, preserving its Kind. Errors that already carry a
// scope (raised closer to the failure) keep it. A non-*Error is left
// untouched.
func WithScope(err error, scope string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Scope != "" {
		return e
	}
	return &Error{Kind: e.Kind, Scope: scope, Err: e.Err}
}

// ErrInsecurePath is returned when an entry name attempts to escape
// the destination directory via a ".." segment or an absolute path.
var ErrInsecurePath = errors.New("zipbox: insecure entry path")

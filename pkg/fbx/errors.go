package fbx

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidMagic         = errors.New("invalid header magic")
	ErrUnsupportedVersion   = errors.New("unsupported version")
	ErrInvalidUTF8          = errors.New("invalid UTF-8 text")
	ErrUnknownPropertyType  = errors.New("unrecognized property type")
	ErrUnknownArrayEncoding = errors.New("unknown array encoding")
	ErrDecompression        = errors.New("array decompression failed")
	ErrMaxDepth             = errors.New("maximum node depth exceeded")
	ErrTooLarge             = errors.New("length exceeds allocation limit")
	ErrNodeOverrun          = errors.New("node content overruns its end offset")
)

// Kind classifies a decode failure.
type Kind int

const (
	// KindFormat covers header failures: wrong magic, unsupported version.
	KindFormat Kind = iota + 1
	// KindStructure covers malformed content: bad UTF-8, unknown tags or encodings,
	// decompression failures and exceeded limits.
	KindStructure
	// KindIO covers short reads and seek failures of the underlying stream.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindStructure:
		return "structure"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// DecodeError reports where and why a decode failed.
type DecodeError struct {
	Kind   Kind   // Failure category
	Field  string // Field being decoded, e.g. "node name" or "property 2 (i) length"
	Offset int64  // Absolute stream offset of the field
	Err    error  // Sentinel or underlying I/O error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fbx: %s error decoding %s at offset %d: %v", e.Kind, e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *DecodeError of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == kind
}

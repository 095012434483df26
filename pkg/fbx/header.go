package fbx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the fixed signature every binary file starts with.
const Magic = "Kaydara FBX Binary  \x00\x1a\x00"

const (
	// MagicSize is the byte length of Magic.
	MagicSize = len(Magic)
	// HeaderSize is the fixed binary size of the header: magic plus u32 version.
	HeaderSize = MagicSize + 4
	// MaxVersion is the first version this package refuses. Versions 7500 and later
	// widen node header fields to 64 bits.
	MaxVersion = 7500
)

// Header is the fixed preamble of a binary file.
type Header struct {
	Magic   [MagicSize]byte
	Version uint32
}

// ValidateMagic checks the signature.
func (h *Header) ValidateMagic() error {
	if string(h.Magic[:]) != Magic {
		return &DecodeError{Kind: KindFormat, Field: "header magic", Offset: 0, Err: ErrInvalidMagic}
	}
	return nil
}

// ValidateVersion checks that the version predates the 64-bit node layout.
func (h *Header) ValidateVersion() error {
	if h.Version >= MaxVersion {
		return &DecodeError{
			Kind:   KindFormat,
			Field:  "header version",
			Offset: int64(MagicSize),
			Err:    fmt.Errorf("%w: %d (must be below %d)", ErrUnsupportedVersion, h.Version, MaxVersion),
		}
	}
	return nil
}

// Validate checks both the signature and the version.
func (h *Header) Validate() error {
	if err := h.ValidateMagic(); err != nil {
		return err
	}
	return h.ValidateVersion()
}

// ReadHeader reads and validates exactly HeaderSize bytes from r. The magic is checked
// before the version is read, so a short file with a foreign signature reports a format
// error rather than an I/O error.
func ReadHeader(r io.Reader) (Header, error) {
	return readHeader(&reader{src: r, size: -1})
}

func readHeader(r *reader) (Header, error) {
	var h Header
	if err := r.readFull("header magic", h.Magic[:]); err != nil {
		return h, err
	}
	if err := h.ValidateMagic(); err != nil {
		return h, err
	}

	var v [4]byte
	if err := r.readFull("header version", v[:]); err != nil {
		return h, err
	}
	h.Version = binary.LittleEndian.Uint32(v[:])
	if err := h.ValidateVersion(); err != nil {
		return h, err
	}
	return h, nil
}

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"
)

// HeaderSize is the fixed size of an envelope header.
const HeaderSize = 17

// Format identifies the payload encoding.
type Format uint8

const (
	FormatJSON Format = 1
)

// Errors
var (
	ErrShortEnvelope = errors.New("data too short for envelope")
	ErrChecksum      = errors.New("envelope checksum mismatch")
	ErrFormat        = errors.New("unknown envelope format")
)

// Envelope is a checksummed payload with metadata
type Envelope struct {
	CRC32       uint32 // CRC32 over everything after this field
	Format      Format // Payload encoding
	Timestamp   uint64 // Unix timestamp in nanoseconds
	PayloadSize uint32 // Size of the payload in bytes
	Payload     []byte
}

// EnvelopeCodec handles serialization and deserialization of envelopes
type EnvelopeCodec struct {
	now func() time.Time
}

// NewEnvelopeCodec creates a new envelope codec instance
func NewEnvelopeCodec() *EnvelopeCodec {
	return &EnvelopeCodec{now: time.Now}
}

// Encode wraps payload in an envelope stamped with the current time
func (c *EnvelopeCodec) Encode(format Format, payload []byte) ([]byte, error) {
	if format != FormatJSON {
		return nil, fmt.Errorf("%w: %d", ErrFormat, format)
	}
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("payload too large: %d bytes", len(payload))
	}

	e := &Envelope{
		Format:      format,
		Timestamp:   uint64(c.now().UnixNano()),
		PayloadSize: uint32(len(payload)),
		Payload:     payload,
	}

	buf := make([]byte, e.Size())
	buf[4] = byte(e.Format)
	binary.LittleEndian.PutUint64(buf[5:], e.Timestamp)
	binary.LittleEndian.PutUint32(buf[13:], e.PayloadSize)
	copy(buf[HeaderSize:], e.Payload)
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))

	return buf, nil
}

// Decode parses an envelope without verifying its checksum
func (c *EnvelopeCodec) Decode(data []byte) (*Envelope, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortEnvelope, len(data), HeaderSize)
	}

	e := &Envelope{
		CRC32:       binary.LittleEndian.Uint32(data[0:4]),
		Format:      Format(data[4]),
		Timestamp:   binary.LittleEndian.Uint64(data[5:13]),
		PayloadSize: binary.LittleEndian.Uint32(data[13:17]),
	}
	if uint64(len(data)-HeaderSize) < uint64(e.PayloadSize) {
		return nil, fmt.Errorf("%w: payload needs %d bytes, have %d", ErrShortEnvelope, e.PayloadSize, len(data)-HeaderSize)
	}
	e.Payload = data[HeaderSize : HeaderSize+int(e.PayloadSize)]

	return e, nil
}

// Validate checks the integrity of an envelope using CRC32
func (e *Envelope) Validate() error {
	if got := e.checksum(); got != e.CRC32 {
		return fmt.Errorf("%w: %d != %d", ErrChecksum, e.CRC32, got)
	}
	if e.Format != FormatJSON {
		return fmt.Errorf("%w: %d", ErrFormat, e.Format)
	}
	return nil
}

// Size returns the total size of the envelope when encoded
func (e *Envelope) Size() int {
	return HeaderSize + len(e.Payload)
}

// Time returns the envelope timestamp
func (e *Envelope) Time() time.Time {
	return time.Unix(0, int64(e.Timestamp))
}

func (e *Envelope) checksum() uint32 {
	var hdr [HeaderSize - 4]byte
	hdr[0] = byte(e.Format)
	binary.LittleEndian.PutUint64(hdr[1:], e.Timestamp)
	binary.LittleEndian.PutUint32(hdr[9:], e.PayloadSize)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(hdr[:])
	_, _ = crc.Write(e.Payload)
	return crc.Sum32()
}

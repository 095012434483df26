package fbx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// reader tracks the absolute stream offset while decoding so node end offsets can be
// compared without seeking on every node.
type reader struct {
	src      io.Reader
	offset   int64  // absolute offset of the next byte
	size     int64  // total stream size, -1 when unknown
	maxAlloc uint64 // largest buffer a single length field may request
	scratch  [8]byte
}

// newReader captures the current stream position and, when the stream can report it, the
// total size so that length fields can be checked against the remaining bytes.
func newReader(rs io.ReadSeeker, maxAlloc uint64) (*reader, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &DecodeError{Kind: KindIO, Field: "stream position", Err: err}
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &DecodeError{Kind: KindIO, Field: "stream size", Offset: start, Err: err}
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, &DecodeError{Kind: KindIO, Field: "stream position", Offset: start, Err: err}
	}

	return &reader{
		src:      bufio.NewReader(rs),
		offset:   start,
		size:     end,
		maxAlloc: maxAlloc,
	}, nil
}

func (r *reader) readFull(field string, p []byte) error {
	at := r.offset
	n, err := io.ReadFull(r.src, p)
	r.offset += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &DecodeError{Kind: KindIO, Field: field, Offset: at, Err: err}
	}
	return nil
}

func (r *reader) u8(field string) (uint8, error) {
	b := r.scratch[:1]
	if err := r.readFull(field, b); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(field string) (uint16, error) {
	b := r.scratch[:2]
	if err := r.readFull(field, b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32(field string) (uint32, error) {
	b := r.scratch[:4]
	if err := r.readFull(field, b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64(field string) (uint64, error) {
	b := r.scratch[:8]
	if err := r.readFull(field, b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// checkAlloc rejects lengths above the allocation cap.
func (r *reader) checkAlloc(field string, n uint64) error {
	if n > r.maxAlloc {
		return &DecodeError{
			Kind:   KindStructure,
			Field:  field,
			Offset: r.offset,
			Err:    fmt.Errorf("%w: %d > %d", ErrTooLarge, n, r.maxAlloc),
		}
	}
	return nil
}

// bytes reads an n byte buffer after validating n against the allocation cap and the
// remaining stream length.
func (r *reader) bytes(field string, n uint64) ([]byte, error) {
	if err := r.checkAlloc(field, n); err != nil {
		return nil, err
	}
	if r.size >= 0 {
		remaining := r.size - r.offset
		if remaining < 0 {
			remaining = 0
		}
		if n > uint64(remaining) {
			return nil, &DecodeError{
				Kind:   KindIO,
				Field:  field,
				Offset: r.offset,
				Err:    fmt.Errorf("%w: need %d bytes, %d remain", io.ErrUnexpectedEOF, n, remaining),
			}
		}
	}

	buf := make([]byte, n)
	if err := r.readFull(field, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

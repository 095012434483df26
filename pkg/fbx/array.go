package fbx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Array encodings
const (
	ArrayEncodingRaw  uint32 = 0
	ArrayEncodingZlib uint32 = 1
)

// element describes the on-disk layout of one array element. Sizes come from the format,
// never from the host representation of T.
type element[T any] struct {
	size   int
	decode func(b []byte) T
}

var (
	// Bool array elements are one byte wide; 1 is true, anything else false, matching
	// the scalar C property.
	boolElement = element[bool]{1, func(b []byte) bool { return b[0] == 1 }}
	int8Element = element[int8]{1, func(b []byte) int8 { return int8(b[0]) }}

	int32Element = element[int32]{4, func(b []byte) int32 {
		return int32(binary.LittleEndian.Uint32(b))
	}}
	int64Element = element[int64]{8, func(b []byte) int64 {
		return int64(binary.LittleEndian.Uint64(b))
	}}
	float32Element = element[float32]{4, func(b []byte) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}}
	float64Element = element[float64]{8, func(b []byte) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}}
)

// decodeArray reads the [Length][Encoding][CompressedLength] array prefix and the payload
// that follows, then decodes Length elements one by one from the little-endian bytes.
func decodeArray[T any](s *decodeState, elem element[T]) ([]T, error) {
	length, err := s.r.u32("array length")
	if err != nil {
		return nil, err
	}
	encodingAt := s.r.offset
	encoding, err := s.r.u32("array encoding")
	if err != nil {
		return nil, err
	}
	compressedLength, err := s.r.u32("array compressed length")
	if err != nil {
		return nil, err
	}

	size := uint64(length) * uint64(elem.size)

	var data []byte
	switch encoding {
	case ArrayEncodingRaw:
		data, err = s.r.bytes("array elements", size)
		if err != nil {
			return nil, err
		}
	case ArrayEncodingZlib:
		if err := s.r.checkAlloc("array elements", size); err != nil {
			return nil, err
		}
		payloadAt := s.r.offset
		compressed, err := s.r.bytes("array payload", uint64(compressedLength))
		if err != nil {
			return nil, err
		}
		data, err = s.inflater.Inflate(compressed, int(size))
		if err == nil && uint64(len(data)) != size {
			err = fmt.Errorf("inflated %d bytes, want %d", len(data), size)
		}
		if err != nil {
			return nil, &DecodeError{
				Kind:   KindStructure,
				Field:  "array payload",
				Offset: payloadAt,
				Err:    fmt.Errorf("%w: %w", ErrDecompression, err),
			}
		}
	default:
		return nil, &DecodeError{
			Kind:   KindStructure,
			Field:  "array encoding",
			Offset: encodingAt,
			Err:    fmt.Errorf("%w: %d", ErrUnknownArrayEncoding, encoding),
		}
	}

	out := make([]T, length)
	for i := range out {
		out[i] = elem.decode(data[i*elem.size:])
	}
	return out, nil
}

package fbx

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// property reads one tag byte and the payload it selects.
func (s *decodeState) property() (Property, error) {
	tagAt := s.r.offset
	tag, err := s.r.u8("property type")
	if err != nil {
		return nil, err
	}

	switch Type(tag) {
	case TypeBool:
		v, err := s.r.u8("bool")
		if err != nil {
			return nil, err
		}
		return Bool(v == 1), nil
	case TypeInt16:
		v, err := s.r.u16("int16")
		if err != nil {
			return nil, err
		}
		return Int16(v), nil
	case TypeInt32:
		v, err := s.r.u32("int32")
		if err != nil {
			return nil, err
		}
		return Int32(v), nil
	case TypeInt64:
		v, err := s.r.u64("int64")
		if err != nil {
			return nil, err
		}
		return Int64(v), nil
	case TypeFloat32:
		v, err := s.r.u32("float32")
		if err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(v)), nil
	case TypeFloat64:
		v, err := s.r.u64("float64")
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(v)), nil
	case TypeRaw:
		v, err := s.rawBytes("raw")
		if err != nil {
			return nil, err
		}
		return Raw(v), nil
	case TypeString:
		v, err := s.text("string")
		if err != nil {
			return nil, err
		}
		return String(v), nil
	case TypeBoolArray:
		v, err := decodeArray(s, boolElement)
		if err != nil {
			return nil, err
		}
		return BoolArray(v), nil
	case TypeInt8Array:
		v, err := decodeArray(s, int8Element)
		if err != nil {
			return nil, err
		}
		return Int8Array(v), nil
	case TypeInt32Array:
		v, err := decodeArray(s, int32Element)
		if err != nil {
			return nil, err
		}
		return Int32Array(v), nil
	case TypeInt64Array:
		v, err := decodeArray(s, int64Element)
		if err != nil {
			return nil, err
		}
		return Int64Array(v), nil
	case TypeFloat32Array:
		v, err := decodeArray(s, float32Element)
		if err != nil {
			return nil, err
		}
		return Float32Array(v), nil
	case TypeFloat64Array:
		v, err := decodeArray(s, float64Element)
		if err != nil {
			return nil, err
		}
		return Float64Array(v), nil
	default:
		return nil, &DecodeError{
			Kind:   KindStructure,
			Field:  "property type",
			Offset: tagAt,
			Err:    fmt.Errorf("%w: 0x%02x", ErrUnknownPropertyType, tag),
		}
	}
}

// rawBytes reads a u32 length-prefixed byte sequence verbatim.
func (s *decodeState) rawBytes(field string) ([]byte, error) {
	n, err := s.r.u32(field + " length")
	if err != nil {
		return nil, err
	}
	return s.r.bytes(field, uint64(n))
}

// text reads a u32 length-prefixed byte sequence that must be valid UTF-8.
func (s *decodeState) text(field string) (string, error) {
	at := s.r.offset
	b, err := s.rawBytes(field)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &DecodeError{Kind: KindStructure, Field: field, Offset: at, Err: fmt.Errorf("%w: %q", ErrInvalidUTF8, b)}
	}
	return string(b), nil
}

package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestEnvelopeCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewEnvelopeCodec()

	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "json object", payload: []byte(`{"id":"abc","nodes":12}`)},
		{name: "empty payload", payload: []byte{}},
		{name: "binary data", payload: []byte{0x00, 0x01, 0xFF, 0xFE}},
		{name: "large payload", payload: bytes.Repeat([]byte("p"), 64*1024)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(FormatJSON, tc.payload)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(encoded) != HeaderSize+len(tc.payload) {
				t.Errorf("encoded size = %d, want %d", len(encoded), HeaderSize+len(tc.payload))
			}

			env, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if err := env.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}

			if !bytes.Equal(env.Payload, tc.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(env.Payload), len(tc.payload))
			}
			if env.PayloadSize != uint32(len(tc.payload)) {
				t.Errorf("PayloadSize = %d, want %d", env.PayloadSize, len(tc.payload))
			}
			if env.Format != FormatJSON {
				t.Errorf("Format = %d, want %d", env.Format, FormatJSON)
			}
			if env.Size() != len(encoded) {
				t.Errorf("Size() = %d, want %d", env.Size(), len(encoded))
			}
		})
	}
}

func TestEnvelopeCodec_Timestamp(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := &EnvelopeCodec{now: func() time.Time { return fixed }}

	encoded, err := codec.Encode(FormatJSON, []byte("{}"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := binary.LittleEndian.Uint64(encoded[5:13]); got != uint64(fixed.UnixNano()) {
		t.Errorf("timestamp bytes = %d, want %d", got, fixed.UnixNano())
	}

	env, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !env.Time().Equal(fixed) {
		t.Errorf("Time() = %v, want %v", env.Time(), fixed)
	}
}

func TestEnvelopeCodec_Layout(t *testing.T) {
	codec := NewEnvelopeCodec()
	payload := []byte("abc")

	encoded, err := codec.Encode(FormatJSON, payload)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if encoded[4] != byte(FormatJSON) {
		t.Errorf("format byte = %d, want %d", encoded[4], FormatJSON)
	}
	if got := binary.LittleEndian.Uint32(encoded[13:17]); got != 3 {
		t.Errorf("payload size = %d, want 3", got)
	}
	if !bytes.Equal(encoded[HeaderSize:], payload) {
		t.Errorf("payload bytes = %q, want %q", encoded[HeaderSize:], payload)
	}
}

func TestEnvelopeCodec_CRCValidation(t *testing.T) {
	codec := NewEnvelopeCodec()

	corruptions := []struct {
		name   string
		offset int
	}{
		{name: "crc field", offset: 0},
		{name: "format byte", offset: 4},
		{name: "timestamp", offset: 7},
		{name: "payload", offset: HeaderSize + 1},
	}

	for _, tc := range corruptions {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(FormatJSON, []byte(`{"ok":true}`))
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			encoded[tc.offset] ^= 0xFF

			env, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if err := env.Validate(); !errors.Is(err, ErrChecksum) {
				t.Errorf("Validate() = %v, want ErrChecksum", err)
			}
		})
	}
}

func TestEnvelopeCodec_DecodeErrors(t *testing.T) {
	codec := NewEnvelopeCodec()

	t.Run("short header", func(t *testing.T) {
		_, err := codec.Decode(make([]byte, HeaderSize-1))
		if !errors.Is(err, ErrShortEnvelope) {
			t.Errorf("Decode() = %v, want ErrShortEnvelope", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		encoded, err := codec.Encode(FormatJSON, []byte("0123456789"))
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		_, err = codec.Decode(encoded[:len(encoded)-1])
		if !errors.Is(err, ErrShortEnvelope) {
			t.Errorf("Decode() = %v, want ErrShortEnvelope", err)
		}
	})

	t.Run("trailing bytes ignored", func(t *testing.T) {
		encoded, err := codec.Encode(FormatJSON, []byte("xyz"))
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		env, err := codec.Decode(append(encoded, 0xAA, 0xBB))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if err := env.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
		if string(env.Payload) != "xyz" {
			t.Errorf("payload = %q, want xyz", env.Payload)
		}
	})
}

func TestEnvelopeCodec_UnknownFormat(t *testing.T) {
	codec := NewEnvelopeCodec()

	if _, err := codec.Encode(Format(9), []byte("x")); !errors.Is(err, ErrFormat) {
		t.Errorf("Encode() = %v, want ErrFormat", err)
	}

	// A well-formed envelope carrying an unknown format still fails validation.
	e := &Envelope{Format: Format(9), Timestamp: 1, PayloadSize: 1, Payload: []byte("x")}
	e.CRC32 = e.checksum()
	if err := e.Validate(); !errors.Is(err, ErrFormat) {
		t.Errorf("Validate() = %v, want ErrFormat", err)
	}
}

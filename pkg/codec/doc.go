// Package codec provides the envelope format used to persist decode reports.
//
// An envelope wraps an opaque payload (JSON by default) with a format tag, a timestamp
// and a CRC32 checksum so that corrupted catalog entries are detected on read.
//
// # Envelope Format
//
// Envelopes are serialized in a binary format with the following structure:
//
//	[CRC32(4)][Format(1)][Timestamp(8)][PayloadSize(4)][Payload]
//
// Fields:
//   - CRC32: IEEE CRC32 checksum over every following byte (little-endian)
//   - Format: payload encoding, currently only FormatJSON
//   - Timestamp: 64-bit Unix timestamp in nanoseconds (little-endian)
//   - PayloadSize: 32-bit unsigned payload length in bytes (little-endian)
//   - Payload: PayloadSize bytes
//
// The total envelope size is: 17 bytes (header) + len(payload)
//
// # Usage
//
//	c := codec.NewEnvelopeCodec()
//
//	encoded, err := c.Encode(codec.FormatJSON, payload)
//	if err != nil {
//	    return err
//	}
//
//	env, err := c.Decode(encoded)
//	if err != nil {
//	    return err
//	}
//	if err := env.Validate(); err != nil {
//	    return err // Envelope is corrupted
//	}
//
// # Thread Safety
//
// EnvelopeCodec instances are safe for concurrent use. Decoded envelopes alias the
// input buffer.
package codec

package fbx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Inflater decompresses an array payload whose inflated size is known up front.
type Inflater interface {
	// Inflate decompresses src and returns exactly size bytes, or an error if the stream
	// is corrupt or inflates to any other length.
	Inflate(src []byte, size int) ([]byte, error)
}

// ZlibInflater inflates zlib streams (deflate with the two byte header and adler32
// trailer) in one shot.
type ZlibInflater struct{}

// Inflate implements Inflater.
func (ZlibInflater) Inflate(src []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if n, err := io.ReadFull(zr, out); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, fmt.Errorf("inflated %d bytes, want %d", n, size)
		}
		return nil, err
	}

	// Reading past the expected size must hit EOF; this also verifies the checksum.
	var extra [1]byte
	switch _, err := io.ReadFull(zr, extra[:]); err {
	case io.EOF:
		return out, nil
	case nil:
		return nil, fmt.Errorf("inflated more than %d bytes", size)
	default:
		return nil, err
	}
}

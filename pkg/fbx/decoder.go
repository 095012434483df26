package fbx

import (
	"bytes"
	"io"
	"math"
)

const (
	// DefaultMaxDepth bounds node nesting. Real files nest a handful of levels.
	DefaultMaxDepth = 512
	// DefaultMaxAllocation bounds any single name, string, raw or array buffer.
	DefaultMaxAllocation = 1 << 30 // 1 GiB
)

// unbounded is the end offset used for the top-level node list.
const unbounded = math.MaxInt64

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxDepth sets the maximum node nesting depth (default: DefaultMaxDepth).
func WithMaxDepth(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithMaxAllocation sets the largest buffer a single length field may request
// (default: DefaultMaxAllocation).
func WithMaxAllocation(n int64) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxAlloc = uint64(n)
		}
	}
}

// WithInflater replaces the zlib implementation used for compressed arrays.
func WithInflater(inf Inflater) Option {
	return func(d *Decoder) {
		if inf != nil {
			d.inflater = inf
		}
	}
}

// WithStrictBounds makes the decoder fail when a node's content extends past its declared
// end offset instead of silently stopping at the bound.
func WithStrictBounds() Option {
	return func(d *Decoder) {
		d.strict = true
	}
}

// Decoder decodes binary files. The zero value is not usable; use NewDecoder.
type Decoder struct {
	maxDepth int
	maxAlloc uint64
	inflater Inflater
	strict   bool
}

// NewDecoder creates a decoder with the given options applied over the defaults.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		maxDepth: DefaultMaxDepth,
		maxAlloc: DefaultMaxAllocation,
		inflater: ZlibInflater{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// decodeState is the per-call state of one decode.
type decodeState struct {
	r        *reader
	inflater Inflater
	maxDepth int
	strict   bool
}

// Decode validates the header and decodes the forest of root nodes.
func (d *Decoder) Decode(r io.ReadSeeker) ([]Node, error) {
	doc, err := d.DecodeDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Nodes, nil
}

// DecodeDocument is like Decode but also returns the header version.
//
// On return, successful or not, r is positioned just after the last byte the decoder
// consumed.
func (d *Decoder) DecodeDocument(r io.ReadSeeker) (doc *Document, err error) {
	rd, err := newReader(r, d.maxAlloc)
	if err != nil {
		return nil, err
	}
	// The buffered reader reads ahead; give back what was not consumed.
	defer func() {
		if _, serr := r.Seek(rd.offset, io.SeekStart); serr != nil && err == nil {
			doc, err = nil, &DecodeError{Kind: KindIO, Field: "stream position", Offset: rd.offset, Err: serr}
		}
	}()

	header, err := readHeader(rd)
	if err != nil {
		return nil, err
	}

	s := &decodeState{
		r:        rd,
		inflater: d.inflater,
		maxDepth: d.maxDepth,
		strict:   d.strict,
	}
	nodes, err := s.nodeList(unbounded, 0)
	if err != nil {
		return nil, err
	}

	return &Document{Version: header.Version, Nodes: nodes}, nil
}

// Decode decodes r with the default limits.
func Decode(r io.ReadSeeker) ([]Node, error) {
	return NewDecoder().Decode(r)
}

// DecodeBytes decodes an in-memory file with the default limits.
func DecodeBytes(b []byte) ([]Node, error) {
	return NewDecoder().Decode(bytes.NewReader(b))
}

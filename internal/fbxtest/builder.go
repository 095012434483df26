// Package fbxtest builds binary FBX fixtures for tests.
package fbxtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zlib"
)

// Magic is the binary file signature.
const Magic = "Kaydara FBX Binary  \x00\x1a\x00"

// DefaultVersion is the version written by Encode when none is given.
const DefaultVersion = 7400

// Node describes a node to encode. Nodes with children always get a trailing null
// record; Terminate forces one on a leaf as well.
type Node struct {
	Name      string
	Props     []Prop
	Children  []Node
	Terminate bool
}

// Prop is an encodable property record.
type Prop struct {
	Tag      byte
	Payload  []byte // scalar, raw and string payloads, length prefix included
	Count    uint32 // array element count
	Elements []byte // little-endian array elements before encoding
	Encoding uint32 // array encoding selector
	Record   []byte // when set, written verbatim instead of the fields above
}

func (p Prop) isArray() bool {
	switch p.Tag {
	case 'b', 'c', 'i', 'l', 'f', 'd':
		return true
	}
	return false
}

// Bytes returns the property record as written to a file.
func (p Prop) Bytes() []byte {
	if p.Record != nil {
		return p.Record
	}
	var buf bytes.Buffer
	buf.WriteByte(p.Tag)
	if !p.isArray() {
		buf.Write(p.Payload)
		return buf.Bytes()
	}

	payload := p.Elements
	if p.Encoding == 1 {
		payload = Deflate(p.Elements)
	}
	putU32(&buf, p.Count)
	putU32(&buf, p.Encoding)
	putU32(&buf, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// Compressed returns p with zlib array encoding.
func Compressed(p Prop) Prop {
	p.Encoding = 1
	return p
}

// WithEncoding returns p with an arbitrary encoding selector. Selectors other than 1 are
// written with the raw element bytes.
func WithEncoding(p Prop, encoding uint32) Prop {
	p.Encoding = encoding
	return p
}

// RawRecord returns a property written exactly as b, tag byte included.
func RawRecord(b []byte) Prop {
	return Prop{Record: b}
}

// Deflate zlib-compresses b.
func Deflate(b []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

// Bool returns a C property; true is stored as 1.
func Bool(v bool) Prop {
	b := byte(0)
	if v {
		b = 1
	}
	return Prop{Tag: 'C', Payload: []byte{b}}
}

// Int16 returns a Y property.
func Int16(v int16) Prop {
	return Prop{Tag: 'Y', Payload: binary.LittleEndian.AppendUint16(nil, uint16(v))}
}

// Int32 returns an I property.
func Int32(v int32) Prop {
	return Prop{Tag: 'I', Payload: binary.LittleEndian.AppendUint32(nil, uint32(v))}
}

// Int64 returns an L property.
func Int64(v int64) Prop {
	return Prop{Tag: 'L', Payload: binary.LittleEndian.AppendUint64(nil, uint64(v))}
}

// Float32 returns an F property.
func Float32(v float32) Prop {
	return Prop{Tag: 'F', Payload: binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))}
}

// Float64 returns a D property.
func Float64(v float64) Prop {
	return Prop{Tag: 'D', Payload: binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))}
}

// Raw returns a length-prefixed R property.
func Raw(v []byte) Prop {
	return Prop{Tag: 'R', Payload: lengthPrefixed(v)}
}

// String returns a length-prefixed S property. v is written as is, valid UTF-8 or not.
func String(v string) Prop {
	return Prop{Tag: 'S', Payload: lengthPrefixed([]byte(v))}
}

// BoolArray returns a raw b array with one byte per element.
func BoolArray(v ...bool) Prop {
	elems := make([]byte, len(v))
	for i, b := range v {
		if b {
			elems[i] = 1
		}
	}
	return Prop{Tag: 'b', Count: uint32(len(v)), Elements: elems}
}

// Int8Array returns a raw c array.
func Int8Array(v ...int8) Prop {
	elems := make([]byte, len(v))
	for i, x := range v {
		elems[i] = byte(x)
	}
	return Prop{Tag: 'c', Count: uint32(len(v)), Elements: elems}
}

// Int32Array returns a raw i array.
func Int32Array(v ...int32) Prop {
	var elems []byte
	for _, x := range v {
		elems = binary.LittleEndian.AppendUint32(elems, uint32(x))
	}
	return Prop{Tag: 'i', Count: uint32(len(v)), Elements: elems}
}

// Int64Array returns a raw l array.
func Int64Array(v ...int64) Prop {
	var elems []byte
	for _, x := range v {
		elems = binary.LittleEndian.AppendUint64(elems, uint64(x))
	}
	return Prop{Tag: 'l', Count: uint32(len(v)), Elements: elems}
}

// Float32Array returns a raw f array.
func Float32Array(v ...float32) Prop {
	var elems []byte
	for _, x := range v {
		elems = binary.LittleEndian.AppendUint32(elems, math.Float32bits(x))
	}
	return Prop{Tag: 'f', Count: uint32(len(v)), Elements: elems}
}

// Float64Array returns a raw d array.
func Float64Array(v ...float64) Prop {
	var elems []byte
	for _, x := range v {
		elems = binary.LittleEndian.AppendUint64(elems, math.Float64bits(x))
	}
	return Prop{Tag: 'd', Count: uint32(len(v)), Elements: elems}
}

// Header returns the 27 byte file header.
func Header(version uint32) []byte {
	return binary.LittleEndian.AppendUint32([]byte(Magic), version)
}

// NullRecord returns the 13 byte all-zero node header.
func NullRecord() []byte {
	return make([]byte, 13)
}

// Encode writes a complete file: header, root nodes and the terminating null record.
func Encode(version uint32, roots ...Node) []byte {
	buf := bytes.NewBuffer(Header(version))
	for _, n := range roots {
		writeNode(buf, n)
	}
	buf.Write(NullRecord())
	return buf.Bytes()
}

// EncodeDefault is Encode with DefaultVersion.
func EncodeDefault(roots ...Node) []byte {
	return Encode(DefaultVersion, roots...)
}

// writeNode appends n at the buffer's current length, which is also its absolute offset
// because the buffer always starts with the file header.
func writeNode(buf *bytes.Buffer, n Node) {
	var props []byte
	for _, p := range n.Props {
		props = append(props, p.Bytes()...)
	}

	start := buf.Len()
	putU32(buf, 0) // end offset, patched below
	putU32(buf, uint32(len(n.Props)))
	putU32(buf, uint32(len(props)))
	buf.WriteByte(byte(len(n.Name)))
	buf.WriteString(n.Name)
	buf.Write(props)

	for _, c := range n.Children {
		writeNode(buf, c)
	}
	if len(n.Children) > 0 || n.Terminate {
		buf.Write(NullRecord())
	}

	binary.LittleEndian.PutUint32(buf.Bytes()[start:], uint32(buf.Len()))
}

func lengthPrefixed(v []byte) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(v))), v...)
}

func putU32(buf *bytes.Buffer, v uint32) {
	buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

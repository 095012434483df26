// Package fbx decodes the binary variant of the FBX 3D scene interchange format into a
// generic tree of named nodes carrying typed properties.
//
// The package is a reader only. It does not interpret node semantics (meshes, materials,
// transforms), it never writes the format back out and it does not handle the ASCII
// variant of the format.
//
// # File Format
//
// All integers are little-endian. A file starts with a fixed header:
//
//	[Magic(23)]["Kaydara FBX Binary  \x00\x1a\x00"][Version(4)]
//
// followed by a list of node records:
//
//	[EndOffset(4)][PropertyCount(4)][PropertyListLen(4)][NameLen(1)][Name][Properties...][Children...]
//
// Fields:
//   - EndOffset: absolute stream offset at which the node and all of its descendants end
//   - PropertyCount: number of property records that follow the name
//   - PropertyListLen: byte size of the property records (informational, not validated)
//   - NameLen: length of the node name in bytes
//   - Name: UTF-8 node name
//
// A node list ends with a null record: a node header whose four fields are all zero
// (13 zero bytes). Child lists additionally end once the stream reaches the parent's
// EndOffset.
//
// # Properties
//
// Every property starts with a one-byte type tag:
//
//	C bool   Y int16   I int32   L int64   F float32   D float64
//	R raw bytes        S string
//	b []bool  c []int8  i []int32  l []int64  f []float32  d []float64
//
// Raw bytes and strings are prefixed by a u32 byte length. Arrays are prefixed by
//
//	[Length(4)][Encoding(4)][CompressedLength(4)]
//
// where Encoding 0 stores Length little-endian elements verbatim and Encoding 1 stores a
// zlib stream of CompressedLength bytes that inflates to exactly Length elements.
//
// # Usage
//
//	f, err := os.Open("cube.fbx")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	nodes, err := fbx.Decode(f)
//	if err != nil {
//	    return err
//	}
//
// Limits on recursion depth and buffer sizes can be tuned with NewDecoder:
//
//	dec := fbx.NewDecoder(fbx.WithMaxDepth(64), fbx.WithMaxAllocation(64<<20))
//	doc, err := dec.DecodeDocument(f)
//
// # Error Handling
//
// Decoding is all-or-nothing: the first error aborts the whole decode and no partial tree is
// returned. Errors are reported as *DecodeError values naming the category, the offending
// field and the absolute stream offset. They unwrap to one of the package sentinels
// (ErrInvalidMagic, ErrUnknownPropertyType, ...) or to the underlying I/O error, so callers
// can use errors.Is and errors.As.
//
// # Thread Safety
//
// A Decoder holds only configuration and is safe for concurrent use. Each call exclusively
// owns and advances the stream it is given. Decoded nodes are plain values owned by the
// caller.
package fbx

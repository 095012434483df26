package fbx

// Type is the one-byte tag that prefixes every property record.
type Type byte

// Property type tags
const (
	TypeBool         Type = 'C'
	TypeInt16        Type = 'Y'
	TypeInt32        Type = 'I'
	TypeInt64        Type = 'L'
	TypeFloat32      Type = 'F'
	TypeFloat64      Type = 'D'
	TypeRaw          Type = 'R'
	TypeString       Type = 'S'
	TypeBoolArray    Type = 'b'
	TypeInt8Array    Type = 'c'
	TypeInt32Array   Type = 'i'
	TypeInt64Array   Type = 'l'
	TypeFloat32Array Type = 'f'
	TypeFloat64Array Type = 'd'
)

var typeNames = map[Type]string{
	TypeBool:         "bool",
	TypeInt16:        "int16",
	TypeInt32:        "int32",
	TypeInt64:        "int64",
	TypeFloat32:      "float32",
	TypeFloat64:      "float64",
	TypeRaw:          "raw",
	TypeString:       "string",
	TypeBoolArray:    "[]bool",
	TypeInt8Array:    "[]int8",
	TypeInt32Array:   "[]int32",
	TypeInt64Array:   "[]int64",
	TypeFloat32Array: "[]float32",
	TypeFloat64Array: "[]float64",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown(" + string(rune(t)) + ")"
}

// IsArray reports whether t is one of the homogeneous array types.
func (t Type) IsArray() bool {
	switch t {
	case TypeBoolArray, TypeInt8Array, TypeInt32Array, TypeInt64Array, TypeFloat32Array, TypeFloat64Array:
		return true
	}
	return false
}

// Property is one typed value attached to a node. The set of implementations is closed:
// Bool, Int16, Int32, Int64, Float32, Float64, Raw, String, BoolArray, Int8Array,
// Int32Array, Int64Array, Float32Array and Float64Array.
type Property interface {
	Type() Type
	property()
}

type (
	Bool         bool
	Int16        int16
	Int32        int32
	Int64        int64
	Float32      float32
	Float64      float64
	Raw          []byte
	String       string
	BoolArray    []bool
	Int8Array    []int8
	Int32Array   []int32
	Int64Array   []int64
	Float32Array []float32
	Float64Array []float64
)

func (Bool) Type() Type         { return TypeBool }
func (Int16) Type() Type        { return TypeInt16 }
func (Int32) Type() Type        { return TypeInt32 }
func (Int64) Type() Type        { return TypeInt64 }
func (Float32) Type() Type      { return TypeFloat32 }
func (Float64) Type() Type      { return TypeFloat64 }
func (Raw) Type() Type          { return TypeRaw }
func (String) Type() Type       { return TypeString }
func (BoolArray) Type() Type    { return TypeBoolArray }
func (Int8Array) Type() Type    { return TypeInt8Array }
func (Int32Array) Type() Type   { return TypeInt32Array }
func (Int64Array) Type() Type   { return TypeInt64Array }
func (Float32Array) Type() Type { return TypeFloat32Array }
func (Float64Array) Type() Type { return TypeFloat64Array }

func (Bool) property()         {}
func (Int16) property()        {}
func (Int32) property()        {}
func (Int64) property()        {}
func (Float32) property()      {}
func (Float64) property()      {}
func (Raw) property()          {}
func (String) property()       {}
func (BoolArray) property()    {}
func (Int8Array) property()    {}
func (Int32Array) property()   {}
func (Int64Array) property()   {}
func (Float32Array) property() {}
func (Float64Array) property() {}

// Len returns the number of elements of an array property, the byte length of a raw or
// string property and 1 for scalars.
func Len(p Property) int {
	switch v := p.(type) {
	case Raw:
		return len(v)
	case String:
		return len(v)
	case BoolArray:
		return len(v)
	case Int8Array:
		return len(v)
	case Int32Array:
		return len(v)
	case Int64Array:
		return len(v)
	case Float32Array:
		return len(v)
	case Float64Array:
		return len(v)
	default:
		return 1
	}
}

// Node is a named entry of the tree with its properties and children in on-disk order.
type Node struct {
	Name       string
	Properties []Property
	Children   []Node
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for i := range n.Children {
		if n.Children[i].Name == name {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name.
func (n *Node) ChildrenNamed(name string) []Node {
	var out []Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Property returns the i-th property, or nil when i is out of range.
func (n *Node) Property(i int) Property {
	if i < 0 || i >= len(n.Properties) {
		return nil
	}
	return n.Properties[i]
}

// Document is a decoded file: the header version and the forest of root nodes.
type Document struct {
	Version uint32
	Nodes   []Node
}

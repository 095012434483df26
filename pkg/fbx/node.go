package fbx

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// NullRecordSize is the size of the all-zero node header that ends a node list.
const NullRecordSize = 4 + 4 + 4 + 1

// maxPropertyPrealloc bounds the property slice capacity taken from the untrusted count.
const maxPropertyPrealloc = 1024

// nodeList decodes siblings until a null record or until the stream reaches end.
func (s *decodeState) nodeList(end int64, depth int) ([]Node, error) {
	var nodes []Node
	for {
		node, ok, err := s.node(depth)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nodes, nil
		}
		nodes = append(nodes, node)
		if s.r.offset >= end {
			return nodes, nil
		}
	}
}

// node decodes one node record. It returns ok=false for the null record.
func (s *decodeState) node(depth int) (Node, bool, error) {
	at := s.r.offset
	endOffset, err := s.r.u32("node end offset")
	if err != nil {
		return Node{}, false, err
	}
	propertyCount, err := s.r.u32("node property count")
	if err != nil {
		return Node{}, false, err
	}
	propertyListLen, err := s.r.u32("node property list length")
	if err != nil {
		return Node{}, false, err
	}
	nameLen, err := s.r.u8("node name length")
	if err != nil {
		return Node{}, false, err
	}

	if endOffset == 0 && propertyCount == 0 && propertyListLen == 0 && nameLen == 0 {
		return Node{}, false, nil
	}
	if depth >= s.maxDepth {
		return Node{}, false, &DecodeError{
			Kind:   KindStructure,
			Field:  "node",
			Offset: at,
			Err:    fmt.Errorf("%w: %d", ErrMaxDepth, s.maxDepth),
		}
	}

	nameAt := s.r.offset
	rawName, err := s.r.bytes("node name", uint64(nameLen))
	if err != nil {
		return Node{}, false, err
	}
	if !utf8.Valid(rawName) {
		return Node{}, false, &DecodeError{
			Kind:   KindStructure,
			Field:  "node name",
			Offset: nameAt,
			Err:    fmt.Errorf("%w: %q", ErrInvalidUTF8, rawName),
		}
	}
	name := string(rawName)

	properties := make([]Property, 0, min(propertyCount, maxPropertyPrealloc))
	for i := uint32(0); i < propertyCount; i++ {
		p, err := s.property()
		if err != nil {
			return Node{}, false, annotate(err, name, i)
		}
		properties = append(properties, p)
	}

	end := int64(endOffset)
	var children []Node
	if s.r.offset < end {
		children, err = s.nodeList(end, depth+1)
		if err != nil {
			return Node{}, false, err
		}
	}
	if s.strict && s.r.offset > end {
		return Node{}, false, &DecodeError{
			Kind:   KindStructure,
			Field:  fmt.Sprintf("node %q", name),
			Offset: s.r.offset,
			Err:    fmt.Errorf("%w: ends at %d, declared %d", ErrNodeOverrun, s.r.offset, end),
		}
	}

	return Node{Name: name, Properties: properties, Children: children}, true, nil
}

// annotate prefixes a property error with the owning node and property index.
func annotate(err error, node string, index uint32) error {
	var de *DecodeError
	if errors.As(err, &de) {
		de.Field = fmt.Sprintf("node %q property %d: %s", node, index, de.Field)
	}
	return err
}

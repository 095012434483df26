package query

import (
	"encoding/base64"
	"math"
	"strconv"

	"github.com/haxelion/fbx3d/pkg/fbx"
)

// TreeOptions controls BuildTree.
type TreeOptions struct {
	MaxArray int // Array elements kept per property; 0 keeps all
}

// TreeNode is a rendering-friendly copy of a node.
type TreeNode struct {
	Name       string         `json:"name" yaml:"name"`
	Properties []PropertyView `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []TreeNode     `json:"children,omitempty" yaml:"children,omitempty"`
}

// PropertyView is a property rendered as plain values that encode to both JSON and
// YAML. Raw bytes are base64 and non-finite floats are strings.
type PropertyView struct {
	Type      string `json:"type" yaml:"type"`
	Value     any    `json:"value" yaml:"value"`
	Length    int    `json:"length,omitempty" yaml:"length,omitempty"`
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// BuildTree converts the forest to TreeNodes.
func BuildTree(nodes []fbx.Node, opts TreeOptions) []TreeNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]TreeNode, len(nodes))
	for i := range nodes {
		out[i] = buildNode(&nodes[i], opts)
	}
	return out
}

func buildNode(n *fbx.Node, opts TreeOptions) TreeNode {
	t := TreeNode{Name: n.Name, Children: BuildTree(n.Children, opts)}
	if len(n.Properties) > 0 {
		t.Properties = make([]PropertyView, len(n.Properties))
		for i, p := range n.Properties {
			t.Properties[i] = ViewProperty(p, opts.MaxArray)
		}
	}
	return t
}

// ViewProperty renders one property, keeping at most maxArray array elements when
// maxArray is positive.
func ViewProperty(p fbx.Property, maxArray int) PropertyView {
	view := PropertyView{Type: p.Type().String()}

	switch v := p.(type) {
	case fbx.Bool:
		view.Value = bool(v)
	case fbx.Int16:
		view.Value = int16(v)
	case fbx.Int32:
		view.Value = int32(v)
	case fbx.Int64:
		view.Value = int64(v)
	case fbx.Float32:
		view.Value = floatValue(float64(v), 32)
	case fbx.Float64:
		view.Value = floatValue(float64(v), 64)
	case fbx.Raw:
		view.Value = base64.StdEncoding.EncodeToString(v)
		view.Length = len(v)
	case fbx.String:
		view.Value = string(v)
	case fbx.BoolArray:
		view.Value, view.Truncated = elements(v, maxArray, func(b bool) any { return b })
	case fbx.Int8Array:
		view.Value, view.Truncated = elements(v, maxArray, func(x int8) any { return x })
	case fbx.Int32Array:
		view.Value, view.Truncated = elements(v, maxArray, func(x int32) any { return x })
	case fbx.Int64Array:
		view.Value, view.Truncated = elements(v, maxArray, func(x int64) any { return x })
	case fbx.Float32Array:
		view.Value, view.Truncated = elements(v, maxArray, func(x float32) any { return floatValue(float64(x), 32) })
	case fbx.Float64Array:
		view.Value, view.Truncated = elements(v, maxArray, func(x float64) any { return floatValue(x, 64) })
	}
	if p.Type().IsArray() {
		view.Length = fbx.Len(p)
	}
	return view
}

func elements[T any](v []T, maxArray int, conv func(T) any) ([]any, bool) {
	n := len(v)
	truncated := false
	if maxArray > 0 && n > maxArray {
		n = maxArray
		truncated = true
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = conv(v[i])
	}
	return out, truncated
}

// floatValue keeps finite floats numeric and spells out NaN and infinities, which JSON
// cannot represent.
func floatValue(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	if bits == 32 {
		return float32(f)
	}
	return f
}

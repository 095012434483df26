package query

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestViewProperty(t *testing.T) {
	tests := []struct {
		name string
		prop fbx.Property
		max  int
		want PropertyView
	}{
		{"bool", fbx.Bool(true), 0, PropertyView{Type: "bool", Value: true}},
		{"int16", fbx.Int16(-3), 0, PropertyView{Type: "int16", Value: int16(-3)}},
		{"float32", fbx.Float32(0.5), 0, PropertyView{Type: "float32", Value: float32(0.5)}},
		{"nan", fbx.Float64(math.NaN()), 0, PropertyView{Type: "float64", Value: "NaN"}},
		{"inf", fbx.Float32(float32(math.Inf(-1))), 0, PropertyView{Type: "float32", Value: "-Inf"}},
		{"raw", fbx.Raw{0xff, 0x00, 0x10}, 0, PropertyView{Type: "raw", Value: "/wAQ", Length: 3}},
		{"string", fbx.String("Mesh"), 0, PropertyView{Type: "string", Value: "Mesh"}},
		{
			"array untruncated",
			fbx.Int32Array{1, 2, 3}, 0,
			PropertyView{Type: "[]int32", Value: []any{int32(1), int32(2), int32(3)}, Length: 3},
		},
		{
			"array truncated",
			fbx.BoolArray{true, false, true}, 2,
			PropertyView{Type: "[]bool", Value: []any{true, false}, Length: 3, Truncated: true},
		},
		{
			"empty array",
			fbx.Float64Array{}, 4,
			PropertyView{Type: "[]float64", Value: []any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewProperty(tt.prop, tt.max))
		})
	}
}

func TestBuildTree_Encodes(t *testing.T) {
	forest := testForest()
	forest[1].Children[0].Children[0].Properties = append(forest[1].Children[0].Children[0].Properties, fbx.Float64(math.Inf(1)))

	tree := BuildTree(forest, TreeOptions{MaxArray: 4})
	require.Len(t, tree, 3)
	vertices := tree[1].Children[0].Children[0]
	assert.Equal(t, "Vertices", vertices.Name)
	assert.True(t, vertices.Properties[0].Truncated)
	assert.Equal(t, 6, vertices.Properties[0].Length)

	js, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"name":"Vertices"`)
	assert.Contains(t, string(js), `"+Inf"`)

	ym, err := yaml.Marshal(tree)
	require.NoError(t, err)
	assert.Contains(t, string(ym), "name: PolygonVertexIndex")

	assert.Nil(t, BuildTree(nil, TreeOptions{}))
}

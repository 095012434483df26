package query

import (
	"cmp"
	"slices"

	"github.com/haxelion/fbx3d/pkg/fbx"
)

// Stats summarizes a decoded forest.
type Stats struct {
	Roots            int            `json:"roots" yaml:"roots"`
	Nodes            int            `json:"nodes" yaml:"nodes"`
	MaxDepth         int            `json:"max_depth" yaml:"max_depth"`
	Properties       int            `json:"properties" yaml:"properties"`
	PropertiesByType map[string]int `json:"properties_by_type" yaml:"properties_by_type"`
	ArrayElements    int64          `json:"array_elements" yaml:"array_elements"`
	TopNames         []NameCount    `json:"top_names,omitempty" yaml:"top_names,omitempty"`
}

// NameCount is the number of nodes carrying a name.
type NameCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Summarize computes Stats, keeping the topN most frequent node names.
func Summarize(nodes []fbx.Node, topN int) Stats {
	s := Stats{
		Roots:            len(nodes),
		PropertiesByType: make(map[string]int),
	}
	names := make(map[string]int)

	_ = Walk(nodes, func(chain []string, n *fbx.Node) error {
		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, len(chain))
		names[n.Name]++
		for _, p := range n.Properties {
			s.Properties++
			s.PropertiesByType[p.Type().String()]++
			if p.Type().IsArray() {
				s.ArrayElements += int64(fbx.Len(p))
			}
		}
		return nil
	})

	if topN > 0 {
		s.TopNames = topNames(names, topN)
	}
	return s
}

func topNames(names map[string]int, n int) []NameCount {
	counts := make([]NameCount, 0, len(names))
	for name, c := range names {
		counts = append(counts, NameCount{Name: name, Count: c})
	}
	slices.SortFunc(counts, func(a, b NameCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

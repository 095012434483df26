package query

import (
	"errors"
	"fmt"

	"github.com/haxelion/fbx3d/pkg/fbx"
)

// ErrSkipChildren is returned by a WalkFunc to skip the children of the current node.
var ErrSkipChildren = errors.New("skip children")

// WalkFunc is called for every node with the chain of names from its root. The chain
// is reused between calls and must be copied to be retained.
type WalkFunc func(chain []string, n *fbx.Node) error

// Walk visits the forest depth-first in on-disk order.
func Walk(nodes []fbx.Node, fn WalkFunc) error {
	chain := make([]string, 0, 16)
	return walk(nodes, chain, fn)
}

func walk(nodes []fbx.Node, chain []string, fn WalkFunc) error {
	for i := range nodes {
		n := &nodes[i]
		c := append(chain, n.Name)
		err := fn(c, n)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(n.Children, c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Select returns every node whose name chain matches p, in on-disk order.
func Select(nodes []fbx.Node, p Path) []*fbx.Node {
	var out []*fbx.Node
	selectAt(nodes, p, 0, &out)
	return out
}

func selectAt(nodes []fbx.Node, p Path, depth int, out *[]*fbx.Node) {
	if depth >= len(p) {
		return
	}
	for i := range nodes {
		n := &nodes[i]
		if !p.matchesAt(depth, n.Name) {
			continue
		}
		if depth == len(p)-1 {
			*out = append(*out, n)
			continue
		}
		selectAt(n.Children, p, depth+1, out)
	}
}

// First returns the first node matching p, or nil.
func First(nodes []fbx.Node, p Path) *fbx.Node {
	if matches := Select(nodes, p); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// Execute runs q over the forest.
func Execute(nodes []fbx.Node, q Query) ([]*fbx.Node, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	matches := Select(nodes, q.Path)
	if len(q.Where) == 0 {
		return matches, nil
	}

	results := matches[:0]
	for _, n := range matches {
		ok := true
		for i := range q.Where {
			if !q.Where[i].Match(n) {
				ok = false
				break
			}
		}
		if ok {
			results = append(results, n)
		}
	}
	return results, nil
}

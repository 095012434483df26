package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haxelion/fbx3d/pkg/fbx"
)

// Wildcard is the path segment that matches any node name.
const Wildcard = "*"

// Path selects nodes by the chain of names from a root node, e.g. Objects/Geometry.
type Path []string

// ParsePath parses a slash separated path. Leading and trailing slashes are ignored.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	p := Path(strings.Split(s, "/"))
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the path has at least one segment and no empty segments.
func (p Path) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("path cannot be empty")
	}
	for i, seg := range p {
		if seg == "" {
			return fmt.Errorf("empty path segment at position %d", i)
		}
	}
	return nil
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// matchesAt reports whether segment i matches name.
func (p Path) matchesAt(i int, name string) bool {
	return p[i] == Wildcard || p[i] == name
}

// Matches reports whether the name chain matches the whole path.
func (p Path) Matches(chain []string) bool {
	if len(chain) != len(p) {
		return false
	}
	for i, name := range chain {
		if !p.matchesAt(i, name) {
			return false
		}
	}
	return true
}

// PropertyQuery is a condition on one property of a node
type PropertyQuery struct {
	Index    int    // Property position in the node's property list
	Operator string // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    string // Value to compare against, parsed as a number for numeric properties
}

var validOps = map[string]bool{
	"=": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
}

// ParsePropertyQuery parses conditions like "2=Mesh" or "0>=100".
func ParsePropertyQuery(s string) (PropertyQuery, error) {
	i := strings.IndexAny(s, "=!<>")
	if i <= 0 {
		return PropertyQuery{}, fmt.Errorf("invalid property query %q: want <index><op><value>", s)
	}
	index, err := strconv.Atoi(s[:i])
	if err != nil {
		return PropertyQuery{}, fmt.Errorf("invalid property index in %q: %w", s, err)
	}

	rest := s[i:]
	op := rest[:1]
	if len(rest) > 1 && rest[1] == '=' {
		op = rest[:2]
	}
	q := PropertyQuery{Index: index, Operator: op, Value: rest[len(op):]}
	if err := q.Validate(); err != nil {
		return PropertyQuery{}, err
	}
	return q, nil
}

// Validate checks if the query is properly formed
func (q *PropertyQuery) Validate() error {
	if q.Index < 0 {
		return fmt.Errorf("property index cannot be negative: %d", q.Index)
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	if !validOps[q.Operator] {
		return fmt.Errorf("invalid operator: %s", q.Operator)
	}
	return nil
}

// Match reports whether n satisfies the condition. Nodes without the property, array
// properties and raw properties never match.
func (q *PropertyQuery) Match(n *fbx.Node) bool {
	p := n.Property(q.Index)
	if p == nil {
		return false
	}

	if s, ok := p.(fbx.String); ok {
		return compare(strings.Compare(string(s), q.Value), q.Operator)
	}

	v, ok := scalar(p)
	if !ok {
		return false
	}
	want, err := strconv.ParseFloat(q.Value, 64)
	if err != nil {
		if _, isBool := p.(fbx.Bool); !isBool {
			return false
		}
		if want, err = boolValue(q.Value); err != nil {
			return false
		}
	}

	switch {
	case v < want:
		return compare(-1, q.Operator)
	case v > want:
		return compare(1, q.Operator)
	default:
		return compare(0, q.Operator)
	}
}

func compare(c int, op string) bool {
	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case "<":
		return c < 0
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	}
	return false
}

func boolValue(s string) (float64, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return 0, err
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// scalar converts numeric and boolean properties to float64.
func scalar(p fbx.Property) (float64, bool) {
	switch v := p.(type) {
	case fbx.Bool:
		if v {
			return 1, true
		}
		return 0, true
	case fbx.Int16:
		return float64(v), true
	case fbx.Int32:
		return float64(v), true
	case fbx.Int64:
		return float64(v), true
	case fbx.Float32:
		return float64(v), true
	case fbx.Float64:
		return float64(v), true
	}
	return 0, false
}

// Query selects nodes by path and filters them by property conditions.
type Query struct {
	Path  Path
	Where []PropertyQuery
}

// Validate checks the path and every condition.
func (q *Query) Validate() error {
	if err := q.Path.Validate(); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	for i := range q.Where {
		if err := q.Where[i].Validate(); err != nil {
			return fmt.Errorf("invalid condition %d: %w", i, err)
		}
	}
	return nil
}

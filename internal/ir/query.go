package ir

import (
	"fmt"
	"sort"

	"github.com/antchfx/xpath"
)

// Select evaluates expr with n as the context node and returns the matching
// element nodes once each, in document order. Attribute and text matches are
// ignored.
func Select(n *Node, expr *xpath.Expr) []*Node {
	seen := make(map[*Node]bool)
	var out []*Node

	iter := expr.Select(CreateNavigator(n))
	for iter.MoveNext() {
		nav, ok := iter.Current().(*Navigator)
		if !ok || nav.OnAttribute() {
			continue
		}
		m := nav.Current()
		if m == nil || m.IsText() || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}

	SortDocumentOrder(out)
	return out
}

// SelectString compiles expr and evaluates it like Select.
func SelectString(n *Node, expr string) ([]*Node, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return Select(n, e), nil
}

// SelectFirst returns the first match of expr in document order, or nil.
func SelectFirst(n *Node, expr *xpath.Expr) *Node {
	if m := Select(n, expr); len(m) > 0 {
		return m[0]
	}
	return nil
}

// SortDocumentOrder sorts nodes of one tree by their pre-order position.
func SortDocumentOrder(nodes []*Node) {
	if len(nodes) < 2 {
		return
	}
	pos := make(map[*Node]int)
	i := 0
	nodes[0].Root().Walk(func(d *Node) bool {
		pos[d] = i
		i++
		return true
	})
	sort.SliceStable(nodes, func(a, b int) bool {
		return pos[nodes[a]] < pos[nodes[b]]
	})
}

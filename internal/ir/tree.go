package ir

import (
	"fmt"
	"strings"
)

// Parent returns the parent of n, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Ancestor returns the ancestor levels above n (1 is the parent), or nil.
func (n *Node) Ancestor(levels int) *Node {
	a := n
	for i := 0; i < levels && a != nil; i++ {
		a = a.parent
	}
	return a
}

// HasAncestor reports whether any ancestor of n has the given kind.
func (n *Node) HasAncestor(kind Kind) bool {
	for a := n.parent; a != nil; a = a.parent {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Remove detaches n from its parent and returns it.
func (n *Node) Remove() *Node {
	p := n.parent
	if p == nil {
		return n
	}
	i := n.Index()
	kids := make([]*Node, 0, len(p.Children)-1)
	kids = append(kids, p.Children[:i]...)
	kids = append(kids, p.Children[i+1:]...)
	p.Children = kids
	n.parent = nil
	return n
}

// AppendChild detaches c from wherever it is and appends it to n.
func (n *Node) AppendChild(c *Node) {
	if c == nil || c == n {
		return
	}
	c.Remove()
	c.parent = n
	n.Children = append(n.Children, c)
}

// AddPrevSibling detaches c and inserts it immediately before n.
func (n *Node) AddPrevSibling(c *Node) bool {
	if n.parent == nil || c == nil || c == n {
		return false
	}
	c.Remove()
	n.parent.insertAt(n.Index(), c)
	return true
}

// AddNextSibling detaches c and inserts it immediately after n.
func (n *Node) AddNextSibling(c *Node) bool {
	if n.parent == nil || c == nil || c == n {
		return false
	}
	c.Remove()
	n.parent.insertAt(n.Index()+1, c)
	return true
}

func (n *Node) insertAt(i int, c *Node) {
	kids := make([]*Node, 0, len(n.Children)+1)
	kids = append(kids, n.Children[:i]...)
	kids = append(kids, c)
	kids = append(kids, n.Children[i:]...)
	n.Children = kids
	c.parent = n
}

// ReplaceWith puts nodes in the place n occupies and detaches n.
func (n *Node) ReplaceWith(nodes ...*Node) bool {
	if n.parent == nil {
		return false
	}
	for _, c := range nodes {
		if c == n {
			return false
		}
	}
	for _, c := range nodes {
		c.Remove()
	}

	p := n.parent
	i := n.Index()
	kids := make([]*Node, 0, len(p.Children)+len(nodes)-1)
	kids = append(kids, p.Children[:i]...)
	kids = append(kids, nodes...)
	kids = append(kids, p.Children[i+1:]...)
	p.Children = kids
	for _, c := range nodes {
		c.parent = p
	}
	n.parent = nil
	return true
}

// Unwrap replaces n by its own children.
func (n *Node) Unwrap() bool {
	kids := append([]*Node(nil), n.Children...)
	return n.ReplaceWith(kids...)
}

// Elements returns the non-text children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// NextElement returns the next sibling of n that is not a text node.
func (n *Node) NextElement() *Node {
	if n.parent == nil {
		return nil
	}
	sib := n.parent.Children
	for i := n.Index() + 1; i < len(sib); i++ {
		if !sib[i].IsText() {
			return sib[i]
		}
	}
	return nil
}

// PrevElement returns the previous sibling of n that is not a text node.
func (n *Node) PrevElement() *Node {
	if n.parent == nil {
		return nil
	}
	sib := n.parent.Children
	for i := n.Index() - 1; i >= 0; i-- {
		if !sib[i].IsText() {
			return sib[i]
		}
	}
	return nil
}

// FirstChildOf returns the first child of one of the given kinds.
func (n *Node) FirstChildOf(kinds ...Kind) *Node {
	for _, c := range n.Children {
		if c.isOneOf(kinds) {
			return c
		}
	}
	return nil
}

// ChildrenOf returns the children of n whose kind is one of kinds.
func (n *Node) ChildrenOf(kinds ...Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.isOneOf(kinds) {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) isOneOf(kinds []Kind) bool {
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of every text node below n.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(d *Node) bool {
		if d.IsText() {
			sb.WriteString(d.Text)
		}
		return true
	})
	return sb.String()
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range append([]*Node(nil), n.Children...) {
		c.Walk(fn)
	}
}

// WalkPost visits the descendants of n before n itself. fn may replace the
// visited node in its parent; the traversal works on a snapshot of each
// child list.
func (n *Node) WalkPost(fn func(*Node)) {
	for _, c := range append([]*Node(nil), n.Children...) {
		c.WalkPost(fn)
	}
	fn(n)
}

// Find returns every node below and including n for which match is true.
func (n *Node) Find(match func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if match(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of n, detached from any parent.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:   n.ID,
		Kind: n.Kind,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Path returns a positional path such as /iso-standard/sections/clause[2].
func (n *Node) Path() string {
	if n.parent == nil {
		return "/" + string(n.Kind)
	}
	pos := 1
	for _, s := range n.parent.Children {
		if s == n {
			break
		}
		if s.Kind == n.Kind {
			pos++
		}
	}
	return fmt.Sprintf("%s/%s[%d]", n.parent.Path(), n.Kind, pos)
}

package ir

import (
	"github.com/antchfx/xpath"
)

// Navigator implements xpath.NodeNavigator over a node tree so that
// structural patterns can be written as XPath expressions.
//
// Like an XML document, the tree sits below a virtual document node: the
// topmost Node is an element child of it, so "//annex" also matches annexes
// placed directly under the tree root. A nil curr means the navigator is on
// the virtual node. The node id is exposed as the "id" attribute.
type Navigator struct {
	root *Node
	curr *Node
	attr int
}

// CreateNavigator returns a navigator positioned on n.
func CreateNavigator(n *Node) *Navigator {
	return &Navigator{
		root: n.Root(),
		curr: n,
		attr: -1,
	}
}

// Current returns the node the navigator is positioned on, or nil on the
// virtual document node.
func (nav *Navigator) Current() *Node {
	return nav.curr
}

// OnAttribute reports whether the navigator is positioned on an attribute.
func (nav *Navigator) OnAttribute() bool {
	return nav.attr >= 0
}

func (nav *Navigator) NodeType() xpath.NodeType {
	switch {
	case nav.curr == nil:
		return xpath.RootNode
	case nav.attr >= 0:
		return xpath.AttributeNode
	case nav.curr.IsText():
		return xpath.TextNode
	default:
		return xpath.ElementNode
	}
}

func (nav *Navigator) LocalName() string {
	switch {
	case nav.curr == nil:
		return ""
	case nav.attr >= 0:
		return nav.curr.attrNames()[nav.attr]
	case nav.curr.IsText():
		return ""
	}
	return string(nav.curr.Kind)
}

func (nav *Navigator) Prefix() string {
	return ""
}

func (nav *Navigator) Value() string {
	switch {
	case nav.curr == nil:
		return nav.root.TextContent()
	case nav.attr >= 0:
		return nav.curr.Attr(nav.curr.attrNames()[nav.attr])
	}
	return nav.curr.TextContent()
}

func (nav *Navigator) Copy() xpath.NodeNavigator {
	c := *nav
	return &c
}

func (nav *Navigator) MoveToRoot() {
	nav.curr = nil
	nav.attr = -1
}

func (nav *Navigator) MoveToParent() bool {
	if nav.curr == nil {
		return false
	}
	if nav.attr >= 0 {
		nav.attr = -1
		return true
	}
	nav.curr = nav.curr.parent
	return true
}

func (nav *Navigator) MoveToNextAttribute() bool {
	if nav.curr == nil || nav.attr+1 >= len(nav.curr.attrNames()) {
		return false
	}
	nav.attr++
	return true
}

func (nav *Navigator) MoveToChild() bool {
	if nav.attr >= 0 {
		return false
	}
	if nav.curr == nil {
		nav.curr = nav.root
		return true
	}
	if len(nav.curr.Children) == 0 {
		return false
	}
	nav.curr = nav.curr.Children[0]
	return true
}

func (nav *Navigator) MoveToFirst() bool {
	if nav.curr == nil || nav.attr >= 0 || nav.curr.parent == nil {
		return false
	}
	nav.curr = nav.curr.parent.Children[0]
	return true
}

func (nav *Navigator) MoveToNext() bool {
	if nav.curr == nil || nav.attr >= 0 || nav.curr.parent == nil {
		return false
	}
	sib := nav.curr.parent.Children
	i := nav.curr.Index()
	if i+1 >= len(sib) {
		return false
	}
	nav.curr = sib[i+1]
	return true
}

func (nav *Navigator) MoveToPrevious() bool {
	if nav.curr == nil || nav.attr >= 0 || nav.curr.parent == nil {
		return false
	}
	i := nav.curr.Index()
	if i <= 0 {
		return false
	}
	nav.curr = nav.curr.parent.Children[i-1]
	return true
}

func (nav *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.root != nav.root {
		return false
	}
	nav.curr = o.curr
	nav.attr = o.attr
	return true
}

package ir

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Node is an element or text node of the document tree.
//
// A node owns its children. The parent pointer is a non-owning back-reference
// kept up to date by the edit methods in tree.go; code outside this package
// must not assign Children of a linked node directly.
type Node struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     Kind              `json:"kind" yaml:"kind"`
	Text     string            `json:"text,omitempty" yaml:"text,omitempty"` // text nodes only
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`

	parent *Node
}

// NewElement creates an element node and adopts the given children.
func NewElement(kind Kind, id string, children ...*Node) *Node {
	n := &Node{
		ID:   id,
		Kind: kind,
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{
		Kind: KindText,
		Text: text,
	}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	if name == "id" {
		return n.ID
	}
	return n.Attrs[name]
}

// SetAttr sets an attribute and returns n for chaining.
func (n *Node) SetAttr(name, value string) *Node {
	if name == "id" {
		n.ID = value
		return n
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
	return n
}

// Flag reports whether a boolean attribute is set to "true".
func (n *Node) Flag(name string) bool {
	return strings.EqualFold(n.Attrs[name], "true")
}

// attrNames lists the attribute names of n in a stable order, id first.
func (n *Node) attrNames() []string {
	names := make([]string, 0, len(n.Attrs)+1)
	if n.ID != "" {
		names = append(names, "id")
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return append(names, keys...)
}

// Title returns the trimmed text of the first title child.
func (n *Node) Title() string {
	t := n.FirstChildOf(KindTitle)
	if t == nil {
		return ""
	}
	return strings.Join(strings.Fields(t.TextContent()), " ")
}

// String describes the node for error messages.
func (n *Node) String() string {
	if n.ID != "" {
		return fmt.Sprintf("%s#%s", n.Kind, n.ID)
	}
	return string(n.Kind)
}

// UnmarshalJSON decodes a node and re-links the parent pointers of its children.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Node(p)

	kids := n.Children[:0]
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		c.parent = n
		kids = append(kids, c)
	}
	n.Children = kids
	return nil
}

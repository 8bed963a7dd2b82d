package ir

import "strings"

// NewParagraph creates a paragraph holding a single text node.
func NewParagraph(text string, inline ...*Node) *Node {
	p := NewElement(KindParagraph, "")
	if text != "" {
		p.AppendChild(NewText(text))
	}
	for _, c := range inline {
		p.AppendChild(c)
	}
	return p
}

// NewTitle creates a title element.
func NewTitle(text string) *Node {
	return NewElement(KindTitle, "", NewText(text))
}

// NewSection creates a section of the given kind with an optional title.
func NewSection(kind Kind, id, title string, children ...*Node) *Node {
	s := NewElement(kind, id)
	if title != "" {
		s.AppendChild(NewTitle(title))
	}
	for _, c := range children {
		s.AppendChild(c)
	}
	return s
}

// NewClause creates a generic clause.
func NewClause(id, title string, children ...*Node) *Node {
	return NewSection(KindClause, id, title, children...)
}

// IsBlank reports whether n has neither elements nor non-whitespace text.
func (n *Node) IsBlank() bool {
	return len(n.Elements()) == 0 && strings.TrimSpace(n.TextContent()) == ""
}

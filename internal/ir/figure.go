package ir

// NewFigure creates a figure with an optional title.
func NewFigure(id, title string, children ...*Node) *Node {
	return NewSection(KindFigure, id, title, children...)
}

// NewFormula creates a formula holding one stem expression.
func NewFormula(id, expr string) *Node {
	return NewElement(KindFormula, id, NewElement(KindStem, "", NewText(expr)))
}

// NewBibItem creates a bibliographic entry cited as citeAs.
func NewBibItem(id, citeAs, title string) *Node {
	b := NewElement(KindBibItem, id)
	if title != "" {
		b.AppendChild(NewTitle(title))
	}
	if citeAs != "" {
		b.AppendChild(NewElement(KindDocIdentifier, "", NewText(citeAs)))
	}
	return b
}

// MarkUnnumbered sets the unnumbered flag and returns n.
func MarkUnnumbered(n *Node) *Node {
	return n.SetAttr("unnumbered", "true")
}

package ir

// NewDefinitionList creates a dl from alternating term/definition strings.
// A trailing term without definition gets an empty dd.
func NewDefinitionList(pairs ...string) *Node {
	dl := NewElement(KindDefList, "")
	for i := 0; i < len(pairs); i += 2 {
		dl.AppendChild(NewElement(KindDefTerm, "", NewText(pairs[i])))
		dd := NewElement(KindDefDesc, "")
		if i+1 < len(pairs) {
			dd.AppendChild(NewParagraph(pairs[i+1]))
		}
		dl.AppendChild(dd)
	}
	return dl
}

// NewList creates an ordered or bullet list of text items.
func NewList(ordered bool, items ...string) *Node {
	kind := KindBulletList
	if ordered {
		kind = KindOrderedList
	}
	l := NewElement(kind, "")
	for _, item := range items {
		l.AppendChild(NewElement(KindListItem, "", NewParagraph(item)))
	}
	return l
}

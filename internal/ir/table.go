package ir

// NewTable creates a table with a body of rows x cols empty cells.
func NewTable(id string, rows, cols int) *Node {
	table := NewElement(KindTable, id)
	body := NewElement(KindTableBody, "")
	for i := 0; i < rows; i++ {
		row := NewElement(KindRow, "")
		for j := 0; j < cols; j++ {
			row.AppendChild(NewElement(KindCell, ""))
		}
		body.AppendChild(row)
	}
	table.AppendChild(body)
	return table
}

// TableCell returns the body cell at the given position, or nil.
func TableCell(table *Node, row, col int) *Node {
	body := table.FirstChildOf(KindTableBody)
	if body == nil {
		return nil
	}
	rows := body.ChildrenOf(KindRow)
	if row < 0 || row >= len(rows) {
		return nil
	}
	cells := rows[row].ChildrenOf(KindCell, KindHeaderCell)
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// SetCell replaces the content of a body cell with text.
func SetCell(table *Node, row, col int, text string) {
	cell := TableCell(table, row, col)
	if cell == nil {
		return
	}
	for _, c := range append([]*Node(nil), cell.Children...) {
		c.Remove()
	}
	cell.AppendChild(NewText(text))
}

// TableFooter returns the first footer cell of table, creating a footer with
// one row and one cell when the table has none.
func TableFooter(table *Node) *Node {
	foot := table.FirstChildOf(KindTableFoot)
	if foot == nil {
		foot = NewElement(KindTableFoot, "")
		table.AppendChild(foot)
	}
	row := foot.FirstChildOf(KindRow)
	if row == nil {
		row = NewElement(KindRow, "")
		foot.AppendChild(row)
	}
	cell := row.FirstChildOf(KindCell, KindHeaderCell)
	if cell == nil {
		cell = NewElement(KindCell, "")
		row.AppendChild(cell)
	}
	return cell
}

// NewFootnote creates a table footnote keyed by reference.
func NewFootnote(id, reference, text string) *Node {
	fn := NewElement(KindFootnote, id, NewParagraph(text))
	if reference != "" {
		fn.SetAttr("reference", reference)
	}
	return fn
}

// NewNote creates a note with one paragraph.
func NewNote(id, text string) *Node {
	return NewElement(KindNote, id, NewParagraph(text))
}

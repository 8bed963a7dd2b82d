package xref

import (
	"strconv"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/roboco-io/isoanchor/internal/ir"
)

var (
	figureExpr  = xpath.MustCompile(".//figure | .//sourcecode[not(ancestor::example)]")
	tableExpr   = xpath.MustCompile(".//table")
	formulaExpr = xpath.MustCompile(".//formula")
)

// assets numbers figures, tables and formulas. The preface and the main
// body share one frame unless hierarchical numbering gives each top-level
// clause its own; every labelled annex is a frame of its own. Unnumbered
// annexes continue the shared frame.
func (s *build) assets(doc *ir.Document) {
	sep := s.opts.Separator
	main := newFrame("", sep)

	if front := doc.Front(); front != nil {
		s.frameAssets(front, main)
	}

	if body := doc.Body(); body != nil {
		if !s.opts.Hierarchical {
			s.frameAssets(body, main)
		} else {
			for _, c := range body.Elements() {
				f := main
				if label := s.labels[c]; label != "" {
					f = newFrame(label, sep)
				}
				s.frameAssets(c, f)
			}
		}
	}

	if back := doc.Back(); back != nil {
		for _, c := range back.Elements() {
			f := main
			if label := s.labels[c]; c.Kind == ir.KindAnnex && label != "" {
				f = newFrame(label, sep)
			}
			s.frameAssets(c, f)
		}
	}
}

func (s *build) frameAssets(scope *ir.Node, f *frame) {
	s.figures(scope, f)

	for _, t := range ir.Select(scope, tableExpr) {
		f.tables.increment(t)
		if t.ID == "" {
			continue
		}
		if t.Flag("unnumbered") {
			s.unnumbered(t, 0, "")
			continue
		}
		num := f.label(f.tables)
		s.assign(Anchor{
			ID:    t.ID,
			Label: num,
			XRef:  s.prefix(LabelTable) + " " + num,
			Type:  TypeTable,
		})
	}

	for _, e := range ir.Select(scope, formulaExpr) {
		f.formulas.increment(e)
		if e.ID == "" {
			continue
		}
		if e.Flag("unnumbered") {
			s.unnumbered(e, 0, "")
			continue
		}
		typ, key := typeOf(e)
		num := f.label(f.formulas)
		s.assign(Anchor{
			ID:    e.ID,
			Label: num,
			XRef:  s.prefix(key) + " (" + num + ")",
			Type:  typ,
		})
	}
}

// figures numbers the figures of a frame. A figure directly inside another
// figure is a sub-figure: it shares the parent's number and takes the next
// letter. Sub-figures without id or with the unnumbered flag still use up a
// letter.
func (s *build) figures(scope *ir.Node, f *frame) {
	j := 0
	for _, fig := range ir.Select(scope, figureExpr) {
		if p := fig.Parent(); p != nil && p.Kind == ir.KindFigure {
			j++
		} else {
			j = 0
			f.figures.increment(fig)
		}

		if fig.ID == "" {
			continue
		}
		if fig.Flag("unnumbered") {
			s.unnumbered(fig, 0, "")
			continue
		}

		num := f.label(f.figures)
		a := Anchor{
			ID:    fig.ID,
			Label: num,
			XRef:  s.prefix(LabelFigure) + " " + num,
			Type:  TypeFigure,
		}
		if j > 0 {
			sub := subLabel(j)
			a.Label = sub
			a.XRef += " " + sub
		}
		s.assign(a)
	}
}

// tableParts labels footnotes and notes of every table. Both belong to the
// table they sit in, not to any table nested inside it.
func (s *build) tableParts(root *ir.Node) {
	for _, table := range root.Find(func(n *ir.Node) bool { return n.Kind == ir.KindTable }) {
		s.tableFootnotes(table)
		s.tableNotes(table)
	}
}

// tableFootnotes gives each distinct footnote reference of a table a letter.
// Footnotes repeating a reference share its letter.
func (s *build) tableFootnotes(table *ir.Node) {
	marks := make(map[string]string)
	for _, fn := range ownDescendants(table, ir.KindFootnote) {
		key := fn.Attr("reference")
		if key == "" {
			key = fn.ID
		}
		if key == "" {
			continue
		}
		mark, ok := marks[key]
		if !ok {
			mark = letters(len(marks)+1, 'a')
			marks[key] = mark
		}

		if fn.ID == "" {
			continue
		}
		if table.ID == "" {
			s.diagnose(fn, DiagMissingContainer, "footnote of a table without id")
		}
		s.assign(Anchor{
			ID:        fn.ID,
			Label:     mark,
			XRef:      s.prefix(LabelFootnote) + " " + mark,
			Type:      TypeFootnote,
			Container: table.ID,
		})
	}
}

// tableNotes labels the notes of a table "NOTE", or "NOTE 1", "NOTE 2", ...
// when there are several.
func (s *build) tableNotes(table *ir.Node) {
	notes := table.ChildrenOf(ir.KindNote)
	for i, n := range notes {
		if n.ID == "" {
			continue
		}
		label := s.prefix(LabelNote)
		if len(notes) > 1 {
			label += " " + strconv.Itoa(i+1)
		}
		if table.ID == "" {
			s.diagnose(n, DiagMissingContainer, "note of a table without id")
		}
		s.assign(Anchor{
			ID:        n.ID,
			Label:     label,
			XRef:      label,
			Type:      TypeNote,
			Container: table.ID,
		})
	}
}

// bibliography labels bibliographic items by their citation text. A ref
// counts as an item only as direct content of a bibliographic section.
func (s *build) bibliography(n *ir.Node, scoped bool) {
	for _, c := range n.Children {
		if c.Kind == ir.KindBibItem || (scoped && c.Kind == ir.KindRef) {
			s.reference(c)
		}
		s.bibliography(c, c.Kind.IsBibliographic())
	}
}

func (s *build) reference(n *ir.Node) {
	if n.ID == "" {
		return
	}
	label := strings.TrimSpace(n.Attr("citeas"))
	if label == "" {
		if d := n.FirstChildOf(ir.KindDocIdentifier); d != nil {
			label = strings.Join(strings.Fields(d.TextContent()), " ")
		}
	}
	if label == "" {
		label = n.ID
	}
	s.assign(Anchor{
		ID:    n.ID,
		Label: label,
		XRef:  stripAllParts(label),
		Type:  TypeBibItem,
	})
}

// unassigned gives every numberable node left without an entry an
// unnumbered one, and reports it.
func (s *build) unassigned(root *ir.Node) {
	root.Walk(func(n *ir.Node) bool {
		if n.ID == "" || s.reg.Has(n.ID) || !numberable(n) {
			return true
		}
		s.unnumbered(n, 0, "")
		s.diagnose(n, DiagUnassigned, "no numbering namespace covers this node")
		return true
	})
}

func numberable(n *ir.Node) bool {
	switch n.Kind {
	case ir.KindClause, ir.KindTerms, ir.KindTerm, ir.KindDefinitions, ir.KindReferences,
		ir.KindAnnex, ir.KindAppendix, ir.KindFigure, ir.KindTable, ir.KindFormula, ir.KindBibItem:
		return true
	case ir.KindSourcecode:
		return !n.HasAncestor(ir.KindExample)
	}
	return n.Kind.IsReservedSection()
}

func ownDescendants(table *ir.Node, kind ir.Kind) []*ir.Node {
	var out []*ir.Node
	for _, c := range table.Children {
		c.Walk(func(d *ir.Node) bool {
			if d.Kind == ir.KindTable {
				return false
			}
			if d.Kind == kind {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

package normalize

import (
	"log/slog"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/roboco-io/isoanchor/internal/ir"
)

// run carries the state shared by the passes of one Normalize call.
type run struct {
	reserved map[string]ir.Kind
	logger   *slog.Logger
}

type pass struct {
	name  string
	apply func(r *run, root *ir.Node) int
}

// passes run in this order. Later passes rely on the placement done by
// earlier ones, e.g. back-matter grouping sees sections already classified.
var passes = []pass{
	{"classify-sections", classifySections},
	{"front-matter", relocateFrontMatter},
	{"term-markers", unwrapTermMarkers},
	{"isotitle-emphasis", stripTitleEmphasis},
	{"table-notes", moveTableNotes},
	{"formula-where", mergeFormulaWhere},
	{"figure-key", mergeFigureKey},
	{"example-figures", promoteExampleFigures},
	{"back-matter", groupBackMatter},
	{"paragraph-refs", hoistParagraphRefs},
}

var (
	titledClauses   = xpath.MustCompile("/*/sections/clause[title] | /*/preface/clause[title] | /*/back/clause[title] | /*/clause[title]")
	prefaceExpr     = xpath.MustCompile("//preface")
	forewordExpr    = xpath.MustCompile("//foreword")
	introExpr       = xpath.MustCompile("//introduction")
	termDefStems    = xpath.MustCompile("//termdef/p/stem")
	paraTermDomains = xpath.MustCompile("//p/termdomain")
	isoTitles       = xpath.MustCompile("//isotitle")
	tableFootNotes  = xpath.MustCompile("//tfoot/tr/td/note | //tfoot/tr/th/note")
	formulas        = xpath.MustCompile("//formula")
	figures         = xpath.MustCompile("//figure")
	annexes         = xpath.MustCompile("//annex")
	bibliographies  = xpath.MustCompile("//bibliography")
	paraRefs        = xpath.MustCompile("//p/ref")
)

// classifySections retags top-level clauses whose title names a reserved
// section. Subclauses keep their kind whatever their title.
func classifySections(r *run, root *ir.Node) int {
	n := 0
	for _, c := range ir.Select(root, titledClauses) {
		kind, ok := r.reserved[foldTitle(c.Title())]
		if !ok {
			continue
		}
		c.Kind = kind
		n++
	}
	return n
}

// relocateFrontMatter moves the first foreword and then the first
// introduction to the end of the preface, each on its own.
func relocateFrontMatter(r *run, root *ir.Node) int {
	front := ir.SelectFirst(root, prefaceExpr)
	if front == nil {
		return 0
	}

	n := 0
	for _, expr := range []*xpath.Expr{forewordExpr, introExpr} {
		s := ir.SelectFirst(root, expr)
		if s == nil || s.Parent() == front {
			continue
		}
		front.AppendChild(s)
		n++
	}
	return n
}

// unwrapTermMarkers flattens paragraphs that only wrap term designations,
// lifts lone stems out of definition paragraphs and moves domain markers
// out of their paragraph.
func unwrapTermMarkers(r *run, root *ir.Node) int {
	n := 0

	// Post-order, so a paragraph nested in another is unwrapped first and
	// the outer one sees the hoisted markers.
	root.WalkPost(func(p *ir.Node) {
		if p.Kind != ir.KindParagraph || p.Parent() == nil {
			return
		}
		for _, c := range p.Children {
			if c.Kind.IsTermMarker() {
				p.Unwrap()
				n++
				return
			}
		}
	})

	for _, stem := range ir.Select(root, termDefStems) {
		p := stem.Parent()
		if len(p.Elements()) != 1 {
			continue
		}
		sym := ir.NewElement(ir.KindTermSymbol, "")
		if !p.ReplaceWith(sym) {
			continue
		}
		sym.AppendChild(stem)
		n++
	}

	// Reverse order keeps several domains of one paragraph in sequence.
	doms := ir.Select(root, paraTermDomains)
	for i := len(doms) - 1; i >= 0; i-- {
		if doms[i].Parent().AddNextSibling(doms[i]) {
			n++
		}
	}
	return n
}

// stripTitleEmphasis replaces an isotitle made of a single emphasis by the
// emphasis content.
func stripTitleEmphasis(r *run, root *ir.Node) int {
	n := 0
	for _, t := range ir.Select(root, isoTitles) {
		for {
			els := t.Elements()
			if len(els) != 1 || els[0].Kind != ir.KindEm || strings.TrimSpace(ownText(t)) != "" {
				break
			}
			for _, c := range t.Children {
				if c.IsText() {
					c.Remove()
				}
			}
			els[0].Unwrap()
			n++
		}
	}
	return n
}

// moveTableNotes moves notes found in a table footer cell up to the table.
func moveTableNotes(r *run, root *ir.Node) int {
	n := 0
	for _, note := range ir.Select(root, tableFootNotes) {
		table := note.Ancestor(4)
		if table == nil || table.Kind != ir.KindTable {
			r.logger.Debug("footer note outside a table", "path", note.Path())
			continue
		}
		table.AppendChild(note)
		n++
	}
	return n
}

func mergeFormulaWhere(r *run, root *ir.Node) int {
	return mergeExplanation(root, formulas, func(s string) bool {
		return s == "where"
	})
}

func mergeFigureKey(r *run, root *ir.Node) int {
	return mergeExplanation(root, figures, func(s string) bool {
		return strings.TrimSpace(s) == "Key"
	})
}

// mergeExplanation handles the pattern <block> <p>label</p> <dl>: the
// paragraph is dropped and the list moves inside the block.
func mergeExplanation(root *ir.Node, blocks *xpath.Expr, isLabel func(string) bool) int {
	n := 0
	for _, b := range ir.Select(root, blocks) {
		p := b.NextElement()
		if p == nil || p.Kind != ir.KindParagraph || !isLabel(p.TextContent()) {
			continue
		}
		dl := p.NextElement()
		if dl == nil || dl.Kind != ir.KindDefList {
			continue
		}
		p.Remove()
		b.AppendChild(dl)
		n++
	}
	return n
}

// promoteExampleFigures retags examples that contain a figure as figures, so
// that they take part in figure numbering.
func promoteExampleFigures(r *run, root *ir.Node) int {
	n := 0
	root.WalkPost(func(e *ir.Node) {
		if e.Kind == ir.KindExample && e.FirstChildOf(ir.KindFigure) != nil {
			e.Kind = ir.KindFigure
			n++
		}
	})
	return n
}

// groupBackMatter collects annexes and then bibliographies into a back
// container at the end of the root.
func groupBackMatter(r *run, root *ir.Node) int {
	anns := ir.Select(root, annexes)
	bibs := ir.Select(root, bibliographies)
	if len(anns)+len(bibs) == 0 {
		return 0
	}

	back := root.FirstChildOf(ir.KindBack)
	if back == nil {
		back = ir.NewElement(ir.KindBack, "")
	}
	n := 0
	if back.Parent() != root || back.Index() != len(root.Children)-1 {
		root.AppendChild(back)
		n++
	}

	wanted := append(anns, bibs...)
	if sameNodes(back.Elements(), wanted) {
		return n
	}
	for _, s := range wanted {
		back.AppendChild(s)
		n++
	}
	return n
}

// hoistParagraphRefs moves references out of paragraphs so that each sits
// immediately before the paragraph that held it.
func hoistParagraphRefs(r *run, root *ir.Node) int {
	n := 0
	for _, ref := range ir.Select(root, paraRefs) {
		if ref.Parent().AddPrevSibling(ref) {
			n++
		}
	}
	return n
}

func ownText(n *ir.Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func sameNodes(a, b []*ir.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

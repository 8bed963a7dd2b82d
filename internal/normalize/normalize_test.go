package normalize

import (
	"testing"

	"github.com/roboco-io/isoanchor/internal/ir"
)

func kindsOf(nodes []*ir.Node) []ir.Kind {
	out := make([]ir.Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}
	return out
}

func sameKinds(a, b []ir.Kind) bool {
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

func normalize(t *testing.T, doc *ir.Document) *Report {
	t.Helper()
	report, err := New(Options{}).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return report
}

// scatteredDocument has annexes and a bibliography before, between and after
// the main body, plus most of the patterns the passes rewrite.
func scatteredDocument() *ir.Document {
	doc := ir.NewDocument()
	doc.AddPreface(ir.NewSection(ir.Kind("abstract"), "abs", "Abstract"))
	doc.AddToRoot(ir.NewSection(ir.KindAnnex, "annexA", "Precision"))
	doc.AddSection(ir.NewClause("fwd", "Foreword", ir.NewParagraph("This document was prepared by ISO/TC 34.")))
	doc.AddSection(ir.NewClause("intro", "Introduction", ir.NewParagraph("Rice is a cereal.")))
	doc.AddSection(ir.NewClause("scope", "Scope"))
	doc.AddToRoot(ir.NewClause("biblio", "Bibliography", ir.NewBibItem("ISO3696", "ISO 3696", "Water for analytical laboratory use")))
	doc.AddSection(ir.NewClause("general", "General",
		ir.NewFormula("eq1", "w = m1 / m0"),
		ir.NewParagraph("where"),
		ir.NewDefinitionList("w", "mass fraction"),
		ir.NewFigure("fig1", "Apparatus"),
		ir.NewParagraph(" Key "),
		ir.NewDefinitionList("1", "funnel"),
	))
	doc.AddToRoot(ir.NewSection(ir.KindAnnex, "annexB", "Results"))
	return doc
}

func TestNormalize_BackMatterOrder(t *testing.T) {
	doc := scatteredDocument()
	normalize(t, doc)

	want := []ir.Kind{ir.KindPreface, ir.KindSections, ir.KindBack}
	if got := kindsOf(doc.Root.Children); !sameKinds(got, want) {
		t.Fatalf("root children: got %v, want %v", got, want)
	}

	back := doc.Back()
	var ids []string
	for _, c := range back.Elements() {
		ids = append(ids, c.ID)
	}
	if len(ids) != 3 || ids[0] != "annexA" || ids[1] != "annexB" || ids[2] != "biblio" {
		t.Errorf("expected back matter [annexA annexB biblio], got %v", ids)
	}
	if back.Children[2].Kind != ir.KindBibliography {
		t.Errorf("expected bibliography kind, got %s", back.Children[2].Kind)
	}
	if !doc.Normalized {
		t.Error("expected document to be marked normalized")
	}
}

func TestNormalize_FrontMatter(t *testing.T) {
	doc := scatteredDocument()
	normalize(t, doc)

	front := doc.Front()
	want := []ir.Kind{ir.Kind("abstract"), ir.KindForeword, ir.KindIntroduction}
	if got := kindsOf(front.Children); !sameKinds(got, want) {
		t.Errorf("preface children: got %v, want %v", got, want)
	}
	if doc.Body().Children[0].Kind != ir.KindScope {
		t.Errorf("expected scope first in body, got %s", doc.Body().Children[0].Kind)
	}
}

func TestNormalize_FrontMatterWithoutPreface(t *testing.T) {
	doc := ir.NewDocument()
	doc.AddSection(ir.NewClause("intro", "Introduction"))

	normalize(t, doc)

	if doc.Front() != nil {
		t.Error("expected no preface to be created")
	}
	if doc.Body().Children[0].Kind != ir.KindIntroduction {
		t.Error("expected introduction to stay in the body")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := scatteredDocument()
	normalize(t, doc)
	first := ir.Digest(doc.Root)

	report := normalize(t, doc)
	if report.Changed() {
		t.Errorf("second run changed the tree: %s != %s", report.DigestBefore, report.DigestAfter)
	}
	if ir.Digest(doc.Root) != first {
		t.Error("digest differs after second run")
	}

	stable, err := New(Options{}).Verify(doc)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !stable {
		t.Error("expected Verify to report a stable tree")
	}
}

func TestVerify_DetectsUnnormalizedTree(t *testing.T) {
	doc := scatteredDocument()
	before := ir.Digest(doc.Root)

	stable, err := New(Options{}).Verify(doc)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if stable {
		t.Error("expected Verify to report pending rewrites")
	}
	if ir.Digest(doc.Root) != before {
		t.Error("Verify must not modify the document")
	}
}

func TestNormalize_FormulaWhere(t *testing.T) {
	doc := scatteredDocument()
	normalize(t, doc)

	var clause *ir.Node
	for _, c := range doc.Body().Children {
		if c.ID == "general" {
			clause = c
		}
	}
	if clause == nil {
		t.Fatal("clause general not found")
	}

	want := []ir.Kind{ir.KindTitle, ir.KindFormula, ir.KindFigure}
	if got := kindsOf(clause.Children); !sameKinds(got, want) {
		t.Fatalf("clause children: got %v, want %v", got, want)
	}

	formula := clause.Children[1]
	if formula.FirstChildOf(ir.KindDefList) == nil {
		t.Error("expected definition list inside formula")
	}
	figure := clause.Children[2]
	if figure.FirstChildOf(ir.KindDefList) == nil {
		t.Error("expected key list inside figure")
	}
}

func TestNormalize_WhereNeedsExactText(t *testing.T) {
	doc := ir.NewDocument()
	clause := ir.NewClause("c", "",
		ir.NewFormula("eq1", "x"),
		ir.NewParagraph("where:"),
		ir.NewDefinitionList("x", "unknown"),
	)
	doc.AddSection(clause)

	normalize(t, doc)

	if len(clause.Children) != 3 {
		t.Errorf("expected no merge for %q, got %v", "where:", kindsOf(clause.Children))
	}
}

func TestNormalize_TableFooterNote(t *testing.T) {
	table := ir.NewTable("tab1", 2, 2)
	note := ir.NewNote("tab1n", "Values are means.")
	ir.TableFooter(table).AppendChild(note)

	doc := ir.NewDocument()
	doc.AddSection(ir.NewClause("c", "", table))

	report := normalize(t, doc)

	if note.Parent() != table {
		t.Fatalf("expected note moved to table, got %s", note.Path())
	}
	if table.Children[len(table.Children)-1] != note {
		t.Error("expected note to be the last child of the table")
	}
	if report.Passes[4].Name != "table-notes" || report.Passes[4].Rewrites != 1 {
		t.Errorf("unexpected table-notes result: %+v", report.Passes[4])
	}
}

func TestNormalize_FooterNoteOutsideTable(t *testing.T) {
	foot := ir.NewElement(ir.KindTableFoot, "",
		ir.NewElement(ir.KindRow, "", ir.NewElement(ir.KindCell, "", ir.NewNote("n1", "stray"))))
	wrapper := ir.NewElement(ir.KindQuote, "", ir.NewElement(ir.KindClause, "", foot))

	doc := ir.NewDocument()
	doc.AddSection(ir.NewClause("c", "", wrapper))

	normalize(t, doc)

	if doc.Root.Find(func(n *ir.Node) bool { return n.ID == "n1" })[0].Parent().Kind != ir.KindCell {
		t.Error("note must stay in place when no table is four levels up")
	}
}

func TestNormalize_ExampleWithFigure(t *testing.T) {
	inner := ir.NewElement(ir.KindExample, "ex2", ir.NewFigure("f2", ""))
	outer := ir.NewElement(ir.KindExample, "ex1", ir.NewFigure("f1", ""), inner)

	doc := ir.NewDocument()
	doc.AddSection(ir.NewClause("c", "", outer))

	normalize(t, doc)

	if inner.Kind != ir.KindFigure || outer.Kind != ir.KindFigure {
		t.Errorf("expected both examples promoted, got %s and %s", outer.Kind, inner.Kind)
	}
}

func TestNormalize_TermMarkers(t *testing.T) {
	admitted := ir.NewElement(ir.KindAdmittedTerm, "", ir.NewText("paddy"))
	stem := ir.NewElement(ir.KindStem, "", ir.NewText("m"))
	domain := ir.NewElement(ir.KindTermDomain, "", ir.NewText("agriculture"))
	defPara := ir.NewParagraph("", stem)
	domPara := ir.NewParagraph("rice retaining its husk ", domain)

	term := ir.NewElement(ir.KindTerm, "term-paddy",
		ir.NewParagraph("", admitted),
		ir.NewElement(ir.KindTermDef, "", defPara),
		domPara,
	)
	doc := ir.NewDocument()
	doc.AddSection(ir.NewSection(ir.KindTermsDefs, "terms", "Terms and definitions", term))

	normalize(t, doc)

	if admitted.Parent() != term {
		t.Errorf("expected admitted term unwrapped into term, got %s", admitted.Path())
	}

	sym := stem.Parent()
	if sym == nil || sym.Kind != ir.KindTermSymbol || sym.Parent().Kind != ir.KindTermDef {
		t.Errorf("expected stem wrapped in termsymbol under termdef, got %s", stem.Path())
	}

	if domPara.NextElement() != domain {
		t.Errorf("expected termdomain right after its paragraph, got %s", domain.Path())
	}
}

func TestNormalize_IsoTitleEmphasis(t *testing.T) {
	title := ir.NewElement(ir.KindISOTitle, "",
		ir.NewText(" "),
		ir.NewElement(ir.KindEm, "", ir.NewText("Rice"), ir.NewText(" specification")),
		ir.NewText("\n"),
	)
	mixed := ir.NewElement(ir.KindISOTitle, "",
		ir.NewText("Cereals: "),
		ir.NewElement(ir.KindEm, "", ir.NewText("rice")),
	)
	doc := ir.NewDocument()
	doc.AddPreface(ir.NewElement(ir.KindClause, "", title, mixed))

	normalize(t, doc)

	if got := title.TextContent(); got != "Rice specification" {
		t.Errorf("expected emphasis stripped, got %q", got)
	}
	if len(title.Elements()) != 0 {
		t.Errorf("expected no element children, got %v", kindsOf(title.Elements()))
	}
	if len(mixed.Elements()) != 1 {
		t.Error("title with surrounding text must keep its emphasis")
	}
}

func TestNormalize_ParagraphRefs(t *testing.T) {
	r1 := ir.NewElement(ir.KindRef, "r1")
	r2 := ir.NewElement(ir.KindRef, "r2")
	p := ir.NewParagraph("See ", r1, ir.NewText(" and "), r2)
	refs := ir.NewSection(ir.KindReferences, "refs", "", p)

	doc := ir.NewDocument()
	doc.AddSection(refs)

	normalize(t, doc)

	want := []ir.Kind{ir.KindRef, ir.KindRef, ir.KindParagraph}
	if got := kindsOf(refs.Children); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if refs.Children[0] != r1 || refs.Children[1] != r2 {
		t.Error("expected references in original order")
	}
}

func TestNormalize_CustomReservedTitles(t *testing.T) {
	doc := ir.NewDocument()
	c := ir.NewClause("c", "Domaine d'application")
	doc.AddSection(c)

	n := New(Options{ReservedTitles: map[string]ir.Kind{
		"Domaine d'application": ir.KindScope,
	}})
	if _, err := n.Normalize(doc); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if c.Kind != ir.KindScope {
		t.Errorf("expected scope, got %s", c.Kind)
	}
}

func TestNormalize_ReservedTitlesOnlyAtTopLevel(t *testing.T) {
	doc := ir.NewDocument()
	doc.AddPreface(ir.NewSection(ir.KindForeword, "fwd", "Foreword"))
	nestedScope := ir.NewClause("c1a", "Scope")
	nestedIntro := ir.NewClause("c1c", "Introduction")
	nestedBiblio := ir.NewClause("c1d", "Bibliography")
	general := ir.NewClause("c1", "General",
		nestedScope,
		ir.NewClause("c1b", "Requirements"),
		nestedIntro,
		nestedBiblio,
	)
	scope := ir.NewClause("scope", "Scope")
	doc.AddSection(scope)
	doc.AddSection(general)

	normalize(t, doc)

	if scope.Kind != ir.KindScope {
		t.Errorf("top-level Scope: expected scope, got %s", scope.Kind)
	}
	for _, c := range []*ir.Node{nestedScope, nestedIntro, nestedBiblio} {
		if c.Kind != ir.KindClause {
			t.Errorf("%s: expected subclause to stay a clause, got %s", c.ID, c.Kind)
		}
		if c.Parent() != general {
			t.Errorf("%s: moved out of its clause to %s", c.ID, c.Path())
		}
	}
	if doc.Back() != nil {
		t.Error("expected no back matter for a nested Bibliography")
	}
	if got := kindsOf(doc.Front().Children); !sameKinds(got, []ir.Kind{ir.KindForeword}) {
		t.Errorf("preface children: got %v", got)
	}
}

func TestNormalize_NilDocument(t *testing.T) {
	if _, err := New(Options{}).Normalize(nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestPassNames(t *testing.T) {
	names := PassNames()
	if len(names) != 10 {
		t.Fatalf("expected 10 passes, got %d", len(names))
	}
	if names[0] != "classify-sections" || names[9] != "paragraph-refs" {
		t.Errorf("unexpected pass order: %v", names)
	}
}

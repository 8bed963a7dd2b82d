package ir

import (
	"testing"
)

func kinds(nodes []*Node) []Kind {
	out := make([]Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}
	return out
}

func equalKinds(a, b []Kind) bool {
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

func TestNode_AppendChildMoves(t *testing.T) {
	a := NewElement(KindClause, "a")
	b := NewElement(KindClause, "b")
	fig := NewFigure("f1", "")
	a.AppendChild(fig)

	b.AppendChild(fig)

	if len(a.Children) != 0 {
		t.Errorf("expected figure removed from a, got %d children", len(a.Children))
	}
	if fig.Parent() != b {
		t.Error("expected figure parent b")
	}
}

func TestNode_Siblings(t *testing.T) {
	p := NewParagraph("x")
	ref := NewElement(KindRef, "r1")
	parent := NewElement(KindClause, "c", NewText(" "), p, NewText(" "))

	p.AddPrevSibling(ref)
	want := []Kind{KindText, KindRef, KindParagraph, KindText}
	if got := kinds(parent.Children); !equalKinds(got, want) {
		t.Errorf("after AddPrevSibling: got %v, want %v", got, want)
	}

	dom := NewElement(KindTermDomain, "")
	p.AddNextSibling(dom)
	want = []Kind{KindText, KindRef, KindParagraph, KindTermDomain, KindText}
	if got := kinds(parent.Children); !equalKinds(got, want) {
		t.Errorf("after AddNextSibling: got %v, want %v", got, want)
	}

	if p.NextElement() != dom {
		t.Error("NextElement should skip text and return termdomain")
	}
	if p.PrevElement() != ref {
		t.Error("PrevElement should return ref")
	}
}

func TestNode_Unwrap(t *testing.T) {
	term := NewElement(KindAdmittedTerm, "", NewText("rice"))
	p := NewParagraph("", term)
	def := NewElement(KindTermDef, "", p)

	if !p.Unwrap() {
		t.Fatal("unwrap failed")
	}
	if len(def.Children) != 1 || def.Children[0] != term {
		t.Fatalf("expected admitted term hoisted, got %v", kinds(def.Children))
	}
	if term.Parent() != def {
		t.Error("expected hoisted term parent to be termdef")
	}
	if p.Parent() != nil {
		t.Error("expected unwrapped paragraph to be detached")
	}
}

func TestNode_ReplaceWith(t *testing.T) {
	old := NewParagraph("old")
	parent := NewElement(KindClause, "", NewTitle("T"), old)
	n1 := NewParagraph("one")
	n2 := NewParagraph("two")

	old.ReplaceWith(n1, n2)

	want := []Kind{KindTitle, KindParagraph, KindParagraph}
	if got := kinds(parent.Children); !equalKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if parent.Children[1].TextContent() != "one" || parent.Children[2].TextContent() != "two" {
		t.Error("replacement order not preserved")
	}
}

func TestNode_Path(t *testing.T) {
	doc := NewDocument()
	doc.AddSection(NewClause("c1", ""))
	fig := NewFigure("f", "")
	doc.AddSection(NewClause("c2", "", NewParagraph("x"), fig))

	want := "/iso-standard/sections[1]/clause[2]/figure[1]"
	if got := fig.Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestNode_WalkPostOrder(t *testing.T) {
	inner := NewElement(KindExample, "inner")
	outer := NewElement(KindExample, "outer", inner)

	var order []string
	outer.WalkPost(func(n *Node) {
		order = append(order, n.ID)
	})

	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("expected [inner outer], got %v", order)
	}
}

func TestNode_TextContentAndTitle(t *testing.T) {
	c := NewClause("c", "  Terms \n and   definitions ")
	if got := c.Title(); got != "Terms and definitions" {
		t.Errorf("Title() = %q", got)
	}

	p := NewParagraph("a", NewElement(KindEm, "", NewText("b")), NewText("c"))
	if got := p.TextContent(); got != "abc" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestTableHelpers(t *testing.T) {
	table := NewTable("t1", 2, 3)
	SetCell(table, 1, 2, "81,2")

	if got := TableCell(table, 1, 2).TextContent(); got != "81,2" {
		t.Errorf("cell text = %q", got)
	}
	if TableCell(table, 2, 0) != nil {
		t.Error("expected nil for out-of-range row")
	}

	cell := TableFooter(table)
	if cell.Kind != KindCell || cell.Ancestor(3) != table {
		t.Errorf("footer cell should be three levels below the table, got %s", cell.Path())
	}
	if TableFooter(table) != cell {
		t.Error("TableFooter should reuse the existing footer cell")
	}
}

func TestNewDefinitionList(t *testing.T) {
	dl := NewDefinitionList("r", "repeatability limit", "R")

	want := []Kind{KindDefTerm, KindDefDesc, KindDefTerm, KindDefDesc}
	if got := kinds(dl.Children); !equalKinds(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

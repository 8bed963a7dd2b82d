// Package xref computes the anchor registry of a normalized document: one
// entry per addressable node, carrying the display label, the text used to
// cite it and the numbering namespace it belongs to.
//
// The builder never modifies the tree. Counters are values owned by the
// traversal that uses them, so independent builds can run concurrently on
// independent documents.
package xref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roboco-io/isoanchor/internal/ir"
)

// Builder computes anchor registries.
type Builder struct {
	opts Options
}

// Result is the output of Build.
type Result struct {
	Registry    *Registry
	Diagnostics []Diagnostic
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Options returns the effective options, defaults included.
func (b *Builder) Options() Options {
	return b.opts
}

// Build walks doc once per numbering namespace and returns the registry.
// doc must have been normalized, and node ids must be unique.
func (b *Builder) Build(doc *ir.Document) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("xref: document has no root")
	}
	if !doc.Normalized {
		return nil, nodeError(doc.Root, ErrNotNormalized)
	}
	if err := checkIDs(doc.Root); err != nil {
		return nil, err
	}

	s := &build{
		opts:   b.opts,
		reg:    NewRegistry(),
		labels: make(map[*ir.Node]string),
	}

	s.introduction(doc.Root)
	if front := doc.Front(); front != nil {
		s.preface(front)
	}
	if body := doc.Body(); body != nil {
		s.mainBody(body)
	}
	if back := doc.Back(); back != nil {
		s.back(back)
	}
	s.orphanAppendices(doc.Root)
	s.assets(doc)
	s.tableParts(doc.Root)
	s.bibliography(doc.Root, false)
	s.unassigned(doc.Root)

	return &Result{
		Registry:    s.reg,
		Diagnostics: s.diags,
	}, nil
}

// build is the state of one Build call.
type build struct {
	opts  Options
	reg   *Registry
	diags []Diagnostic

	// labels of top-level clauses and annexes, id-less ones included,
	// used as asset frame prefixes.
	labels map[*ir.Node]string
}

var (
	subclauseKinds   = []ir.Kind{ir.KindClause, ir.KindTerms, ir.KindTerm, ir.KindDefinitions, ir.KindReferences}
	annexClauseKinds = []ir.Kind{ir.KindClause, ir.KindReferences}
)

// assign records a unless the node has no id or already has an entry. The
// namespaces run from most to least specific, so the first entry wins.
func (s *build) assign(a Anchor) {
	if a.ID == "" || s.reg.Has(a.ID) {
		return
	}
	s.reg.put(a)
}

func (s *build) prefix(key string) string {
	return s.opts.Labels[key]
}

func (s *build) diagnose(n *ir.Node, code, msg string) {
	s.diags = append(s.diags, Diagnostic{
		Code:    code,
		Kind:    n.Kind,
		ID:      n.ID,
		Path:    n.Path(),
		Message: msg,
	})
}

// introduction labels the introduction "0" and its clauses "0.1", "0.2", ...
// An introduction without clauses is left to the preface namespace.
func (s *build) introduction(root *ir.Node) {
	intro := firstOf(root, ir.KindIntroduction)
	if intro == nil {
		return
	}
	clauses := intro.ChildrenOf(ir.KindClause)
	if len(clauses) == 0 {
		return
	}

	s.assign(Anchor{
		ID:    intro.ID,
		Label: "0",
		XRef:  intro.Title(),
		Level: 1,
		Type:  TypeClause,
	})
	for i, c := range clauses {
		s.section(c, "0."+strconv.Itoa(i+1), 2, subclauseKinds, "")
	}
}

func (s *build) preface(front *ir.Node) {
	for _, c := range front.Elements() {
		s.unnumberedSection(c, 1, "")
	}
}

// mainBody numbers the top-level clauses of the body. Reserved sections
// are structural and take no number.
func (s *build) mainBody(body *ir.Node) {
	i := 0
	for _, c := range body.Elements() {
		switch {
		case c.Kind.IsReservedSection():
			s.unnumberedSection(c, 1, "")
		case isClause(c.Kind):
			if c.Flag("unnumbered") {
				s.unnumberedSection(c, 1, "")
				continue
			}
			i++
			num := strconv.Itoa(i)
			s.labels[c] = num
			s.assign(Anchor{
				ID:    c.ID,
				Label: num,
				XRef:  s.prefix(LabelClause) + " " + num,
				Level: 1,
				Type:  TypeClause,
			})
			s.subsections(c, num, 2, subclauseKinds, "")
		}
	}
}

func (s *build) back(back *ir.Node) {
	k := 0
	for _, c := range back.Elements() {
		if c.Kind != ir.KindAnnex {
			s.unnumberedSection(c, 1, "")
			continue
		}

		s.appendices(c)
		if c.Flag("unnumbered") {
			s.unnumberedSection(c, 1, "")
			continue
		}
		k++
		label := annexLabel(s.opts.AnnexStyle, k)
		s.labels[c] = label
		s.assign(Anchor{
			ID:    c.ID,
			Label: label,
			XRef:  s.prefix(LabelAnnex) + " " + label,
			Level: 1,
			Type:  TypeAnnex,
		})
		s.subsections(c, label, 2, annexClauseKinds, "")
	}
}

// appendices numbers the appendices of one annex, independently of the
// annex's own clauses.
func (s *build) appendices(annex *ir.Node) {
	for i, app := range annex.ChildrenOf(ir.KindAppendix) {
		s.appendix(app, i+1, annex.ID)
	}
}

func (s *build) orphanAppendices(root *ir.Node) {
	ordinal := make(map[*ir.Node]int)
	for _, app := range root.Find(func(n *ir.Node) bool {
		return n.Kind == ir.KindAppendix && (n.Parent() == nil || n.Parent().Kind != ir.KindAnnex)
	}) {
		ordinal[app.Parent()]++
		s.appendix(app, ordinal[app.Parent()], "")
	}
}

func (s *build) appendix(app *ir.Node, n int, container string) {
	num := s.prefix(LabelAppendix) + " " + strconv.Itoa(n)
	if container == "" {
		s.diagnose(app, DiagMissingContainer, "appendix has no owning annex")
	}
	s.assign(Anchor{
		ID:        app.ID,
		Label:     num,
		XRef:      num,
		Level:     2,
		Type:      TypeAppendix,
		Container: container,
	})
	s.subsections(app, num, 3, annexClauseKinds, container)
}

// section labels n with num and its subclauses with the dotted rule.
// Subclause cross-references carry no "Clause" prefix.
func (s *build) section(n *ir.Node, num string, level int, kinds []ir.Kind, container string) {
	s.assign(Anchor{
		ID:        n.ID,
		Label:     num,
		XRef:      num,
		Level:     level,
		Type:      TypeClause,
		Container: container,
	})
	s.subsections(n, num, level+1, kinds, container)
}

func (s *build) subsections(n *ir.Node, num string, level int, kinds []ir.Kind, container string) {
	i := 0
	for _, c := range n.ChildrenOf(kinds...) {
		if c.Flag("unnumbered") {
			s.unnumberedSection(c, level, container)
			continue
		}
		i++
		s.section(c, num+"."+strconv.Itoa(i), level, kinds, container)
	}
}

// unnumberedSection gives n and its subsections entries without labels.
func (s *build) unnumberedSection(n *ir.Node, level int, container string) {
	s.unnumbered(n, level, container)
	for _, c := range n.ChildrenOf(subclauseKinds...) {
		s.unnumberedSection(c, level+1, container)
	}
}

// unnumbered records an entry whose cross-reference text is the node title,
// or "<prefix> (??)" for untitled nodes.
func (s *build) unnumbered(n *ir.Node, level int, container string) {
	typ, key := typeOf(n)
	text := n.Title()
	if text == "" {
		text = strings.TrimSpace(s.prefix(key) + " (??)")
	}
	s.assign(Anchor{
		ID:         n.ID,
		XRef:       text,
		Level:      level,
		Type:       typ,
		Container:  container,
		Unnumbered: true,
	})
}

// typeOf returns the numbering type of n and its label prefix key.
func typeOf(n *ir.Node) (Type, string) {
	switch n.Kind {
	case ir.KindAnnex:
		return TypeAnnex, LabelAnnex
	case ir.KindAppendix:
		return TypeAppendix, LabelAppendix
	case ir.KindFigure, ir.KindSourcecode:
		return TypeFigure, LabelFigure
	case ir.KindTable:
		return TypeTable, LabelTable
	case ir.KindFormula:
		if n.Flag("inequality") {
			return TypeInequality, LabelInequality
		}
		return TypeFormula, LabelFormula
	case ir.KindNote:
		return TypeNote, LabelNote
	case ir.KindFootnote:
		return TypeFootnote, LabelFootnote
	case ir.KindBibItem, ir.KindRef:
		return TypeBibItem, ""
	default:
		return TypeClause, LabelClause
	}
}

func isClause(k ir.Kind) bool {
	switch k {
	case ir.KindClause, ir.KindTerms, ir.KindDefinitions, ir.KindReferences:
		return true
	}
	return false
}

// checkIDs fails on the second node carrying an id already seen.
func checkIDs(root *ir.Node) error {
	seen := make(map[string]*ir.Node)
	var dup error
	root.Walk(func(n *ir.Node) bool {
		if dup != nil {
			return false
		}
		if n.ID == "" {
			return true
		}
		if first, ok := seen[n.ID]; ok {
			dup = nodeError(n, fmt.Errorf("%w, first defined at %s", ErrDuplicateID, first.Path()))
			return false
		}
		seen[n.ID] = n
		return true
	})
	return dup
}

func firstOf(root *ir.Node, kind ir.Kind) *ir.Node {
	var found *ir.Node
	root.Walk(func(n *ir.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

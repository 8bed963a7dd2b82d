// Package normalize rewrites a freshly parsed document tree so that it meets
// the placement rules of the target schema: front matter in the preface,
// annexes and bibliographies in the back matter, table notes under their
// table, key and "where" lists inside their figure or formula, and so on.
//
// Every pass is idempotent and tolerates the absence of the structure it
// looks for.
package normalize

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/roboco-io/isoanchor/internal/ir"
)

// Options configures a Normalizer.
type Options struct {
	// ReservedTitles maps a lower-case section title to the reserved section
	// kind it designates. Nil means DefaultReservedTitles.
	ReservedTitles map[string]ir.Kind

	Logger *slog.Logger
}

// DefaultReservedTitles returns the built-in reserved section vocabulary.
func DefaultReservedTitles() map[string]ir.Kind {
	return map[string]ir.Kind{
		"foreword":                  ir.KindForeword,
		"introduction":              ir.KindIntroduction,
		"scope":                     ir.KindScope,
		"normative references":      ir.KindNormRef,
		"terms and definitions":     ir.KindTermsDefs,
		"symbols and abbreviations": ir.KindSymbolsAbbrevs,
		"bibliography":              ir.KindBibliography,
		"patent notice":             ir.KindPatentNotice,
	}
}

// Normalizer applies the rewrite passes in their fixed order.
type Normalizer struct {
	reserved map[string]ir.Kind
	logger   *slog.Logger
}

// PassResult records what one pass did.
type PassResult struct {
	Name     string `json:"name"`
	Rewrites int    `json:"rewrites"`
}

// Report summarises one normalization run.
type Report struct {
	Passes       []PassResult `json:"passes"`
	DigestBefore string       `json:"digest_before"`
	DigestAfter  string       `json:"digest_after"`
}

// Changed reports whether the run modified the tree.
func (r *Report) Changed() bool {
	return r.DigestBefore != r.DigestAfter
}

// Rewrites returns the total number of rewrites over all passes.
func (r *Report) Rewrites() int {
	total := 0
	for _, p := range r.Passes {
		total += p.Rewrites
	}
	return total
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	reserved := opts.ReservedTitles
	if reserved == nil {
		reserved = DefaultReservedTitles()
	}
	folded := make(map[string]ir.Kind, len(reserved))
	for title, kind := range reserved {
		folded[foldTitle(title)] = kind
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Normalizer{
		reserved: folded,
		logger:   logger,
	}
}

// Normalize runs every pass over doc and marks it normalized.
func (n *Normalizer) Normalize(doc *ir.Document) (*Report, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("normalize: document has no root")
	}

	r := &run{
		reserved: n.reserved,
		logger:   n.logger,
	}
	report := &Report{
		DigestBefore: ir.Digest(doc.Root),
	}

	for _, p := range passes {
		count := p.apply(r, doc.Root)
		report.Passes = append(report.Passes, PassResult{
			Name:     p.name,
			Rewrites: count,
		})
		n.logger.Debug("normalize pass finished",
			"pass", p.name,
			"rewrites", count,
		)
	}

	report.DigestAfter = ir.Digest(doc.Root)
	doc.Normalized = true
	return report, nil
}

// Verify normalizes a copy of doc and reports whether the copy is left
// unchanged, i.e. whether doc is already in normal form.
func (n *Normalizer) Verify(doc *ir.Document) (bool, error) {
	report, err := n.Normalize(doc.Clone())
	if err != nil {
		return false, err
	}
	return !report.Changed(), nil
}

// PassNames lists the passes in the order they run.
func PassNames() []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.name
	}
	return names
}

func foldTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

package xref

import (
	"regexp"
	"strconv"
	"strings"
)

// AnnexStyle selects how annexes are labelled.
type AnnexStyle string

const (
	AnnexLetter AnnexStyle = "letter"
	AnnexNumber AnnexStyle = "number"
)

// Label prefix keys. Options.Labels may override any of them.
const (
	LabelClause      = "clause"
	LabelAnnex       = "annex"
	LabelAppendix    = "appendix"
	LabelFigure      = "figure"
	LabelTable       = "table"
	LabelFormula     = "formula"
	LabelInequality  = "inequality"
	LabelNote        = "note"
	LabelFootnote    = "footnote"
	LabelWholeOfText = "wholeoftext"
)

// DefaultLabels returns the English label prefixes.
func DefaultLabels() map[string]string {
	return map[string]string{
		LabelClause:      "Clause",
		LabelAnnex:       "Annex",
		LabelAppendix:    "Appendix",
		LabelFigure:      "Figure",
		LabelTable:       "Table",
		LabelFormula:     "Formula",
		LabelInequality:  "Inequality",
		LabelNote:        "NOTE",
		LabelFootnote:    "Footnote",
		LabelWholeOfText: "Whole of text",
	}
}

// Options configures a Builder.
type Options struct {
	AnnexStyle AnnexStyle

	// Hierarchical numbers assets of the main body per top-level clause
	// ("Figure 3.2") instead of sequentially ("Figure 7").
	Hierarchical bool

	// Separator joins a frame prefix and an asset number. Defaults to ".".
	Separator string

	// Labels overrides entries of DefaultLabels.
	Labels map[string]string
}

func (o Options) withDefaults() Options {
	if o.AnnexStyle == "" {
		o.AnnexStyle = AnnexLetter
	}
	if o.Separator == "" {
		o.Separator = "."
	}
	labels := DefaultLabels()
	for k, v := range o.Labels {
		labels[k] = v
	}
	o.Labels = labels
	return o
}

// annexLabel returns the label of the n-th annex (1-based).
func annexLabel(style AnnexStyle, n int) string {
	if style == AnnexNumber {
		return strconv.Itoa(n)
	}
	return letters(n, 'A')
}

// subLabel returns the sub-figure label for position j (1-based): a), b), ...
func subLabel(j int) string {
	return letters(j, 'a') + ")"
}

// letters converts n >= 1 to bijective base-26: 1 is "a", 26 is "z", 27 is
// "aa".
func letters(n int, base byte) string {
	if n < 1 {
		return ""
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, base+byte(n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

var allParts = regexp.MustCompile(`(?i)\s*\(all parts\)$`)

// stripAllParts removes a trailing "(All Parts)" qualifier from a citation.
func stripAllParts(s string) string {
	return allParts.ReplaceAllString(strings.TrimSpace(s), "")
}

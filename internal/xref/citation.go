package xref

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locality narrows a citation to part of the cited document.
type Locality struct {
	Type string `json:"type" yaml:"type"`
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
}

// Citation is a reference to a bibliographic item, optionally narrowed by
// localities.
type Citation struct {
	Target     string     `json:"target" yaml:"target"`
	CiteAs     string     `json:"citeas,omitempty" yaml:"citeas,omitempty"`
	Text       string     `json:"text,omitempty" yaml:"text,omitempty"`
	Localities []Locality `json:"localities,omitempty" yaml:"localities,omitempty"`
}

// ievTarget is the Electropedia citation, whose clause numbers are printed
// without the "Clause" prefix.
const ievTarget = "IEV"

// FormatCitation renders the display text of c, e.g.
// "ISO 712, Clause 1, Table 1". Explicit text is used as is. Without
// CiteAs, the target must be in reg. labels overrides entries of
// DefaultLabels and may be nil.
func FormatCitation(reg *Registry, c Citation, labels map[string]string) (string, error) {
	if c.Text != "" {
		return c.Text, nil
	}

	base := c.CiteAs
	if base == "" {
		a, err := reg.Lookup(c.Target)
		if err != nil {
			return "", err
		}
		base = a.XRef
	}

	prefixes := Options{Labels: labels}.withDefaults().Labels
	var sb strings.Builder
	sb.WriteString(base)
	for _, l := range c.Localities {
		sb.WriteString(localityText(l, c.Target, prefixes))
	}
	return sb.String(), nil
}

func localityText(l Locality, target string, labels map[string]string) string {
	ref := l.From
	if l.To != "" {
		ref += "–" + l.To
	}

	switch l.Type {
	case "anchor":
		return ""
	case "whole":
		return ", " + labels[LabelWholeOfText]
	case "list":
		return " " + ref + ")"
	case "clause":
		if target == ievTarget || strings.Contains(l.From, ".") {
			return ", " + ref
		}
		return ", " + labels[LabelClause] + " " + ref
	}

	// Casers keep state, so each call gets its own.
	name := cases.Title(language.English).String(strings.TrimPrefix(l.Type, "locality:"))
	if ref == "" {
		return ", " + name
	}
	return ", " + name + " " + ref
}

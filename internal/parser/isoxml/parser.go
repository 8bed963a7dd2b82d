// Package isoxml loads ISO standards XML documents into the document tree.
package isoxml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/roboco-io/isoanchor/internal/ir"
	"github.com/roboco-io/isoanchor/internal/parser"
)

// Parser parses ISO XML documents.
type Parser struct {
	r       io.Reader
	file    *os.File
	options parser.Options
}

// New creates a parser for the XML file at path.
func New(path string, opts parser.Options) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XML file: %w", err)
	}
	return &Parser{
		r:       f,
		file:    f,
		options: opts,
	}, nil
}

// NewFromReader creates a parser reading from r.
func NewFromReader(r io.Reader, opts parser.Options) *Parser {
	return &Parser{
		r:       r,
		options: opts,
	}
}

// Parse implements the Parser interface.
func (p *Parser) Parse() (*ir.Document, error) {
	top, err := xmlquery.Parse(p.r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	var rootElem *xmlquery.Node
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			rootElem = c
			break
		}
	}
	if rootElem == nil {
		return nil, fmt.Errorf("XML document has no root element")
	}

	doc := ir.NewDocument()
	doc.Metadata = metadata(rootElem)
	doc.Root = p.convert(rootElem, scope{})
	return doc, nil
}

// Close releases resources.
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// scope is the part of the conversion state that depends on the enclosing
// elements. It is passed down by value, so a flag set for one section ends
// with that section.
type scope struct {
	termDef bool // inside a terms and definitions section
}

func (p *Parser) convert(x *xmlquery.Node, sc scope) *ir.Node {
	kind := kindOf(x.Data)
	switch {
	case kind == ir.KindReviewNote && !p.options.Draft:
		return nil
	case sc.termDef && kind == ir.KindNote:
		kind = ir.KindTermNote
	case sc.termDef && kind == ir.KindExample:
		kind = ir.KindTermExample
	}

	n := ir.NewElement(kind, "")
	for _, a := range x.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		n.SetAttr(a.Name.Local, a.Value)
	}
	if kind == ir.KindAnnex && n.Attr("subtype") == "" {
		n.SetAttr("subtype", "informative")
	}

	inner := sc
	if kind == ir.KindTermsDefs {
		inner.termDef = true
	}

	for c := x.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			if c.Data == "bibdata" {
				continue
			}
			if child := p.convert(c, inner); child != nil {
				n.AppendChild(child)
			}
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			n.AppendChild(ir.NewText(c.Data))
		}
	}
	return n
}

// kindOf maps an element name to a node kind. Section headings are
// written as <name> in some producers and <title> in others.
func kindOf(local string) ir.Kind {
	if local == "name" {
		return ir.KindTitle
	}
	return ir.Kind(local)
}

func metadata(root *xmlquery.Node) ir.Metadata {
	bib := child(root, "bibdata")
	if bib == nil {
		return ir.Metadata{}
	}

	md := ir.Metadata{
		Title:         text(child(bib, "title")),
		DocIdentifier: text(child(bib, "docidentifier")),
		Language:      text(child(bib, "language")),
		Script:        text(child(bib, "script")),
	}
	if status := child(bib, "status"); status != nil {
		md.Stage = text(child(status, "stage"))
	}
	for c := bib.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "date" && c.SelectAttr("type") == "created" {
			md.Created = text(child(c, "on"))
		}
	}
	return md
}

func child(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

func text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.InnerText()), " ")
}

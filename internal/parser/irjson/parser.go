// Package irjson loads document trees previously written by isoanchor as
// JSON, e.g. by "isoanchor normalize -f json".
package irjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/roboco-io/isoanchor/internal/ir"
	"github.com/roboco-io/isoanchor/internal/parser"
)

// Parser reads JSON document trees.
type Parser struct {
	r       io.Reader
	file    *os.File
	options parser.Options
}

// New creates a parser for the JSON file at path.
func New(path string, opts parser.Options) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	return &Parser{r: f, file: f, options: opts}, nil
}

// NewFromReader creates a parser reading from r.
func NewFromReader(r io.Reader, opts parser.Options) *Parser {
	return &Parser{r: r, options: opts}
}

// Parse implements the Parser interface. The normalized flag stored in the
// file is kept, so a tree written after normalization can go straight to
// the numbering engine.
func (p *Parser) Parse() (*ir.Document, error) {
	var doc ir.Document
	if err := json.NewDecoder(p.r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON tree: %w", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("JSON tree has no root")
	}
	if !p.options.Draft {
		for _, n := range doc.Root.Find(func(n *ir.Node) bool { return n.Kind == ir.KindReviewNote }) {
			n.Remove()
		}
	}
	return &doc, nil
}

// Close releases resources.
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

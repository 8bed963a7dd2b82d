// Package parser provides the interface between markup loaders and the
// document tree.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roboco-io/isoanchor/internal/ir"
)

// Parser is the interface for document loaders.
type Parser interface {
	// Parse reads the document and returns its tree.
	Parse() (*ir.Document, error)

	// Close releases any resources held by the parser.
	Close() error
}

// Format represents an input format.
type Format int

const (
	FormatUnknown Format = iota
	FormatISOXML         // ISO standards XML
	FormatIRJSON         // tree previously written by isoanchor
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatISOXML:
		return "isoxml"
	case FormatIRJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFormat detects the input format from the file path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xml":
		return FormatISOXML
	case ".json":
		return FormatIRJSON
	default:
		return FormatUnknown
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormatFromReader detects the format from the first non-blank byte.
func DetectFormatFromReader(r io.ReaderAt) (Format, error) {
	buf := make([]byte, 512)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("failed to read header: %w", err)
	}
	head := bytes.TrimLeft(bytes.TrimPrefix(buf[:n], utf8BOM), " \t\r\n")
	if len(head) == 0 {
		return FormatUnknown, fmt.Errorf("input is empty")
	}

	switch head[0] {
	case '<':
		return FormatISOXML, nil
	case '{':
		return FormatIRJSON, nil
	}
	return FormatUnknown, nil
}

// Options contains parser configuration options.
type Options struct {
	Draft bool // keep review notes, which are dropped from final documents
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		Draft: false,
	}
}

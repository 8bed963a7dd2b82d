package xref

import (
	"errors"
	"fmt"

	"github.com/roboco-io/isoanchor/internal/ir"
)

var (
	// ErrNotNormalized is returned when Build is given a tree that has not
	// been through the normalizer.
	ErrNotNormalized = errors.New("document is not normalized")

	// ErrDuplicateID is returned when two nodes share one id.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDanglingReference is returned for a lookup of an id that has no
	// registry entry.
	ErrDanglingReference = errors.New("dangling reference")
)

// NodeError locates a fatal problem in the tree.
type NodeError struct {
	Kind ir.Kind
	ID   string
	Path string
	Err  error
}

func (e *NodeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s at %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %q at %s: %v", e.Kind, e.ID, e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func nodeError(n *ir.Node, err error) *NodeError {
	return &NodeError{
		Kind: n.Kind,
		ID:   n.ID,
		Path: n.Path(),
		Err:  err,
	}
}

// Diagnostic codes.
const (
	DiagMissingContainer = "missing-container"
	DiagUnassigned       = "unassigned"
)

// Diagnostic reports a data-quality problem that did not stop the build.
type Diagnostic struct {
	Code    string  `json:"code" yaml:"code"`
	Kind    ir.Kind `json:"kind" yaml:"kind"`
	ID      string  `json:"id,omitempty" yaml:"id,omitempty"`
	Path    string  `json:"path" yaml:"path"`
	Message string  `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Code, d.Kind, d.Path, d.Message)
}

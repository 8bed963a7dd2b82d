package xref

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type is the numbering category of an anchor. Renderers use it to choose
// the label prefix.
type Type string

const (
	TypeClause     Type = "clause"
	TypeAnnex      Type = "annex"
	TypeAppendix   Type = "appendix"
	TypeFigure     Type = "figure"
	TypeTable      Type = "table"
	TypeFormula    Type = "formula"
	TypeInequality Type = "inequality"
	TypeNote       Type = "note"
	TypeFootnote   Type = "footnote"
	TypeBibItem    Type = "bibitem"
)

// Anchor is one registry entry.
type Anchor struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	XRef       string `json:"xref" yaml:"xref"`
	Level      int    `json:"level,omitempty" yaml:"level,omitempty"`
	Type       Type   `json:"type" yaml:"type"`
	Container  string `json:"container,omitempty" yaml:"container,omitempty"`
	Unnumbered bool   `json:"unnumbered,omitempty" yaml:"unnumbered,omitempty"`
}

// Registry maps node ids to anchors. Entries keep the order in which they
// were added.
type Registry struct {
	anchors map[string]Anchor
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		anchors: make(map[string]Anchor),
	}
}

// Add inserts a. It fails if the id is already present.
func (r *Registry) Add(a Anchor) error {
	if a.ID == "" {
		return errors.New("anchor without id")
	}
	if _, ok := r.anchors[a.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
	}
	r.put(a)
	return nil
}

func (r *Registry) put(a Anchor) {
	r.anchors[a.ID] = a
	r.order = append(r.order, a.ID)
}

// Lookup returns the anchor for id. A miss wraps ErrDanglingReference.
func (r *Registry) Lookup(id string) (Anchor, error) {
	a, ok := r.anchors[id]
	if !ok {
		return Anchor{}, fmt.Errorf("%w: %q", ErrDanglingReference, id)
	}
	return a, nil
}

// Has reports whether id has an entry.
func (r *Registry) Has(id string) bool {
	_, ok := r.anchors[id]
	return ok
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.order)
}

// IDs returns the ids in insertion order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Entries returns the anchors in insertion order.
func (r *Registry) Entries() []Anchor {
	out := make([]Anchor, len(r.order))
	for i, id := range r.order {
		out[i] = r.anchors[id]
	}
	return out
}

// ReferenceText returns the text used to cite id from elsewhere in the
// document. Anchors with a container are prefixed with the container's
// text, e.g. "Annex B, Appendix 2" or "Table 1, NOTE 2".
func (r *Registry) ReferenceText(id string) (string, error) {
	a, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	if a.Container == "" {
		return a.XRef, nil
	}
	c, err := r.Lookup(a.Container)
	if err != nil {
		return "", fmt.Errorf("container of %q: %w", id, err)
	}
	return c.XRef + ", " + a.XRef, nil
}

// CountByType returns the number of anchors of each type.
func (r *Registry) CountByType() map[Type]int {
	out := make(map[Type]int)
	for _, a := range r.anchors {
		out[a.Type]++
	}
	return out
}

func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

func (r *Registry) UnmarshalJSON(data []byte) error {
	var entries []Anchor
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*r = *NewRegistry()
	for _, a := range entries {
		if err := r.Add(a); err != nil {
			return err
		}
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r *Registry) MarshalYAML() (interface{}, error) {
	return r.Entries(), nil
}

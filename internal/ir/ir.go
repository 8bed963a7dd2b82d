// Package ir defines the document tree shared by the parsers, the normalizer and
// the numbering engine. A parser produces a Document, normalize rewrites it in
// place and xref reads it to build the anchor registry.
package ir

// Document is one standards document being converted.
type Document struct {
	Version  string   `json:"version" yaml:"version"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Root     *Node    `json:"root" yaml:"root"`

	// Normalized is set by the normalizer once every pass has run.
	Normalized bool `json:"normalized,omitempty" yaml:"normalized,omitempty"`
}

// Metadata contains bibliographic data about the document itself.
type Metadata struct {
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	DocIdentifier string `json:"doc_identifier,omitempty" yaml:"doc_identifier,omitempty"`
	Language      string `json:"language,omitempty" yaml:"language,omitempty"`
	Script        string `json:"script,omitempty" yaml:"script,omitempty"`
	Stage         string `json:"stage,omitempty" yaml:"stage,omitempty"`
	Created       string `json:"created,omitempty" yaml:"created,omitempty"`
}

// NewDocument creates an empty document with a root element.
func NewDocument() *Document {
	return &Document{
		Version: "1.0",
		Root:    NewElement(KindDocument, ""),
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	if d.Root != nil {
		c.Root = d.Root.Clone()
	}
	return &c
}

// Front returns the front-matter container, or nil.
func (d *Document) Front() *Node {
	return d.rootChild(KindPreface)
}

// Body returns the main-body container, or nil.
func (d *Document) Body() *Node {
	return d.rootChild(KindSections)
}

// Back returns the back-matter container, or nil.
func (d *Document) Back() *Node {
	return d.rootChild(KindBack)
}

func (d *Document) rootChild(kind Kind) *Node {
	if d.Root == nil {
		return nil
	}
	return d.Root.FirstChildOf(kind)
}

// AddPreface appends n to the front-matter container, creating it if needed.
func (d *Document) AddPreface(n *Node) {
	d.container(KindPreface).AppendChild(n)
}

// AddSection appends n to the main-body container, creating it if needed.
func (d *Document) AddSection(n *Node) {
	d.container(KindSections).AppendChild(n)
}

// AddToRoot appends n directly under the root element. Parsers use it for
// annexes and bibliographies found outside the body.
func (d *Document) AddToRoot(n *Node) {
	d.Root.AppendChild(n)
}

func (d *Document) container(kind Kind) *Node {
	if c := d.rootChild(kind); c != nil {
		return c
	}
	c := NewElement(kind, "")
	d.Root.AppendChild(c)
	return c
}

package xref

import (
	"strconv"

	"github.com/roboco-io/isoanchor/internal/ir"
)

// counter is one numbering sequence. Unnumbered nodes do not advance it.
type counter struct {
	n int
}

func (c *counter) increment(n *ir.Node) {
	if n.Flag("unnumbered") {
		return
	}
	c.n++
}

func (c counter) String() string {
	return strconv.Itoa(c.n)
}

// frame holds the asset counters of one numbering scope: the whole main
// body, a top-level clause in hierarchical mode, or an annex.
type frame struct {
	prefix string
	sep    string

	figures  counter
	tables   counter
	formulas counter
}

func newFrame(prefix, sep string) *frame {
	return &frame{prefix: prefix, sep: sep}
}

// label renders c within the frame, e.g. "3" or "A.3".
func (f *frame) label(c counter) string {
	if f.prefix == "" {
		return c.String()
	}
	return f.prefix + f.sep + c.String()
}

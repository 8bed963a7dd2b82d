package ir

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Digest returns the BLAKE3 hex digest of the subtree rooted at n. Two trees
// have the same digest exactly when they have the same shape, kinds, ids,
// attributes and text.
func Digest(n *Node) string {
	h := blake3.New()
	writeCanonical(h, n)
	return hex.EncodeToString(h.Sum(nil))
}

func writeCanonical(w io.Writer, n *Node) {
	writeField(w, string(n.Kind))
	writeField(w, n.ID)
	writeField(w, n.Text)

	names := n.attrNames()
	writeLen(w, len(names))
	for _, name := range names {
		writeField(w, name)
		writeField(w, n.Attr(name))
	}

	writeLen(w, len(n.Children))
	for _, c := range n.Children {
		writeCanonical(w, c)
	}
}

// writeField length-prefixes s so that field boundaries are unambiguous.
func writeField(w io.Writer, s string) {
	writeLen(w, len(s))
	io.WriteString(w, s)
}

func writeLen(w io.Writer, n int) {
	var buf [binary.MaxVarintLen64]byte
	w.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}

package dot11

import (
	"iter"

	"github.com/google/gopacket/layers"
)

// Element is one tagged information element of a management frame body.
type Element struct {
	ID   layers.Dot11InformationElementID
	Info []byte
}

// Elements walks length-prefixed tagged elements. Iteration ends quietly when fewer than
// two header bytes remain or a declared length would run past buf; a truncated tail is
// treated as the end of the element list, not as an error.
func Elements(buf []byte) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		offset := 0
		for offset+2 <= len(buf) {
			id := layers.Dot11InformationElementID(buf[offset])
			length := int(buf[offset+1])
			end := offset + 2 + length
			if end > len(buf) {
				return
			}
			if !yield(Element{ID: id, Info: buf[offset+2 : end]}) {
				return
			}
			offset = end
		}
	}
}

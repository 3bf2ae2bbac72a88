// Package snapshot derives a content digest for a document. Reports carry
// the digest so a verification result can always be traced back to the exact
// document state it ran against; layout repair between runs changes the
// digest even when no paragraph text changed pages.
package snapshot

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/onderwijsmedia/flowprint/core/flow"
)

// Digest computes the BLAKE3 digest of a document's content: stream IDs,
// block texts, and block page offsets, all length-prefixed so no two
// distinct documents serialize to the same byte stream.
func Digest(doc *flow.Document) string {
	h := blake3.New()
	writeInt := func(n int) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(int64(n)))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(len(s))
		h.Write([]byte(s))
	}

	writeInt(len(doc.Streams))
	for _, s := range doc.Streams {
		writeString(s.ID)
		writeInt(len(s.Blocks))
		for _, b := range s.Blocks {
			writeString(b.RawText)
			writeInt(b.PageOffset)
		}
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

package match

import (
	"github.com/onderwijsmedia/flowprint/core/fingerprint"
	"github.com/onderwijsmedia/flowprint/core/flow"
)

// NormalizedSnippetRunes is the truncation length for recomputed canonical
// snippets.
const NormalizedSnippetRunes = 80

// Recomputed is a freshly derived identity for a block addressed by
// position.
type Recomputed struct {
	Key               fingerprint.Key `json:"key"`
	NormalizedSnippet string          `json:"normalized_snippet"`
}

// RecomputeKey refreshes the fingerprint of the block at (streamIdx,
// blockIdx) against the document's current state. Callers holding a table of
// positions recorded during an earlier pass use this after layout repair has
// settled, so persisted keys describe the final document rather than a
// transient one. An out-of-bounds position returns an error wrapping
// ErrNotFound; callers record it as a bad row and continue.
func RecomputeKey(doc *flow.Document, streamIdx, blockIdx int) (Recomputed, error) {
	b, err := doc.Block(streamIdx, blockIdx)
	if err != nil {
		return Recomputed{}, err
	}
	keys := fingerprint.BuildAll(b.RawText)
	return Recomputed{
		Key:               keys.Exact,
		NormalizedSnippet: truncate(keys.Canonical, NormalizedSnippetRunes),
	}, nil
}

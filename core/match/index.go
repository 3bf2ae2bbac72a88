// Package match resolves paragraph identity between reference texts and the
// blocks of a selected content stream. An Index holds the identity keys of
// every in-range block; Resolve walks a tiered exact-to-fuzzy strategy;
// Report aggregates the verdicts.
package match

import (
	"github.com/onderwijsmedia/flowprint/core/fingerprint"
	"github.com/onderwijsmedia/flowprint/core/flow"
)

// Index is the per-run lookup structure over one stream and one page range.
// It is built fresh for every verification run and never persisted.
type Index struct {
	streamID string
	pages    flow.PageRange
	indexed  int

	exact    map[fingerprint.Key]struct{}
	legacy80 map[string]struct{}
	legacy30 map[string]struct{}
}

// BuildIndex derives identity keys for every block of the stream whose start
// page offset lies inside the range. A block with a non-empty canonical form
// contributes to the exact set and, length permitting, to both legacy prefix
// sets in the same pass; whitespace-only blocks contribute nothing.
func BuildIndex(s *flow.Stream, r flow.PageRange) *Index {
	ix := &Index{
		streamID: s.ID,
		pages:    r,
		exact:    make(map[fingerprint.Key]struct{}),
		legacy80: make(map[string]struct{}),
		legacy30: make(map[string]struct{}),
	}
	for _, b := range s.Blocks {
		if !r.Contains(b.PageOffset) {
			continue
		}
		keys := fingerprint.BuildAll(b.RawText)
		if keys.Exact == "" {
			continue
		}
		ix.exact[keys.Exact] = struct{}{}
		if keys.Legacy80 != "" {
			ix.legacy80[keys.Legacy80] = struct{}{}
		}
		if keys.Legacy30 != "" {
			ix.legacy30[keys.Legacy30] = struct{}{}
		}
		ix.indexed++
	}
	return ix
}

// StreamID returns the ID of the indexed stream.
func (ix *Index) StreamID() string { return ix.streamID }

// Pages returns the page range the index was scoped to.
func (ix *Index) Pages() flow.PageRange { return ix.pages }

// Len returns the number of blocks that contributed keys.
func (ix *Index) Len() int { return ix.indexed }

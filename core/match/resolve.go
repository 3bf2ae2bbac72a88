package match

import "github.com/onderwijsmedia/flowprint/core/fingerprint"

// Tier identifies how a reference text matched the index.
type Tier string

// Match tiers, strongest first. The ordering is a strictness gradient:
// only the exact tier is immune to false positives from unrelated blocks
// sharing a long common prefix, so the fallbacks must never outrank it.
const (
	TierExact     Tier = "exact"
	TierLegacy80  Tier = "legacy80"
	TierLegacy30  Tier = "legacy30"
	TierUnmatched Tier = "unmatched"
)

// Reference is one record from the upstream rewrite process. ID, Section and
// Position are opaque metadata, echoed back in diagnostics and never
// interpreted.
type Reference struct {
	ID       string `json:"id"`
	Section  int    `json:"section"`
	Position int    `json:"position"`
	Original string `json:"original"`
}

// Record is the verdict for one resolved reference.
type Record struct {
	Tier        Tier   `json:"tier"`
	ReferenceID string `json:"id,omitempty"`
	Section     int    `json:"section"`
	Position    int    `json:"position"`
	Snippet     string `json:"snippet"`
}

// ResolveText returns the strongest tier at which a reference text matches
// the index. The tiers short-circuit: exact first, then the long prefix
// fallback, then the short one.
func (ix *Index) ResolveText(text string) Tier {
	keys := fingerprint.BuildAll(text)
	if keys.Exact == "" {
		return TierUnmatched
	}
	if _, ok := ix.exact[keys.Exact]; ok {
		return TierExact
	}
	if keys.Legacy80 != "" {
		if _, ok := ix.legacy80[keys.Legacy80]; ok {
			return TierLegacy80
		}
	}
	if keys.Legacy30 != "" {
		if _, ok := ix.legacy30[keys.Legacy30]; ok {
			return TierLegacy30
		}
	}
	return TierUnmatched
}

// Resolve resolves one reference and returns its verdict with the metadata
// needed to render a diagnostic sample.
func (ix *Index) Resolve(ref Reference) Record {
	return Record{
		Tier:        ix.ResolveText(ref.Original),
		ReferenceID: ref.ID,
		Section:     ref.Section,
		Position:    ref.Position,
		Snippet:     truncate(ref.Original, SnippetRunes),
	}
}

// ResolveAll resolves references in input order. Calls are independent; the
// verdict of one never influences another.
func (ix *Index) ResolveAll(refs []Reference) []Record {
	records := make([]Record, len(refs))
	for i, ref := range refs {
		records[i] = ix.Resolve(ref)
	}
	return records
}

// truncate limits s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

package match

// MaxUnmatchedSamples caps the diagnostic sample list in a Summary. Keeping
// the cap small keeps reports renderable for documents with systematic
// drift.
const MaxUnmatchedSamples = 25

// SnippetRunes is the truncation length for diagnostic snippets.
const SnippetRunes = 160

// Sample locates one unmatched reference for a human reader.
type Sample struct {
	ReferenceID string `json:"id,omitempty"`
	Section     int    `json:"section"`
	Position    int    `json:"position"`
	Snippet     string `json:"snippet"`
}

// Summary aggregates the verdicts of one verification run. A summary with
// UnmatchedCount > 0 is a valid result, not a failure; the calling pipeline
// stage decides the gate policy.
type Summary struct {
	TotalReferences  int      `json:"total_references"`
	MatchedExact     int      `json:"matched_exact"`
	MatchedLegacy80  int      `json:"matched_legacy80"`
	MatchedLegacy30  int      `json:"matched_legacy30"`
	UnmatchedCount   int      `json:"unmatched_count"`
	UnmatchedSamples []Sample `json:"unmatched_samples,omitempty"`
}

// Report aggregates records into a Summary. It never fails: any slice of
// records, including an empty one, produces a renderable summary.
func Report(records []Record) Summary {
	s := Summary{TotalReferences: len(records)}
	for _, rec := range records {
		switch rec.Tier {
		case TierExact:
			s.MatchedExact++
		case TierLegacy80:
			s.MatchedLegacy80++
		case TierLegacy30:
			s.MatchedLegacy30++
		default:
			s.UnmatchedCount++
			if len(s.UnmatchedSamples) < MaxUnmatchedSamples {
				s.UnmatchedSamples = append(s.UnmatchedSamples, Sample{
					ReferenceID: rec.ReferenceID,
					Section:     rec.Section,
					Position:    rec.Position,
					Snippet:     rec.Snippet,
				})
			}
		}
	}
	return s
}

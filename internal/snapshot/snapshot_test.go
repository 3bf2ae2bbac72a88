package snapshot

import (
	"testing"

	"github.com/onderwijsmedia/flowprint/core/flow"
)

func sampleDoc() *flow.Document {
	return &flow.Document{Streams: []*flow.Stream{
		{ID: "u10", Blocks: []*flow.Block{
			{RawText: "Eerste alinea.", WordCount: 2, PageOffset: 0},
			{RawText: "Tweede alinea.", WordCount: 2, PageOffset: 1},
		}},
		{ID: "u20", Blocks: []*flow.Block{
			{RawText: "Bijschrift.", WordCount: 1, PageOffset: 0},
		}},
	}}
}

func TestDigestDeterministic(t *testing.T) {
	a := Digest(sampleDoc())
	b := Digest(sampleDoc())
	if a != b {
		t.Errorf("digest not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := Digest(sampleDoc())

	edited := sampleDoc()
	edited.Streams[0].Blocks[1].RawText = "Tweede alinea, herschreven."
	if Digest(edited) == base {
		t.Error("text edit should change the digest")
	}

	moved := sampleDoc()
	moved.Streams[0].Blocks[1].PageOffset = 2
	if Digest(moved) == base {
		t.Error("page move should change the digest")
	}

	renamed := sampleDoc()
	renamed.Streams[1].ID = "u21"
	if Digest(renamed) == base {
		t.Error("stream rename should change the digest")
	}
}

// TestDigestNoConcatenationAliasing: length prefixes must keep adjacent
// fields from bleeding into each other.
func TestDigestNoConcatenationAliasing(t *testing.T) {
	a := &flow.Document{Streams: []*flow.Stream{
		{ID: "ab", Blocks: []*flow.Block{{RawText: "c", PageOffset: 0}}},
	}}
	b := &flow.Document{Streams: []*flow.Stream{
		{ID: "a", Blocks: []*flow.Block{{RawText: "bc", PageOffset: 0}}},
	}}
	if Digest(a) == Digest(b) {
		t.Error("distinct documents share a digest")
	}
}

func TestDigestEmptyDocument(t *testing.T) {
	d := Digest(&flow.Document{})
	if len(d) != 64 {
		t.Errorf("digest length = %d, want 64", len(d))
	}
	if d == Digest(sampleDoc()) {
		t.Error("empty document digest should differ from non-empty")
	}
}

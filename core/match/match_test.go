package match

import (
	"fmt"
	"strings"
	"testing"

	"github.com/onderwijsmedia/flowprint/core/fingerprint"
	"github.com/onderwijsmedia/flowprint/core/flow"
)

func bodyStream(texts ...string) *flow.Stream {
	s := &flow.Stream{ID: "body"}
	for _, t := range texts {
		s.Blocks = append(s.Blocks, &flow.Block{
			RawText:    t,
			WordCount:  len(strings.Fields(t)),
			PageOffset: 5,
		})
	}
	return s
}

var chapterRange = flow.PageRange{Start: 5, End: 9}

// TestResolveExactUnderNoise is the canonical drift case: the indexed block
// and the reference differ in whitespace, a soft hyphen, and a trailing
// newline, and must still resolve at the exact tier.
func TestResolveExactUnderNoise(t *testing.T) {
	ix := BuildIndex(bodyStream("Cellen  zijn\u00adde bouwstenen.\n"), chapterRange)
	if got := ix.ResolveText("cellen zijn de bouwstenen."); got != TierExact {
		t.Errorf("tier = %q, want %q", got, TierExact)
	}
}

func TestResolveDecorationMarkers(t *testing.T) {
	ix := BuildIndex(bodyStream("<<BOLD_START>>Diffusie<<BOLD_END>> verplaatst deeltjes van hoog naar laag."), chapterRange)
	if got := ix.ResolveText("Diffusie verplaatst deeltjes van hoog naar laag."); got != TierExact {
		t.Errorf("tier = %q, want %q", got, TierExact)
	}
}

// TestResolveLegacy30 reproduces a drifted tail: the reference shares the
// opening of an indexed sentence but ends differently, so only the short
// prefix fallback can claim it.
func TestResolveLegacy30(t *testing.T) {
	indexed := "Dit is een lange uitleg over osmose en celmembranen die minstens dertig tekens beslaat."
	ix := BuildIndex(bodyStream(indexed), chapterRange)

	ref := "Dit is een lange uitleg over osmose met een compleet ander slot."
	if got := ix.ResolveText(ref); got != TierLegacy30 {
		t.Errorf("tier = %q, want %q", got, TierLegacy30)
	}
}

func TestResolveLegacy80(t *testing.T) {
	indexed := "De menselijke huid bestaat uit drie lagen, namelijk de opperhuid, de lederhuid en het onderhuidse bindweefsel met vetcellen."
	canon := fingerprint.BuildAll(indexed).Canonical
	if len(canon) <= 90 {
		t.Fatalf("fixture too short: canonical length %d", len(canon))
	}
	ix := BuildIndex(bodyStream(indexed), chapterRange)

	// Same first 90 canonical characters, drifted tail.
	ref := canon[:90] + " plus een toegevoegde zin die er eerst niet stond"
	if got := ix.ResolveText(ref); got != TierLegacy80 {
		t.Errorf("tier = %q, want %q", got, TierLegacy80)
	}
}

// TestStrictnessOrdering verifies an exact match is never demoted to a
// fallback tier, even though its prefixes are also present in the index.
func TestStrictnessOrdering(t *testing.T) {
	indexed := "Een alinea die ruim boven de tachtig tekens uitkomt zodat alle drie de sleutels aanwezig zijn in de index."
	ix := BuildIndex(bodyStream(indexed), chapterRange)
	if got := ix.ResolveText(indexed); got != TierExact {
		t.Errorf("tier = %q, want %q", got, TierExact)
	}
}

func TestResolveUnmatched(t *testing.T) {
	ix := BuildIndex(bodyStream("De nieren filteren afvalstoffen uit het bloed."), chapterRange)
	if got := ix.ResolveText("Volstrekt andere inhoud over een heel ander onderwerp."); got != TierUnmatched {
		t.Errorf("tier = %q, want %q", got, TierUnmatched)
	}
}

func TestResolveEmptyReference(t *testing.T) {
	ix := BuildIndex(bodyStream("De nieren filteren afvalstoffen uit het bloed."), chapterRange)
	for _, ref := range []string{"", "   ", "\u00ad\u00ad"} {
		if got := ix.ResolveText(ref); got != TierUnmatched {
			t.Errorf("ResolveText(%q) = %q, want %q", ref, got, TierUnmatched)
		}
	}
}

// TestRangeExclusivity: a block outside the page range never contributes,
// even when its text is identical to the query.
func TestRangeExclusivity(t *testing.T) {
	text := "Deze alinea staat buiten het gevraagde paginabereik."
	s := &flow.Stream{ID: "body", Blocks: []*flow.Block{
		{RawText: text, WordCount: 7, PageOffset: 12},
	}}
	ix := BuildIndex(s, chapterRange)
	if ix.Len() != 0 {
		t.Fatalf("index should be empty, has %d blocks", ix.Len())
	}
	if got := ix.ResolveText(text); got != TierUnmatched {
		t.Errorf("tier = %q, want %q", got, TierUnmatched)
	}
}

func TestIndexSkipsEmptyBlocks(t *testing.T) {
	s := &flow.Stream{ID: "body", Blocks: []*flow.Block{
		{RawText: "   \n", WordCount: 0, PageOffset: 5},
		{RawText: "\u00ad", WordCount: 0, PageOffset: 5},
	}}
	ix := BuildIndex(s, chapterRange)
	if ix.Len() != 0 {
		t.Errorf("whitespace-only blocks must not be indexed, got %d", ix.Len())
	}
	if got := ix.ResolveText(""); got != TierUnmatched {
		t.Errorf("tier = %q, want %q", got, TierUnmatched)
	}
}

func TestIndexMetadata(t *testing.T) {
	ix := BuildIndex(bodyStream("Eerste alinea met inhoud.", "Tweede alinea met inhoud."), chapterRange)
	if ix.StreamID() != "body" {
		t.Errorf("StreamID = %q", ix.StreamID())
	}
	if ix.Pages() != chapterRange {
		t.Errorf("Pages = %v", ix.Pages())
	}
	if ix.Len() != 2 {
		t.Errorf("Len = %d, want 2", ix.Len())
	}
}

func TestResolveRecordMetadata(t *testing.T) {
	ix := BuildIndex(bodyStream("De lever produceert gal."), chapterRange)
	long := strings.Repeat("zeer lange referentietekst ", 20)
	rec := ix.Resolve(Reference{ID: "r-12", Section: 3, Position: 4, Original: long})
	if rec.Tier != TierUnmatched {
		t.Errorf("tier = %q", rec.Tier)
	}
	if rec.ReferenceID != "r-12" || rec.Section != 3 || rec.Position != 4 {
		t.Errorf("metadata not echoed: %+v", rec)
	}
	if len([]rune(rec.Snippet)) != SnippetRunes {
		t.Errorf("snippet length = %d, want %d", len([]rune(rec.Snippet)), SnippetRunes)
	}
}

// TestReportCounts mirrors a typical chapter run: 7 exact, 1 legacy80,
// 2 unmatched out of 10.
func TestReportCounts(t *testing.T) {
	var records []Record
	for i := 0; i < 7; i++ {
		records = append(records, Record{Tier: TierExact})
	}
	records = append(records, Record{Tier: TierLegacy80})
	records = append(records,
		Record{Tier: TierUnmatched, ReferenceID: "r-8", Snippet: "eerste mislukte"},
		Record{Tier: TierUnmatched, ReferenceID: "r-9", Snippet: "tweede mislukte"},
	)

	s := Report(records)
	if s.TotalReferences != 10 {
		t.Errorf("TotalReferences = %d, want 10", s.TotalReferences)
	}
	if s.MatchedExact != 7 || s.MatchedLegacy80 != 1 || s.MatchedLegacy30 != 0 {
		t.Errorf("tier counts wrong: %+v", s)
	}
	if s.UnmatchedCount != 2 || len(s.UnmatchedSamples) != 2 {
		t.Errorf("unmatched accounting wrong: %+v", s)
	}
	if s.UnmatchedSamples[0].ReferenceID != "r-8" {
		t.Errorf("sample order wrong: %+v", s.UnmatchedSamples)
	}
}

func TestReportSampleCap(t *testing.T) {
	var records []Record
	for i := 0; i < 40; i++ {
		records = append(records, Record{Tier: TierUnmatched, ReferenceID: fmt.Sprintf("r-%d", i)})
	}
	s := Report(records)
	if s.UnmatchedCount != 40 {
		t.Errorf("UnmatchedCount = %d, want 40", s.UnmatchedCount)
	}
	if len(s.UnmatchedSamples) != MaxUnmatchedSamples {
		t.Errorf("samples = %d, want %d", len(s.UnmatchedSamples), MaxUnmatchedSamples)
	}
}

func TestReportEmpty(t *testing.T) {
	s := Report(nil)
	if s.TotalReferences != 0 || s.UnmatchedCount != 0 || s.UnmatchedSamples != nil {
		t.Errorf("empty report wrong: %+v", s)
	}
}

func TestResolveAll(t *testing.T) {
	ix := BuildIndex(bodyStream(
		"Het hart pompt bloed door het lichaam.",
		"De longen nemen zuurstof op uit de lucht.",
	), chapterRange)

	refs := []Reference{
		{ID: "a", Original: "Het hart pompt bloed door het lichaam."},
		{ID: "b", Original: "Onbekende tekst zonder enige tegenhanger."},
	}
	records := ix.ResolveAll(refs)
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Tier != TierExact || records[1].Tier != TierUnmatched {
		t.Errorf("tiers = %q, %q", records[0].Tier, records[1].Tier)
	}
}

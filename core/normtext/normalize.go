// Package normtext canonicalizes raw layout text into a comparison-stable form.
//
// Text coming out of the layout engine drifts between regeneration runs:
// whitespace runs change, soft hyphens move, decoration markers are injected
// or removed, and accented characters are sometimes substituted. Normalize
// collapses all of that drift so two renditions of the same paragraph compare
// equal. Every fingerprint in this codebase is computed over the canonical
// form produced here; producers and verifiers must never normalize on their
// own.
package normtext

import "strings"

// decorationMarkers are inline wrappers injected by the rewrite pipeline.
// They contain letters, so they must be removed before the character pass
// below (which would otherwise keep their inner words as text).
var decorationMarkers = []string{
	"<<BOLD_START>>",
	"<<BOLD_END>>",
	"<<MICRO_TITLE>>",
	"<<MICRO_TITLE_END>>",
}

// foldTable maps accented lowercase characters to their unaccented ASCII
// base. The table is fixed: keys produced against one build of the verifier
// must remain comparable with keys produced by any other.
var foldTable = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'æ': "ae",
	'ç': "c",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o",
	'œ': "oe",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'ß': "ss",
}

// Normalize converts raw text into its canonical comparison form.
//
// The result contains only lowercase ASCII letters, digits, and single
// spaces, with no leading or trailing space. Normalize is total (never
// fails) and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := stripMarkers(raw)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			if folded, ok := foldTable[r]; ok {
				if pendingSpace && b.Len() > 0 {
					b.WriteByte(' ')
				}
				pendingSpace = false
				b.WriteString(folded)
			} else {
				// Everything else - whitespace, punctuation, control
				// characters, soft hyphens (U+00AD), the anchored-object
				// placeholder (U+FFFC) - separates words. Runs collapse to
				// a single space; a trailing run is dropped.
				pendingSpace = true
			}
		}
	}
	return b.String()
}

// stripMarkers removes decoration markers and processing-instruction spans
// ("<?...?>") from s. Unterminated instruction spans are left in place and
// flow through the character pass like ordinary text.
func stripMarkers(s string) string {
	for _, m := range decorationMarkers {
		if strings.Contains(s, m) {
			s = strings.ReplaceAll(s, m, "")
		}
	}
	if !strings.Contains(s, "<?") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.Index(s, "<?")
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start:], "?>")
		if end < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:start])
		s = s[start+end+len("?>"):]
	}
	return b.String()
}

// Package fingerprint derives deterministic identity keys from raw layout
// text. The primary key is "<length>:<hash8>" over the canonical form of the
// text; two weaker prefix keys serve as fallbacks for content whose tail has
// drifted since the key was first recorded.
package fingerprint

import (
	"fmt"

	"github.com/onderwijsmedia/flowprint/core/normtext"
)

// offsetBasis is the standard 32-bit FNV-1a seed.
const offsetBasis uint32 = 0x811c9dc5

// Fallback prefix policy. The minimum-length gates carry over observed
// historical behavior; they are policy constants, not derived values.
const (
	// Legacy80Len is the prefix length of the long fallback key.
	Legacy80Len = 80
	// Legacy80MinLen is the minimum canonical length for a long fallback key.
	Legacy80MinLen = 30
	// Legacy30Len is the prefix length of the short fallback key.
	Legacy30Len = 30
	// Legacy30MinLen is the minimum canonical length for a short fallback key.
	Legacy30MinLen = 20
)

// Key is a paragraph identity of the form "<length>:<hash8>", where length
// is the character count of the canonical string and hash8 is its 32-bit
// FNV-1a hash in lowercase hex. The empty Key marks unmatchable text
// (text whose canonical form is empty).
type Key string

// Keys holds every identity derived from a single normalization pass.
// Index-side content and query-side reference text go through the same
// derivation, so the two sides are always comparable.
type Keys struct {
	// Canonical is the normalized comparison string.
	Canonical string
	// Exact is the primary identity key, empty if Canonical is empty.
	Exact Key
	// Legacy80 is the long prefix fallback, empty below Legacy80MinLen.
	Legacy80 string
	// Legacy30 is the short prefix fallback, empty below Legacy30MinLen.
	Legacy30 string
}

// Build derives the primary identity key for raw text. It returns the empty
// Key when normalization yields an empty string (e.g. a whitespace-only
// block); such text is never matchable.
func Build(raw string) Key {
	return BuildAll(raw).Exact
}

// BuildAll normalizes raw text once and derives all identity keys from the
// canonical form.
func BuildAll(raw string) Keys {
	n := normtext.Normalize(raw)
	if n == "" {
		return Keys{}
	}
	return Keys{
		Canonical: n,
		Exact:     Key(fmt.Sprintf("%d:%08x", len(n), hash32(n))),
		Legacy80:  prefix(n, Legacy80Len, Legacy80MinLen),
		Legacy30:  prefix(n, Legacy30Len, Legacy30MinLen),
	}
}

// Legacy80 returns the long prefix fallback key for raw text, or "" when the
// canonical form is shorter than Legacy80MinLen.
func Legacy80(raw string) string {
	return BuildAll(raw).Legacy80
}

// Legacy30 returns the short prefix fallback key for raw text, or "" when
// the canonical form is shorter than Legacy30MinLen.
func Legacy30(raw string) string {
	return BuildAll(raw).Legacy30
}

// prefix returns the first max characters of the canonical string n, the
// whole string if it is shorter, or "" if it is below min. The canonical
// alphabet is ASCII, so byte slicing is character slicing.
func prefix(n string, max, min int) string {
	if len(n) < min {
		return ""
	}
	if len(n) > max {
		return n[:max]
	}
	return n
}

// hash32 computes the 32-bit FNV-1a hash of a canonical string. The prime
// multiplication is decomposed into shifts and adds; this keeps the function
// bit-compatible with the legacy key producer, which ran on an engine
// without native 64-bit integers.
func hash32(s string) uint32 {
	h := offsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		// h *= 16777619 (0x01000193)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}

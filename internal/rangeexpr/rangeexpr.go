// Package rangeexpr parses page-range expressions from the command line.
// Supported forms: "12" (single page), "12-18" (inclusive range), and
// comma-separated unions like "12-18,40-55".
package rangeexpr

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/onderwijsmedia/flowprint/core/flow"
)

// exprList is the root grammar node: one or more ranges.
type exprList struct {
	Ranges []*expr `parser:"@@ ( ',' @@ )*"`
}

// expr is a single page or inclusive page span.
type expr struct {
	Start int  `parser:"@Number"`
	End   *int `parser:"( '-' @Number )?"`
}

// rangeLexer tokenizes page-range expressions.
var rangeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// rangeParser parses page-range expressions.
var rangeParser = participle.MustBuild[exprList](
	participle.Lexer(rangeLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a page-range expression into one or more page ranges, in
// input order. A bare number is the one-page range [n,n].
func Parse(input string) ([]flow.PageRange, error) {
	list, err := rangeParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page range %q: %w", input, err)
	}

	ranges := make([]flow.PageRange, 0, len(list.Ranges))
	for _, e := range list.Ranges {
		r := flow.PageRange{Start: e.Start, End: e.Start}
		if e.End != nil {
			r.End = *e.End
		}
		if r.End < r.Start {
			return nil, fmt.Errorf("invalid page range %q: end %d before start %d", input, r.End, r.Start)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ParseOne parses an expression that must denote exactly one range.
func ParseOne(input string) (flow.PageRange, error) {
	ranges, err := Parse(input)
	if err != nil {
		return flow.PageRange{}, err
	}
	if len(ranges) != 1 {
		return flow.PageRange{}, fmt.Errorf("expected a single page range, got %d in %q", len(ranges), input)
	}
	return ranges[0], nil
}

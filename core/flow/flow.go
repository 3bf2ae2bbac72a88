// Package flow models the read-only view of a layout document: ordered
// content streams of paragraph-level blocks, each block carrying the page
// offset where it begins. The package also selects the stream that carries
// the body content of a bounded page range.
package flow

import (
	"fmt"

	"github.com/onderwijsmedia/flowprint/core/errors"
)

// Block is the atomic comparison unit within a stream (a paragraph
// equivalent). All fields are read-only from this package's perspective.
type Block struct {
	// RawText is the paragraph text as the layout engine stores it. It may
	// contain decoration markers, soft hyphens, and other noise; comparisons
	// never use it directly.
	RawText string `json:"raw_text"`

	// WordCount is the number of words in the block.
	WordCount int `json:"word_count"`

	// PageOffset is the zero-based position, in the document's layout
	// sequence, of the page on which the block begins. A negative offset
	// marks a block with no page placement; it never falls inside any range.
	PageOffset int `json:"page_offset"`

	// StyleTag is the paragraph style label. Kept for collaborators; the
	// matching core ignores it.
	StyleTag string `json:"style_tag,omitempty"`
}

// Stream is one independent text flow within a document. Stream identity is
// the ID (a stable reference), never the content: two streams are never
// considered equal by content.
type Stream struct {
	// ID is the stable identifier of the stream within its document.
	ID string `json:"id"`

	// Blocks is the ordered block sequence.
	Blocks []*Block `json:"blocks,omitempty"`
}

// Document is an ordered collection of content streams.
type Document struct {
	Streams []*Stream `json:"streams,omitempty"`
}

// Block returns the block at (streamIdx, blockIdx), or ErrNotFound when
// either index is out of bounds against the current document state.
func (d *Document) Block(streamIdx, blockIdx int) (*Block, error) {
	if streamIdx < 0 || streamIdx >= len(d.Streams) {
		return nil, errors.Wrapf(errors.ErrNotFound, "stream %d of %d", streamIdx, len(d.Streams))
	}
	s := d.Streams[streamIdx]
	if blockIdx < 0 || blockIdx >= len(s.Blocks) {
		return nil, errors.Wrapf(errors.ErrNotFound, "block %d of %d in stream %d", blockIdx, len(s.Blocks), streamIdx)
	}
	return s.Blocks[blockIdx], nil
}

// PageRange bounds a section of the document by page offsets, inclusive on
// both ends.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether a page offset falls inside the range. Negative
// offsets (unplaced blocks) are never contained.
func (r PageRange) Contains(offset int) bool {
	return offset >= 0 && offset >= r.Start && offset <= r.End
}

func (r PageRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// WordSum returns the total word count of the blocks of s whose start page
// offset lies inside r.
func WordSum(s *Stream, r PageRange) int {
	sum := 0
	for _, b := range s.Blocks {
		if r.Contains(b.PageOffset) {
			sum += b.WordCount
		}
	}
	return sum
}

// SelectBodyStream picks the stream representing the body content of the
// page range: the stream with the maximum in-range word sum. Incidental
// containers (labels, captions) lose on word count by construction. Ties go
// to the first stream in input order, so selection is deterministic.
//
// It returns a StructuralError wrapping ErrNoBodyStream when every stream
// sums to zero inside the range, and one wrapping ErrEmptyDocument when
// there are no streams at all. Callers must surface these, not default.
func SelectBodyStream(streams []*Stream, r PageRange) (*Stream, error) {
	if len(streams) == 0 {
		return nil, errors.NewStructural("select-stream", "document has no content streams", errors.ErrEmptyDocument)
	}

	var best *Stream
	bestSum := 0
	for _, s := range streams {
		sum := WordSum(s, r)
		if sum > bestSum {
			best = s
			bestSum = sum
		}
	}
	if best == nil {
		return nil, errors.NewStructural("select-stream",
			fmt.Sprintf("no stream has words inside pages %s", r), errors.ErrNoBodyStream)
	}
	return best, nil
}

// Package idml loads InDesign Markup Language packages into documents.
//
// An IDML file is a zip archive: designmap.xml lists the spreads and stories
// in layout order, Spreads/*.xml place text frames on pages, and
// Stories/*.xml hold the paragraph content. The loader reconstructs the
// stream and block structure from those three layers.
//
// Page placement comes from the spreads: a story's blocks get the page
// offset of the first text frame that displays the story. Stories never
// placed in a frame (overset or pasteboard content) get offset -1, which no
// page range contains. A pagemap sidecar can override placement per block
// for documents where frame order and reading order disagree.
package idml

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/onderwijsmedia/flowprint/core/errors"
	"github.com/onderwijsmedia/flowprint/core/flow"
)

const designMap = "designmap.xml"

// styleTagPrefix is stripped from AppliedParagraphStyle attribute values.
const styleTagPrefix = "ParagraphStyle/"

// paraRangeQuery selects the paragraph blocks of a story. Precompiled once;
// a chapter document holds hundreds of stories.
var paraRangeQuery = xpath.MustCompile("//ParagraphStyleRange")

// Options controls loading.
type Options struct {
	// PageMapPath names an optional JSON sidecar mapping stream IDs to
	// per-block page offsets. Entries override the frame-derived offsets;
	// blocks beyond the mapped prefix keep theirs.
	PageMapPath string
}

// Load reads an IDML package from disk.
func Load(idmlPath string, opts Options) (*flow.Document, error) {
	zr, err := zip.OpenReader(idmlPath)
	if err != nil {
		return nil, errors.NewStructural("load-document", "not a readable IDML package", err)
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	dm, err := parseMember(members, designMap)
	if err != nil {
		return nil, err
	}

	spreadSrcs := srcList(dm, "//Spread")
	storySrcs := srcList(dm, "//Story")
	if len(storySrcs) == 0 {
		return nil, errors.NewStructural("load-document", "designmap lists no stories", nil)
	}

	storyPage, err := placeStories(members, spreadSrcs)
	if err != nil {
		return nil, err
	}

	doc := &flow.Document{}
	for _, src := range storySrcs {
		stream, err := loadStory(members, src, storyPage)
		if err != nil {
			return nil, err
		}
		doc.Streams = append(doc.Streams, stream)
	}

	if opts.PageMapPath != "" {
		if err := applyPageMap(doc, opts.PageMapPath); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func parseMember(members map[string]*zip.File, name string) (*xmlquery.Node, error) {
	f, ok := members[name]
	if !ok {
		return nil, errors.NewStructural("load-document", fmt.Sprintf("package member %s missing", name), nil)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.NewStructural("load-document", fmt.Sprintf("cannot open %s", name), err)
	}
	defer rc.Close()

	node, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, errors.NewStructural("load-document", fmt.Sprintf("cannot parse %s", name), err)
	}
	return node, nil
}

// srcList returns the src attributes of the nodes matching expr, in document
// order. Designmap references carry the idPkg prefix; xmlquery matches on
// the local name.
func srcList(dm *xmlquery.Node, expr string) []string {
	var srcs []string
	for _, n := range xmlquery.Find(dm, expr) {
		if src := n.SelectAttr("src"); src != "" {
			srcs = append(srcs, src)
		}
	}
	return srcs
}

// placeStories walks the spreads in designmap order and returns the page
// offset of each story's first text frame. Page offsets are zero-based and
// count pages across all spreads.
func placeStories(members map[string]*zip.File, spreadSrcs []string) (map[string]int, error) {
	storyPage := make(map[string]int)
	pages := 0
	for _, src := range spreadSrcs {
		node, err := parseMember(members, src)
		if err != nil {
			return nil, err
		}
		// cur starts at the spread's first page so frames serialized
		// before any Page element still land on this spread.
		cur := pages
		var walk func(n *xmlquery.Node)
		walk = func(n *xmlquery.Node) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == xmlquery.ElementNode {
					switch c.Data {
					case "Page":
						cur = pages
						pages++
					case "TextFrame":
						if ps := c.SelectAttr("ParentStory"); ps != "" {
							if _, seen := storyPage[ps]; !seen {
								storyPage[ps] = cur
							}
						}
					}
				}
				walk(c)
			}
		}
		walk(node)
	}
	return storyPage, nil
}

// loadStory parses one story file into a stream. Each ParagraphStyleRange
// becomes a block; Content text is concatenated and Br elements become
// newlines, preserving forced line breaks inside a paragraph.
func loadStory(members map[string]*zip.File, src string, storyPage map[string]int) (*flow.Stream, error) {
	node, err := parseMember(members, src)
	if err != nil {
		return nil, err
	}

	id := storyID(src)
	offset, placed := storyPage[id]
	if !placed {
		offset = -1
	}

	stream := &flow.Stream{ID: id}
	for _, psr := range xmlquery.QuerySelectorAll(node, paraRangeQuery) {
		text := rangeText(psr)
		stream.Blocks = append(stream.Blocks, &flow.Block{
			RawText:    text,
			WordCount:  len(strings.Fields(text)),
			PageOffset: offset,
			StyleTag:   strings.TrimPrefix(psr.SelectAttr("AppliedParagraphStyle"), styleTagPrefix),
		})
	}
	return stream, nil
}

// storyID derives the stream ID from the story file name:
// Stories/Story_u1d3.xml yields u1d3.
func storyID(src string) string {
	base := strings.TrimSuffix(path.Base(src), ".xml")
	return strings.TrimPrefix(base, "Story_")
}

func rangeText(psr *xmlquery.Node) string {
	var b strings.Builder
	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				switch c.Data {
				case "Content":
					b.WriteString(c.InnerText())
				case "Br":
					b.WriteString("\n")
				default:
					walk(c)
				}
			}
		}
	}
	walk(psr)
	return b.String()
}

// applyPageMap overrides frame-derived page offsets from a sidecar file.
// The sidecar maps stream IDs to per-block offsets:
//
//	{"u1d3": [12, 12, 13]}
func applyPageMap(doc *flow.Document, mapPath string) error {
	f, err := os.Open(mapPath)
	if err != nil {
		return errors.NewStructural("load-pagemap", "cannot open page map", err)
	}
	defer f.Close()
	return ApplyPageMap(doc, f)
}

// ApplyPageMap applies a page map read from r. Unknown stream IDs are
// ignored so one sidecar can serve multiple chapter documents.
func ApplyPageMap(doc *flow.Document, r io.Reader) error {
	var pm map[string][]int
	if err := json.NewDecoder(r).Decode(&pm); err != nil {
		return errors.NewStructural("load-pagemap", "page map is not valid JSON", err)
	}
	for _, s := range doc.Streams {
		offsets, ok := pm[s.ID]
		if !ok {
			continue
		}
		for i, b := range s.Blocks {
			if i >= len(offsets) {
				break
			}
			b.PageOffset = offsets[i]
		}
	}
	return nil
}

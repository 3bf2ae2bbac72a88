// Command flowprint verifies paragraph identity between InDesign layout
// documents and their reference lists. It matches by content fingerprint,
// so layout repair that moves or reflows paragraphs never breaks a match.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onderwijsmedia/flowprint/core/errors"
	"github.com/onderwijsmedia/flowprint/core/flow"
	"github.com/onderwijsmedia/flowprint/core/match"
	"github.com/onderwijsmedia/flowprint/internal/bundle"
	"github.com/onderwijsmedia/flowprint/internal/editlog"
	"github.com/onderwijsmedia/flowprint/internal/idml"
	"github.com/onderwijsmedia/flowprint/internal/logging"
	"github.com/onderwijsmedia/flowprint/internal/pdftext"
	"github.com/onderwijsmedia/flowprint/internal/rangeexpr"
	"github.com/onderwijsmedia/flowprint/internal/reflist"
	"github.com/onderwijsmedia/flowprint/internal/snapshot"
)

const version = "0.4.0"

// CLI defines the command-line interface for flowprint.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" env:"FLOWPRINT_LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" env:"FLOWPRINT_LOG_FORMAT" default:"json" help:"Log format (json, text)"`

	Verify    VerifyCmd    `cmd:"" help:"Match a reference list against a layout document"`
	Recompute RecomputeCmd `cmd:"" help:"Refresh edit log fingerprint keys against a document's current state"`
	Inspect   InspectCmd   `cmd:"" help:"Show a document's streams and body stream selection"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// parsePages returns the page range to verify. An empty expression means
// every page.
func parsePages(expr string) (flow.PageRange, error) {
	if expr == "" {
		return flow.PageRange{Start: 0, End: 1 << 30}, nil
	}
	return rangeexpr.ParseOne(expr)
}

// VerifyCmd matches references against a document and prints the coverage
// report as JSON. Unmatched references are a reportable outcome, not a
// failure; the command exits nonzero only on structural errors.
type VerifyCmd struct {
	Doc       string `arg:"" help:"Path to the IDML document" type:"existingfile"`
	Refs      string `name:"refs" xor:"source" required:"" help:"Reference list (JSON array)" type:"existingfile"`
	RefsPDF   string `name:"refs-pdf" xor:"source" required:"" help:"Derive references from a rendered PDF" type:"existingfile"`
	Pages     string `name:"pages" help:"Page range to verify, e.g. 12-18 (default: all pages)"`
	PageMap   string `name:"page-map" help:"JSON sidecar overriding per-block page offsets" type:"existingfile"`
	BundleOut string `name:"bundle-out" help:"Directory to write the run bundle into"`
}

func (c *VerifyCmd) Run() error {
	pages, err := parsePages(c.Pages)
	if err != nil {
		return err
	}

	doc, err := idml.Load(c.Doc, idml.Options{PageMapPath: c.PageMap})
	if err != nil {
		return err
	}

	var refs []match.Reference
	switch {
	case c.Refs != "":
		result, err := reflist.LoadFile(c.Refs)
		if err != nil {
			return err
		}
		for _, bad := range result.BadRows {
			logging.BadRow(bad.Row, bad.Field, bad)
		}
		refs = result.References
	default:
		refs, err = pdftext.Extract(c.RefsPDF)
		if err != nil {
			return err
		}
	}

	stream, err := flow.SelectBodyStream(doc.Streams, pages)
	if err != nil {
		return err
	}
	logging.Info("body_stream_selected", "stream_id", stream.ID, "pages", pages.String())

	idx := match.BuildIndex(stream, pages)
	summary := match.Report(idx.ResolveAll(refs))

	runID := uuid.NewString()
	logging.RunSummary(runID, summary.TotalReferences, summary.MatchedExact,
		summary.MatchedLegacy80, summary.MatchedLegacy30, summary.UnmatchedCount)

	if c.BundleOut != "" {
		path, err := bundle.Write(c.BundleOut, &bundle.Bundle{
			Manifest: bundle.Manifest{
				RunID:          runID,
				Document:       c.Doc,
				Pages:          pages.String(),
				SnapshotDigest: snapshot.Digest(doc),
			},
			Summary: summary,
		})
		if err != nil {
			return err
		}
		logging.Info("bundle_written", "path", path)
	}

	return printJSON(summary)
}

// RecomputeCmd refreshes the fingerprint keys of one run's recorded edits
// against the document's current state and prints the refresh summary.
type RecomputeCmd struct {
	Doc     string `arg:"" help:"Path to the IDML document" type:"existingfile"`
	EditLog string `name:"editlog" required:"" help:"Path to the edit log database"`
	RunID   string `name:"run" required:"" help:"Run ID whose edits to refresh"`
	PageMap string `name:"page-map" help:"JSON sidecar overriding per-block page offsets" type:"existingfile"`
}

func (c *RecomputeCmd) Run() error {
	doc, err := idml.Load(c.Doc, idml.Options{PageMapPath: c.PageMap})
	if err != nil {
		return err
	}

	store, err := editlog.Open(c.EditLog)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.RefreshKeys(c.RunID, doc)
	if err != nil {
		return err
	}
	for _, bad := range summary.BadRows {
		logging.BadRow(bad.Row, bad.Field, bad, "run_id", c.RunID)
	}
	logging.Info("keys_refreshed", "run_id", c.RunID,
		"total", summary.Total, "refreshed", summary.Refreshed)

	return printJSON(summary)
}

// InspectCmd shows how the document decomposes into streams and which one
// body stream selection picks for the given page range.
type InspectCmd struct {
	Doc     string `arg:"" help:"Path to the IDML document" type:"existingfile"`
	Pages   string `name:"pages" help:"Page range, e.g. 12-18 (default: all pages)"`
	PageMap string `name:"page-map" help:"JSON sidecar overriding per-block page offsets" type:"existingfile"`
}

type streamInfo struct {
	ID      string `json:"id"`
	Blocks  int    `json:"blocks"`
	WordSum int    `json:"word_sum"`
	Body    bool   `json:"body,omitempty"`
}

func (c *InspectCmd) Run() error {
	pages, err := parsePages(c.Pages)
	if err != nil {
		return err
	}

	doc, err := idml.Load(c.Doc, idml.Options{PageMapPath: c.PageMap})
	if err != nil {
		return err
	}

	bodyID := ""
	if body, err := flow.SelectBodyStream(doc.Streams, pages); err == nil {
		bodyID = body.ID
	} else if !errors.Is(err, errors.ErrNoBodyStream) {
		return err
	}

	infos := make([]streamInfo, 0, len(doc.Streams))
	for _, s := range doc.Streams {
		infos = append(infos, streamInfo{
			ID:      s.ID,
			Blocks:  len(s.Blocks),
			WordSum: flow.WordSum(s, pages),
			Body:    s.ID == bodyID,
		})
	}
	return printJSON(infos)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("flowprint version %s\n", version)
	return nil
}

// printJSON writes v to stdout. Reports go to stdout; logs go to stderr.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("flowprint"),
		kong.Description("Content fingerprinting and paragraph identity for layout documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}

// Package reflist loads the reference list produced by the upstream rewrite
// process: a JSON array of records whose `original` field holds the text to
// verify. All other fields are opaque metadata, echoed back in diagnostics.
//
// A malformed top level (not valid JSON, not an array) is structural and
// aborts the run. A malformed element is a bad row: it is recorded and
// loading continues.
package reflist

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/onderwijsmedia/flowprint/core/errors"
	"github.com/onderwijsmedia/flowprint/core/match"
)

// item mirrors one reference record on disk.
type item struct {
	ID       string `json:"id"`
	Section  int    `json:"section"`
	Position int    `json:"position"`
	Original string `json:"original"`
}

// Result holds the loaded references plus the rows that could not be used.
type Result struct {
	References []match.Reference
	BadRows    []*errors.RowError
}

// Load reads a reference list from r.
func Load(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewStructural("load-references", "read failed", err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, errors.NewStructural("load-references", "not a JSON array", err)
	}

	res := &Result{}
	for i, raw := range elements {
		var it item
		if err := json.Unmarshal(raw, &it); err != nil {
			res.BadRows = append(res.BadRows, &errors.RowError{
				Row: i, Reason: "not a reference object", Err: err,
			})
			continue
		}
		if strings.TrimSpace(it.Original) == "" {
			res.BadRows = append(res.BadRows, errors.NewRow(i, "original", "missing or empty"))
			continue
		}
		res.References = append(res.References, match.Reference{
			ID:       it.ID,
			Section:  it.Section,
			Position: it.Position,
			Original: it.Original,
		})
	}
	return res, nil
}

// LoadFile reads a reference list from a JSON file.
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStructural("load-references", "cannot open "+path, err)
	}
	defer f.Close()
	return Load(f)
}

// Package editlog persists the tabular record of applied edits alongside
// recomputed fingerprint keys, backed by SQLite.
//
// Recording and fingerprinting are two phases: edit positions (stream index,
// block index) are recorded while the rewrite pass runs, but layout repair
// can still reshuffle the document afterwards. RefreshKeys recomputes every
// row's key against the document's final, saved state, so persisted keys
// never describe a transient in-memory document.
package editlog

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/onderwijsmedia/flowprint/core/errors"
	"github.com/onderwijsmedia/flowprint/core/flow"
	"github.com/onderwijsmedia/flowprint/core/match"
)

const schema = `
CREATE TABLE IF NOT EXISTS edits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	stream_idx INTEGER NOT NULL,
	block_idx INTEGER NOT NULL,
	section INTEGER NOT NULL DEFAULT 0,
	note TEXT NOT NULL DEFAULT '',
	fingerprint_key TEXT NOT NULL DEFAULT '',
	snippet TEXT NOT NULL DEFAULT '',
	recomputed_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_edits_run ON edits(run_id);
`

// Edit is one recorded edit position with its (possibly stale) identity.
type Edit struct {
	ID        int64  `json:"id"`
	RunID     string `json:"run_id"`
	StreamIdx int    `json:"stream_idx"`
	BlockIdx  int    `json:"block_idx"`
	Section   int    `json:"section"`
	Note      string `json:"note"`
	Key       string `json:"fingerprint_key"`
	Snippet   string `json:"snippet"`
}

// RefreshSummary reports the outcome of a RefreshKeys pass.
type RefreshSummary struct {
	Total     int                `json:"total"`
	Refreshed int                `json:"refreshed"`
	BadRows   []*errors.RowError `json:"-"`
}

// Store is an edit log backed by a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) an edit log at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open edit log")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create edit log schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one edit row.
func (s *Store) Record(e Edit) error {
	_, err := s.db.Exec(
		`INSERT INTO edits (run_id, stream_idx, block_idx, section, note, fingerprint_key, snippet)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.StreamIdx, e.BlockIdx, e.Section, e.Note, e.Key, e.Snippet,
	)
	return errors.Wrap(err, "record edit")
}

// Edits returns the rows of one run in insertion order.
func (s *Store) Edits(runID string) ([]Edit, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, stream_idx, block_idx, section, note, fingerprint_key, snippet
		 FROM edits WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query edits")
	}
	defer rows.Close()

	var edits []Edit
	for rows.Next() {
		var e Edit
		if err := rows.Scan(&e.ID, &e.RunID, &e.StreamIdx, &e.BlockIdx, &e.Section, &e.Note, &e.Key, &e.Snippet); err != nil {
			return nil, errors.Wrap(err, "scan edit")
		}
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

// RefreshKeys recomputes the fingerprint key of every row in the run against
// the document's current state. Rows whose position no longer resolves (the
// document shrank since recording) become bad rows; the pass continues.
func (s *Store) RefreshKeys(runID string, doc *flow.Document) (*RefreshSummary, error) {
	edits, err := s.Edits(runID)
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{Total: len(edits)}
	now := time.Now().UTC().Format(time.RFC3339)
	for i, e := range edits {
		rec, err := match.RecomputeKey(doc, e.StreamIdx, e.BlockIdx)
		if err != nil {
			summary.BadRows = append(summary.BadRows, &errors.RowError{
				Row: i, Field: "block_idx", Reason: "position no longer resolves", Err: err,
			})
			continue
		}
		if _, err := s.db.Exec(
			`UPDATE edits SET fingerprint_key = ?, snippet = ?, recomputed_at = ? WHERE id = ?`,
			string(rec.Key), rec.NormalizedSnippet, now, e.ID,
		); err != nil {
			return nil, errors.Wrapf(err, "update edit %d", e.ID)
		}
		summary.Refreshed++
	}
	return summary, nil
}

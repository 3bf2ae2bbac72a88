// Package bundle packages one verification run as a tar.xz archive for
// pipeline hand-off: a manifest identifying the run and the document
// snapshot it ran against, plus the coverage report.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/onderwijsmedia/flowprint/core/match"
)

// Archive member names.
const (
	manifestName = "manifest.json"
	reportName   = "report.json"
)

// Extension is the suffix of run bundle files.
const Extension = ".verify.tar.xz"

// Manifest identifies a verification run.
type Manifest struct {
	RunID          string `json:"run_id"`
	Document       string `json:"document"`
	Pages          string `json:"pages"`
	SnapshotDigest string `json:"snapshot_digest"`
	CreatedAt      string `json:"created_at"`
}

// Bundle is the full content of a run bundle.
type Bundle struct {
	Manifest Manifest      `json:"manifest"`
	Summary  match.Summary `json:"summary"`
}

// Write writes the bundle to dir as <run-id>.verify.tar.xz and returns the
// archive path.
func Write(dir string, b *Bundle) (string, error) {
	if b.Manifest.RunID == "" {
		return "", fmt.Errorf("bundle has no run ID")
	}
	if b.Manifest.CreatedAt == "" {
		b.Manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create bundle directory: %w", err)
	}
	path := filepath.Join(dir, b.Manifest.RunID+Extension)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create bundle file: %w", err)
	}
	defer f.Close()

	xzw, err := xz.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	entries := []struct {
		name string
		data interface{}
	}{
		{manifestName, b.Manifest},
		{reportName, b.Summary},
	}
	for _, e := range entries {
		data, err := json.MarshalIndent(e.data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal %s: %w", e.name, err)
		}
		hdr := &tar.Header{
			Name:    e.name,
			Mode:    0644,
			Size:    int64(len(data)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return "", fmt.Errorf("write %s header: %w", e.name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return "", fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("close tar: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return "", fmt.Errorf("close xz: %w", err)
	}
	return path, f.Close()
}

// Read loads a run bundle from disk.
func Read(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("xz reader: %w", err)
	}
	tr := tar.NewReader(xzr)

	b := &Bundle{}
	seen := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle entry: %w", err)
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}

		switch hdr.Name {
		case manifestName:
			if err := json.Unmarshal(buf.Bytes(), &b.Manifest); err != nil {
				return nil, fmt.Errorf("parse %s: %w", hdr.Name, err)
			}
			seen++
		case reportName:
			if err := json.Unmarshal(buf.Bytes(), &b.Summary); err != nil {
				return nil, fmt.Errorf("parse %s: %w", hdr.Name, err)
			}
			seen++
		}
	}
	if seen != 2 {
		return nil, fmt.Errorf("bundle %s is incomplete", path)
	}
	return b, nil
}

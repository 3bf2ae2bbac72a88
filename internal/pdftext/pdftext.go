// Package pdftext derives reference lists from print-ready PDFs. It is the
// cross-check path: when no curated reference list exists for a chapter, the
// rendered PDF's own paragraphs can be matched back against the layout
// document that produced it.
package pdftext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/onderwijsmedia/flowprint/core/errors"
	"github.com/onderwijsmedia/flowprint/core/match"
)

// MinParagraphRunes filters out running headers, folios, and stray labels
// that PDF text extraction yields as tiny fragments.
const MinParagraphRunes = 40

// Extract reads every page of the PDF at path and returns one reference per
// paragraph. Reference IDs are "p<page>-<n>" with n the paragraph's ordinal
// on its page; Section carries the 1-based page number.
func Extract(path string) ([]match.Reference, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewStructural("load-references", "not a readable PDF", err)
	}
	defer f.Close()

	var refs []match.Reference
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errors.NewStructural("load-references",
				fmt.Sprintf("cannot extract page %d", pageNum), err)
		}
		for i, para := range splitParagraphs(text, MinParagraphRunes) {
			refs = append(refs, match.Reference{
				ID:       fmt.Sprintf("p%d-%d", pageNum, i+1),
				Section:  pageNum,
				Position: i + 1,
				Original: para,
			})
		}
	}
	if len(refs) == 0 {
		return nil, errors.NewStructural("load-references", "PDF yields no paragraphs", nil)
	}
	return refs, nil
}

// splitParagraphs cuts extracted page text at blank lines and drops
// fragments shorter than minRunes.
func splitParagraphs(text string, minRunes int) []string {
	var paras []string
	for _, chunk := range strings.Split(text, "\n\n") {
		lines := strings.Fields(strings.ReplaceAll(chunk, "\n", " "))
		para := strings.Join(lines, " ")
		if utf8.RuneCountInString(para) < minRunes {
			continue
		}
		paras = append(paras, para)
	}
	return paras
}

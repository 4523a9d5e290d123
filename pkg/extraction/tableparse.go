// Package extraction renders prompts, calls the LLM router, and parses the
// typed result for each Section (spec.md §4.3).
package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsedRow is one HTML table row's cell text, in column order.
type ParsedRow struct {
	Cells []string
}

// ParsedTable is a simple, label-agnostic HTML table extraction: no type
// classification, just rows of cell text. Adapted from the teacher's
// pkg/core/fee/table_parser.go (goquery table walk) and trimmed to the
// minimum the "simple tables" items (5, 6, 7, 20 — spec.md §4.3 model
// routing) need: a pre-structured candidate to hand the local provider
// instead of raw prose, mirroring the teacher's
// Navigator→Mapper→GoExtractor v2 architecture.
func ParseHTMLTables(html string) ([]ParsedTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var tables []ParsedTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var pt ParsedTable
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				pt.Rows = append(pt.Rows, ParsedRow{Cells: cells})
			}
		})
		if len(pt.Rows) > 0 {
			tables = append(tables, pt)
		}
	})
	return tables, nil
}

// ParsedTable is one <table>'s rows.
type ParsedTable struct {
	Rows []ParsedRow
}

// AsCandidateText renders the parsed rows as a compact pipe-delimited block,
// the pre-structured candidate handed to the local provider for it to
// confirm or repair rather than re-deriving structure from prose.
func (t ParsedTable) AsCandidateText() string {
	var b strings.Builder
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row.Cells, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

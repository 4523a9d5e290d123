package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/model"
)

// ExtractRange builds a standalone PDF containing only [startPage, endPage]
// (1-based, inclusive) of the source document, the unit the extraction
// engine stores per section (pkg/contenthash.ProcessedSectionPath).
// Grounded on the teacher's other_examples unipdf fdfmerge reference, which
// builds an output PDF page by page via model.NewPdfWriter/AddPage.
func (d *Document) ExtractRange(startPage, endPage int) ([]byte, error) {
	if startPage < 1 || endPage < startPage || endPage > d.NumPages {
		return nil, fmt.Errorf("pdfdoc: invalid page range [%d,%d] of %d pages", startPage, endPage, d.NumPages)
	}

	writer := model.NewPdfWriter()
	for p := startPage; p <= endPage; p++ {
		page, err := d.reader.GetPage(p)
		if err != nil {
			return nil, fmt.Errorf("pdfdoc: get page %d: %w", p, err)
		}
		if err := writer.AddPage(page); err != nil {
			return nil, fmt.Errorf("pdfdoc: add page %d: %w", p, err)
		}
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf); err != nil {
		return nil, fmt.Errorf("pdfdoc: write extracted range: %w", err)
	}
	return buf.Bytes(), nil
}

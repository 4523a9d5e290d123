// Package pdfdoc opens a raw FDD PDF and exposes per-page text and page
// count, grounded on the teacher's other_examples unipdf reference
// (model.NewPdfReader / PageList) since the teacher's own pkg/core tree has
// no PDF handling of its own.
package pdfdoc

import (
	"fmt"
	"os"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// Document is an opened PDF with its pages indexed 1-based, matching the
// FDD item boundaries' StartPage/EndPage convention (pkg/model.Section).
type Document struct {
	reader   *model.PdfReader
	f        *os.File
	NumPages int
}

// Open reads path and constructs a Document. The file handle stays open for
// the Document's lifetime; call Close when done.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: open %s: %w", path, err)
	}

	reader, err := model.NewPdfReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pdfdoc: parse %s: %w", path, err)
	}

	n, err := reader.GetNumPages()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pdfdoc: page count %s: %w", path, err)
	}

	return &Document{reader: reader, f: f, NumPages: n}, nil
}

func (d *Document) Close() error {
	return d.f.Close()
}

// PageText extracts the plain text of a single 1-based page number.
func (d *Document) PageText(pageNo int) (string, error) {
	page, err := d.reader.GetPage(pageNo)
	if err != nil {
		return "", fmt.Errorf("pdfdoc: get page %d: %w", pageNo, err)
	}
	ext, err := extractor.New(page)
	if err != nil {
		return "", fmt.Errorf("pdfdoc: new extractor page %d: %w", pageNo, err)
	}
	text, err := ext.ExtractText()
	if err != nil {
		return "", fmt.Errorf("pdfdoc: extract text page %d: %w", pageNo, err)
	}
	return text, nil
}

// RangeText concatenates PageText for [startPage, endPage] inclusive,
// 1-based, matching pkg/model.Section.StartPage/EndPage.
func (d *Document) RangeText(startPage, endPage int) (string, error) {
	var out []byte
	for p := startPage; p <= endPage; p++ {
		t, err := d.PageText(p)
		if err != nil {
			return "", err
		}
		out = append(out, t...)
		out = append(out, '\n')
	}
	return string(out), nil
}

// AllPages returns the text of every page in order, 1-indexed result[0]
// being page 1, used by the section detector's text-scan pass.
func (d *Document) AllPages() ([]string, error) {
	pages := make([]string, d.NumPages)
	for i := 0; i < d.NumPages; i++ {
		t, err := d.PageText(i + 1)
		if err != nil {
			return nil, err
		}
		pages[i] = t
	}
	return pages, nil
}

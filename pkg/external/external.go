// Package external declares the thin collaborator interfaces the pipeline
// depends on but does not implement itself (spec.md §6): the inbound
// document producer, blob storage, and the layout-analysis service the
// Segmentation stage calls before pkg/section's detector runs. Grounded on
// the teacher's provider-interface convention (pkg/core/llm.Provider) of
// keeping vendor/service boundaries as single-method-ish interfaces rather
// than wide base classes.
package external

import (
	"context"
	"io"

	"fddpipeline/pkg/section"
)

// RegisteredDocument is what a Scraper hands the Registration stage.
type RegisteredDocument struct {
	FranchisorNameHint string
	FilingState        string
	SourceURL          string
	Content            []byte
}

// Scraper is the inbound document producer (spec.md §9's "single Scraper
// interface... replacing the source's base-class scrapers"). Out of scope
// to implement: spec.md's Non-goals exclude the scrapers themselves, so
// this interface exists purely as the Registration stage's dependency
// seam.
type Scraper interface {
	RegisterDocument(ctx context.Context) (*RegisteredDocument, error)
}

// ObjectStore persists raw FDD bytes and the per-section sub-PDFs
// pkg/pdfdoc.ExtractRange produces (spec.md §4.9's storage_path columns
// point into this).
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	GetRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error)
}

// LayoutAnalyzer turns a document's raw bytes into the block-level Layout
// pkg/section.Detect consumes. In production this wraps pkg/pdfdoc's text
// extraction; pkg/external/fixture backs it with canned layouts for tests.
type LayoutAnalyzer interface {
	Analyze(ctx context.Context, content []byte) (section.Layout, error)
}

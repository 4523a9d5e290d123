// Package fixture backs external.LayoutAnalyzer with a canned Layout, so
// scheduler and section tests exercise the Segmentation stage boundary
// without a real layout-analysis service. Grounded on the same
// MemoryStore-style fake-collaborator pattern memstore uses.
package fixture

import (
	"context"
	"fmt"

	"fddpipeline/pkg/external"
	"fddpipeline/pkg/section"
)

// LayoutAnalyzer returns a fixed Layout regardless of content, keyed by the
// content's length so a test can register more than one canned layout.
type LayoutAnalyzer struct {
	layouts map[int]section.Layout
	err     error
}

var _ external.LayoutAnalyzer = (*LayoutAnalyzer)(nil)

func New() *LayoutAnalyzer {
	return &LayoutAnalyzer{layouts: make(map[int]section.Layout)}
}

// Register associates contentLen with the Layout Analyze should return for
// content of that exact length.
func (f *LayoutAnalyzer) Register(contentLen int, layout section.Layout) {
	f.layouts[contentLen] = layout
}

// WithError makes every Analyze call fail with err, for testing
// Segmentation-stage error handling.
func (f *LayoutAnalyzer) WithError(err error) *LayoutAnalyzer {
	f.err = err
	return f
}

func (f *LayoutAnalyzer) Analyze(ctx context.Context, content []byte) (section.Layout, error) {
	if f.err != nil {
		return section.Layout{}, f.err
	}
	layout, ok := f.layouts[len(content)]
	if !ok {
		return section.Layout{}, fmt.Errorf("fixture: no layout registered for content length %d", len(content))
	}
	return layout, nil
}

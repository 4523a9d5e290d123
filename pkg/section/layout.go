// Package section partitions an FDD's pages into Item sections using layout
// analysis output plus raw page text, implementing spec.md §4.2's five-pass
// detector. Grounded on the teacher's pkg/core/fee/section_router.go
// (TableMatcher pattern-library structure) and pkg/core/edgar/v2_extractor.go
// (TOC-parsing, pattern-fallback architecture).
package section

// BlockType mirrors the layout analyzer's per-block classification
// (spec.md §4.2: "type ∈ {title, text, header, table, image}").
type BlockType string

const (
	BlockTitle  BlockType = "title"
	BlockText   BlockType = "text"
	BlockHeader BlockType = "header"
	BlockTable  BlockType = "table"
	BlockImage  BlockType = "image"
)

// Block is one layout-analyzer block on a page.
type Block struct {
	Type       BlockType
	Page       int // 1-based
	Text       string
	Confidence float64
}

// Layout is the per-document layout record the pkg/external.LayoutAnalyzer
// produces.
type Layout struct {
	Blocks    []Block
	NumPages  int
}

package section

import (
	"strconv"
	"testing"
)

func block(typ BlockType, page int, text string) Block {
	return Block{Type: typ, Page: page, Text: text}
}

func TestDetect_AnchorPassOrdersByPage(t *testing.T) {
	layout := Layout{NumPages: 50}
	for n := 1; n <= 20; n++ {
		layout.Blocks = append(layout.Blocks, block(BlockTitle, n*2, "Item "+strconv.Itoa(n)))
	}

	sections, err := Detect(layout, "fdd-1", 18)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(sections) != 20 {
		t.Fatalf("expected 20 sections, got %d", len(sections))
	}
	for i, s := range sections {
		if s.ItemNo != i+1 {
			t.Fatalf("expected item %d at index %d, got %d", i+1, i, s.ItemNo)
		}
	}
	if sections[19].EndPage != 50 {
		t.Fatalf("expected last section to end at total pages, got %d", sections[19].EndPage)
	}
	if sections[0].EndPage != sections[1].StartPage-1 {
		t.Fatalf("expected boundary assignment: section 0 ends where section 1 starts - 1")
	}
}

func TestDetect_InsufficientAnchorsBelowThreshold(t *testing.T) {
	layout := Layout{NumPages: 20}
	for n := 1; n <= 5; n++ {
		layout.Blocks = append(layout.Blocks, block(BlockTitle, n*2, "Item "+strconv.Itoa(n)))
	}
	_, err := Detect(layout, "fdd-2", 18)
	if err == nil {
		t.Fatalf("expected insufficient-anchors error")
	}
	if _, ok := err.(*ErrInsufficientAnchors); !ok {
		t.Fatalf("expected *ErrInsufficientAnchors, got %T", err)
	}
}

func TestDetect_InterpolationFillsGap(t *testing.T) {
	layout := Layout{NumPages: 40}
	for n := 1; n <= 20; n++ {
		if n == 10 {
			continue // item 10 missing between 9 (page 18) and 11 (page 22)
		}
		layout.Blocks = append(layout.Blocks, block(BlockTitle, n*2, "Item "+strconv.Itoa(n)))
	}

	sections, err := Detect(layout, "fdd-3", 18)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var found *int
	for _, s := range sections {
		if s.ItemNo == 10 {
			p := s.StartPage
			found = &p
		}
	}
	if found == nil {
		t.Fatalf("expected item 10 to be interpolated")
	}
	if *found != 20 {
		t.Fatalf("expected item 10 interpolated at page 20 (ceil((18+22)/2)), got %d", *found)
	}
	for _, s := range sections {
		if s.ItemNo == 10 && !s.NeedsReview {
			t.Fatalf("interpolated section must be flagged needs_review")
		}
	}
}

func TestDetect_TOCPassFillsAnchorGaps(t *testing.T) {
	layout := Layout{NumPages: 60}
	layout.Blocks = append(layout.Blocks, block(BlockText, 1, "Table of Contents\nItem 5 Initial Fees ... 12\nItem 6 Other Fees ... 11"))
	for n := 5; n <= 22; n++ {
		if n == 6 {
			continue
		}
		layout.Blocks = append(layout.Blocks, block(BlockTitle, n*2, "Item "+strconv.Itoa(n)))
	}

	sections, err := Detect(layout, "fdd-4", 18)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, s := range sections {
		if s.ItemNo == 6 && s.StartPage != 11 {
			t.Fatalf("expected item 6 placed from TOC at page 11, got %d", s.StartPage)
		}
	}
}

func TestFuzzyRatio_ExactAndTypo(t *testing.T) {
	if fuzzyRatio("FINANCIAL STATEMENTS", "FINANCIAL STATEMENTS") != 100 {
		t.Fatalf("expected 100 for identical strings")
	}
	if r := fuzzyRatio("FINANCAIL STATEMENTS", "FINANCIAL STATEMENTS"); r < 80 {
		t.Fatalf("expected a minor typo to still score >= 80, got %d", r)
	}
}


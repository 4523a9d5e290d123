package section

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyRatio returns a 0-100 similarity ratio in the style of common
// "fuzzy ratio" libraries: 100 * (1 - distance/maxLen). No pack example
// computes edit distance, so this is the one new dependency not already
// in the teacher's go.mod (github.com/agnivade/levenshtein).
func fuzzyRatio(a, b string) int {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 100.0 * (1.0 - float64(dist)/float64(maxLen))
	if ratio < 0 {
		ratio = 0
	}
	return int(ratio)
}

// fuzzyPass matches the remaining missing items' canonical titles against
// title/header block text using a bounded Levenshtein ratio (spec.md §4.2
// pass 4: "ratio ≥ 80").
func fuzzyPass(blocks []Block, missing map[int]bool) []candidate {
	var out []candidate
	for _, b := range blocks {
		if b.Type != BlockTitle && b.Type != BlockHeader {
			continue
		}
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		for itemNo := range missing {
			title, ok := itemTitles[itemNo]
			if !ok {
				continue
			}
			if fuzzyRatio(text, title) >= 80 {
				out = append(out, candidate{itemNo: itemNo, page: b.Page, confidence: 0.70, pass: passFuzzy})
			}
		}
	}
	return out
}

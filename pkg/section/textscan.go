package section

import "strings"

// textScanPass applies per-item substring patterns to pages not already
// anchored (spec.md §4.2 pass 3).
func textScanPass(blocks []Block, anchoredPages map[int]bool) []candidate {
	var out []candidate
	for _, b := range blocks {
		if anchoredPages[b.Page] {
			continue
		}
		if b.Type != BlockTitle && b.Type != BlockHeader && b.Type != BlockText {
			continue
		}
		lower := strings.ToLower(b.Text)
		for itemNo, patterns := range textScanPatterns {
			for _, p := range patterns {
				if strings.Contains(lower, p) {
					out = append(out, candidate{itemNo: itemNo, page: b.Page, confidence: 0.75, pass: passTextScan})
					break
				}
			}
		}
	}
	return out
}

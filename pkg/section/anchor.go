package section

import (
	"regexp"
	"strconv"
)

// anchorRe matches an "Item N" title/header block (spec.md §4.2 pass 1).
var anchorRe = regexp.MustCompile(`(?i)^\s*item\s+(\d{1,2})\b`)

// anchorPass scans title/header blocks for explicit "Item N" markers.
func anchorPass(blocks []Block) []candidate {
	var out []candidate
	for _, b := range blocks {
		if b.Type != BlockTitle && b.Type != BlockHeader {
			continue
		}
		m := anchorRe.FindStringSubmatch(b.Text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 25 {
			continue
		}
		out = append(out, candidate{itemNo: n, page: b.Page, confidence: 0.95, pass: passAnchor})
	}
	return out
}

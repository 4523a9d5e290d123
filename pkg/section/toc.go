package section

import (
	"regexp"
	"strconv"
	"strings"
)

var tocMarker = regexp.MustCompile(`(?i)table\s+of\s+contents`)

// tocLineRe matches a TOC line such as "Item 5 ... Initial Fees ... 12"
// (spec.md §4.2 pass 2: "Item N … pageP").
var tocLineRe = regexp.MustCompile(`(?i)item\s+(\d{1,2})\b.*?(\d{1,4})\s*$`)

// tocPass looks for a Table of Contents region within the first 10% of
// pages and parses "Item N ... pageP" lines out of it.
func tocPass(blocks []Block, numPages int) []candidate {
	cutoff := (numPages + 9) / 10 // ceil(numPages * 0.1), at least covers page 1
	if cutoff < 1 {
		cutoff = 1
	}

	var tocPages []int
	for _, b := range blocks {
		if b.Page > cutoff {
			continue
		}
		if b.Type == BlockText || b.Type == BlockTitle || b.Type == BlockHeader {
			if tocMarker.MatchString(b.Text) {
				tocPages = append(tocPages, b.Page)
			}
		}
	}
	if len(tocPages) == 0 {
		return nil
	}
	tocSet := make(map[int]bool, len(tocPages))
	for _, p := range tocPages {
		tocSet[p] = true
	}

	var out []candidate
	for _, b := range blocks {
		if !tocSet[b.Page] {
			continue
		}
		for _, line := range strings.Split(b.Text, "\n") {
			m := tocLineRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err1 := strconv.Atoi(m[1])
			p, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil || n < 1 || n > 25 || p < 1 {
				continue
			}
			out = append(out, candidate{itemNo: n, page: p, confidence: 0.90, pass: passTOC})
		}
	}
	return out
}

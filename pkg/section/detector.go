package section

import (
	"fmt"
	"sort"

	"fddpipeline/pkg/model"
)

// MinAnchorsRequired is the default validation threshold (spec.md §4.2 pass
// 8, §6 "detector.min_anchors_required: default 18"). config.Config
// overrides this per deployment.
const MinAnchorsRequired = 18

// ErrInsufficientAnchors is a recoverable condition (spec.md §4.2): the
// caller should emit a single Section covering all pages with
// needs_review=true rather than treat it as fatal.
type ErrInsufficientAnchors struct {
	Found    int
	Required int
}

func (e *ErrInsufficientAnchors) Error() string {
	return fmt.Sprintf("section: insufficient anchors: found %d of %d required", e.Found, e.Required)
}

// Detected is one resolved item placement prior to boundary assignment.
type Detected struct {
	ItemNo      int
	StartPage   int
	Confidence  float64
	NeedsReview bool
}

// Detect runs the five-pass algorithm (spec.md §4.2) and returns ordered,
// boundary-assigned Sections. minAnchors overrides MinAnchorsRequired; pass
// 0 to use the default.
func Detect(layout Layout, fddID string, minAnchors int) ([]model.Section, error) {
	if minAnchors <= 0 {
		minAnchors = MinAnchorsRequired
	}

	candidates := anchorPass(layout.Blocks)
	anchoredPages := make(map[int]bool)
	for _, c := range candidates {
		anchoredPages[c.page] = true
	}

	candidates = append(candidates, tocPass(layout.Blocks, layout.NumPages)...)

	candidates = append(candidates, textScanPass(layout.Blocks, anchoredPages)...)

	merged := mergeCandidates(candidates)
	missing := make(map[int]bool)
	for n := 1; n <= 25; n++ {
		if _, ok := merged[n]; !ok {
			missing[n] = true
		}
	}
	if len(missing) > 0 {
		candidates = append(candidates, fuzzyPass(layout.Blocks, missing)...)
		merged = mergeCandidates(candidates)
	}

	resolved := resolveMerged(merged)
	resolved = interpolate(resolved, layout.NumPages)

	if len(resolved) < minAnchors {
		return nil, &ErrInsufficientAnchors{Found: len(resolved), Required: minAnchors}
	}

	return assignBoundaries(resolved, layout.NumPages, fddID), nil
}

// mergeCandidates groups by item_no, keeping the best candidate per the
// tie-break rule, then drops any whose page is not monotone relative to
// the prior chosen item (spec.md §4.2 pass 5).
func mergeCandidates(cands []candidate) map[int]candidate {
	best := make(map[int]candidate)
	for _, c := range cands {
		cur, ok := best[c.itemNo]
		if !ok || c.betterThan(cur) {
			best[c.itemNo] = c
		}
	}

	items := make([]int, 0, len(best))
	for n := range best {
		items = append(items, n)
	}
	sort.Ints(items)

	out := make(map[int]candidate, len(best))
	lastPage := 0
	for _, n := range items {
		c := best[n]
		if c.page <= lastPage {
			continue
		}
		out[n] = c
		lastPage = c.page
	}
	return out
}

func resolveMerged(merged map[int]candidate) []Detected {
	out := make([]Detected, 0, len(merged))
	for n, c := range merged {
		out = append(out, Detected{ItemNo: n, StartPage: c.page, Confidence: c.confidence})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemNo < out[j].ItemNo })
	return out
}

// interpolate fills single-item gaps between two confidently-placed
// neighbors (spec.md §4.2 pass 6).
func interpolate(resolved []Detected, numPages int) []Detected {
	byItem := make(map[int]Detected, len(resolved))
	for _, d := range resolved {
		byItem[d.ItemNo] = d
	}

	for n := 2; n <= 24; n++ {
		if _, ok := byItem[n]; ok {
			continue
		}
		prev, okPrev := byItem[n-1]
		next, okNext := byItem[n+1]
		if !okPrev || !okNext {
			continue
		}
		if next.StartPage-prev.StartPage >= 2 {
			byItem[n] = Detected{
				ItemNo:      n,
				StartPage:   (prev.StartPage + next.StartPage + 1) / 2, // ceil((a+b)/2)
				Confidence:  0.50,
				NeedsReview: true,
			}
		}
	}

	out := make([]Detected, 0, len(byItem))
	for _, d := range byItem {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartPage < out[j].StartPage })
	return out
}

// assignBoundaries sets each Section's end_page to the next Section's
// start_page-1, the last ending at total_pages (spec.md §4.2 pass 7).
func assignBoundaries(resolved []Detected, numPages int, fddID string) []model.Section {
	out := make([]model.Section, 0, len(resolved))
	for i, d := range resolved {
		end := numPages
		if i+1 < len(resolved) {
			end = resolved[i+1].StartPage - 1
		}
		out = append(out, model.Section{
			FDDID:               fddID,
			ItemNo:              d.ItemNo,
			StartPage:           d.StartPage,
			EndPage:             end,
			ExtractionStatus:    model.SectionPending,
			NeedsReview:         d.NeedsReview,
			DetectionConfidence: d.Confidence,
		})
	}
	return out
}

// FallbackSection builds the single all-pages, needs_review Section emitted
// when Detect reports ErrInsufficientAnchors (spec.md §4.2: "InsufficientAnchors
// (recoverable: emit a single Section covering all pages with
// needs_review=true)").
func FallbackSection(fddID string, numPages int) model.Section {
	return model.Section{
		FDDID:               fddID,
		ItemNo:              0,
		StartPage:           1,
		EndPage:             numPages,
		ExtractionStatus:    model.SectionPending,
		NeedsReview:         true,
		DetectionConfidence: 0,
	}
}

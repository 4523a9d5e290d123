package model

import "encoding/json"

// ExtractedItem is a tagged variant discriminated by ItemNo (spec.md §9
// Design Notes): the validator and storage router both dispatch on Tag
// rather than on a Go type switch over concrete extraction structs, the way
// the teacher's FSAPValue/DataSourceType pairing tags payload provenance.
type ExtractedItem struct {
	SectionID     string
	ItemNo        int
	Tag           ItemTag
	Item5         *Item5Fees        `json:"item5,omitempty"`
	Item6         *Item6Fees        `json:"item6,omitempty"`
	Item7         *Item7Investment  `json:"item7,omitempty"`
	Item19        *Item19FPR        `json:"item19,omitempty"`
	Item20        *Item20Outlets    `json:"item20,omitempty"`
	Item21        *Item21Financials `json:"item21,omitempty"`
	Opaque        json.RawMessage   `json:"opaque,omitempty"`
	SchemaVersion string            `json:"schema_version,omitempty"`
	ExtractionMeta
}

// ItemTag discriminates the ExtractedItem union.
type ItemTag string

const (
	TagItem5  ItemTag = "item5"
	TagItem6  ItemTag = "item6"
	TagItem7  ItemTag = "item7"
	TagItem19 ItemTag = "item19"
	TagItem20 ItemTag = "item20"
	TagItem21 ItemTag = "item21"
	TagOpaque ItemTag = "opaque"
)

// TagForItem returns the discriminator for a given FDD item number.
func TagForItem(itemNo int) ItemTag {
	switch itemNo {
	case 5:
		return TagItem5
	case 6:
		return TagItem6
	case 7:
		return TagItem7
	case 19:
		return TagItem19
	case 20:
		return TagItem20
	case 21:
		return TagItem21
	default:
		return TagOpaque
	}
}

// ExtractionMeta accompanies every extracted item (spec.md §4.3 output).
type ExtractionMeta struct {
	Model          string
	PromptVersion  string
	TokensUsed     int
	AttemptCount   int
	Confidence     float64
}

// Item5Fee is a single initial fee line (spec.md §3, Item 5).
type Item5Fee struct {
	Name         string
	AmountCents  int64
	Refundable   bool
	Conditions   string
}

// Item5Fees is the set of initial fees for a section.
type Item5Fees struct {
	Fees []Item5Fee
}

// FeeFrequency is Item 6's recurrence cadence.
type FeeFrequency string

// Item6Fee is a single other-fee line (spec.md §3, Item 6). Exactly one of
// AmountCents/AmountPercentage is set.
type Item6Fee struct {
	Name             string
	AmountCents      *int64
	AmountPercentage *float64
	Frequency        FeeFrequency
	Basis            string
	MinCents         *int64
	MaxCents         *int64
}

// Item6Fees is the set of other fees for a section.
type Item6Fees struct {
	Fees []Item6Fee
}

// Item7Category is a single initial-investment line (spec.md §3, Item 7).
type Item7Category struct {
	Category string
	LowCents  int64
	HighCents int64
	WhenDue   string
	ToWhom    string
}

// Item7Investment is the set of initial investment categories.
type Item7Investment struct {
	Categories []Item7Category
}

// Item19FPR is the Financial Performance Representation disclosure.
type Item19FPR struct {
	DisclosureType string
	SampleSize     int
	TimePeriod     string
	LowCents       *int64
	AverageCents   *int64
	MedianCents    *int64
	HighCents      *int64
}

// Item20OutletRow is the per (fiscal_year, outlet_type) outlet table row.
type Item20OutletRow struct {
	FiscalYear       int
	OutletType       OutletType
	Start            int
	Opened           int
	Closed           int
	TransferredIn    int
	TransferredOut   int
	End              int
}

// Item20Outlets is the set of outlet rows for a section.
type Item20Outlets struct {
	Rows []Item20OutletRow
}

// Item21Year is one fiscal year of financials (spec.md §3, Item 21).
type Item21Year struct {
	FiscalYear         int
	TotalAssetsCents      int64
	TotalLiabilitiesCents int64
	TotalEquityCents      int64
	RevenueCents          int64
	NetIncomeCents        int64
}

// Item21Financials is the set of fiscal-year financial rows for a section.
type Item21Financials struct {
	Years []Item21Year
}

// Valid reports whether r satisfies the Item 20 outlet-math invariant
// (spec.md §3, §8): end == start + opened - closed + transferred_in - transferred_out.
func (r Item20OutletRow) ExpectedEnd() int {
	return r.Start + r.Opened - r.Closed + r.TransferredIn - r.TransferredOut
}

// Balanced reports whether assets and liabilities+equity agree within 1 cent dollar
// tolerance (100 cents, spec.md §8).
func (y Item21Year) BalanceDiffCents() int64 {
	diff := y.TotalAssetsCents - (y.TotalLiabilitiesCents + y.TotalEquityCents)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

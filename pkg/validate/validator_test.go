package validate

import (
	"context"
	"testing"
	"time"

	"fddpipeline/pkg/model"
)

type fakeBypassStore struct {
	active bool
	reason string
}

func (f *fakeBypassStore) IsActive(ctx context.Context, entityID, entityType string) (bool, string, error) {
	return f.active, f.reason, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

// TestValidateItem_OutletMathFailure covers the "outlet math failure"
// boundary scenario: end should be 2 rather than 1 (10+2-1+0-0=11... ) — the
// row below has end=1 but start+opened-closed+in-out=3, so it must fail.
func TestValidateItem_OutletMathFailure(t *testing.T) {
	item := &model.ExtractedItem{
		Tag: model.TagItem20,
		Item20: &model.Item20Outlets{Rows: []model.Item20OutletRow{
			{FiscalYear: 2024, OutletType: model.OutletFranchised, Start: 10, Opened: 2, Closed: 1, End: 1},
		}},
	}
	v := NewValidator(nil, nil)
	v.Now = fixedNow
	errs, err := v.ValidateItem(context.Background(), "fdd-1", item)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Category == model.CategoryBusinessRule && e.Severity == model.SeverityError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an outlet-math business-rule error, got %+v", errs)
	}
}

// TestValidateItem_Item19OrderingFailure covers the "Item 19 ordering
// failure" boundary scenario: average outside [low, high].
func TestValidateItem_Item19OrderingFailure(t *testing.T) {
	low := int64(10_00)
	high := int64(50_00)
	avg := int64(60_00)
	item := &model.ExtractedItem{
		Tag: model.TagItem19,
		Item19: &model.Item19FPR{
			LowCents:     &low,
			HighCents:    &high,
			AverageCents: &avg,
		},
	}
	v := NewValidator(nil, nil)
	v.Now = fixedNow
	errs, err := v.ValidateItem(context.Background(), "fdd-1", item)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.FieldPath == "item19.average_cents" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an average-outside-range error, got %+v", errs)
	}
}

func TestValidateItem_BypassDemotesError(t *testing.T) {
	item := &model.ExtractedItem{
		Tag: model.TagItem20,
		Item20: &model.Item20Outlets{Rows: []model.Item20OutletRow{
			{FiscalYear: 2024, Start: 10, Opened: 0, Closed: 0, End: 5},
		}},
	}
	bypass := &fakeBypassStore{active: true, reason: "known filer typo, confirmed with franchisor"}
	v := NewValidator(bypass, nil)
	v.Now = fixedNow
	errs, err := v.ValidateItem(context.Background(), "fdd-1", item)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, e := range errs {
		if e.Category == model.CategoryBusinessRule && e.Severity == model.SeverityError {
			t.Fatalf("expected error severity to be demoted under an active bypass, got %+v", e)
		}
	}
}

func TestValidateItem_OutlierFlagsAt5Sigma(t *testing.T) {
	stats := NewSampleStats()
	for i := 0; i < 10; i++ {
		stats.Add("item5.fees[0].amount_cents", 1000)
	}
	item := &model.ExtractedItem{
		Tag:   model.TagItem5,
		Item5: &model.Item5Fees{Fees: []model.Item5Fee{{Name: "Initial Franchise Fee", AmountCents: 999999}}},
	}
	v := NewValidator(nil, stats)
	v.Now = fixedNow
	errs, err := v.ValidateItem(context.Background(), "fdd-1", item)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	found := false
	for _, e := range errs {
		if e.Severity == model.SeverityInfo && e.Category == model.CategoryRange {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an info-severity outlier finding, got %+v", errs)
	}
}

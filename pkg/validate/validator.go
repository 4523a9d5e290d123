package validate

import (
	"context"
	"fmt"
	"time"

	"fddpipeline/pkg/model"
)

// Validator runs the full spec.md §4.4 pipeline for one extracted item:
// schema tier, business-rule tier, outlier tier, then bypass demotion.
// Not a package-level singleton: each FDD's validation run gets its own
// instance since Stats and BypassStore are request-scoped dependencies
// (spec.md §9's "no singletons for anything shared across concurrent
// section workers", generalized here from the scheduler to the validator).
type Validator struct {
	Bypass BypassStore
	Stats  HistoricalStats
	Now    func() time.Time
}

func NewValidator(bypass BypassStore, stats HistoricalStats) *Validator {
	return &Validator{Bypass: bypass, Stats: stats, Now: time.Now}
}

// ValidateItem validates a single item in isolation (schema + business-rule
// tiers that don't need a sibling item, plus the outlier tier), then applies
// any active bypass for (fddID, "fdd").
func (v *Validator) ValidateItem(ctx context.Context, fddID string, item *model.ExtractedItem) ([]model.ValidationError, error) {
	now := v.now()
	var errs []model.ValidationError

	errs = append(errs, ValidateSchema(item, now)...)

	switch item.Tag {
	case model.TagItem20:
		errs = append(errs, ValidateItem20OutletMath(item.Item20)...)
	case model.TagItem21:
		errs = append(errs, ValidateItem21Balance(item.Item21)...)
	case model.TagItem19:
		errs = append(errs, ValidateItem19Ordering(item.Item19)...)
	}

	outlierErrs, err := v.checkOutliers(ctx, item)
	if err != nil {
		return nil, err
	}
	errs = append(errs, outlierErrs...)

	return v.applyBypass(ctx, fddID, errs)
}

// ValidateFDD additionally runs the Item5/Item7 cross-field rule and the FDD
// temporal checks, which need more than one section's worth of context.
func (v *Validator) ValidateFDD(ctx context.Context, fdd *model.FDD, item5 *model.Item5Fees, item7 *model.Item7Investment) ([]model.ValidationError, error) {
	now := v.now()
	errs := ValidateTemporal(fdd, now)
	errs = append(errs, ValidateItem5Item7Consistency(item5, item7)...)
	return v.applyBypass(ctx, fdd.ID, errs)
}

func (v *Validator) checkOutliers(ctx context.Context, item *model.ExtractedItem) ([]model.ValidationError, error) {
	if v.Stats == nil {
		return nil, nil
	}

	var errs []model.ValidationError
	switch item.Tag {
	case model.TagItem5:
		for i, f := range item.Item5.Fees {
			e, err := CheckOutlier4Sigma(ctx, v.Stats, fmt.Sprintf("item5.fees[%d].amount_cents", i), f.AmountCents)
			if err != nil {
				return nil, err
			}
			if e != nil {
				errs = append(errs, *e)
			}
		}
	case model.TagItem21:
		for i, y := range item.Item21.Years {
			for path, val := range map[string]int64{
				fmt.Sprintf("item21.years[%d].revenue_cents", i):    y.RevenueCents,
				fmt.Sprintf("item21.years[%d].net_income_cents", i): y.NetIncomeCents,
			} {
				e, err := CheckOutlier4Sigma(ctx, v.Stats, path, val)
				if err != nil {
					return nil, err
				}
				if e != nil {
					errs = append(errs, *e)
				}
			}
		}
	}
	return errs, nil
}

func (v *Validator) applyBypass(ctx context.Context, entityID string, errs []model.ValidationError) ([]model.ValidationError, error) {
	if v.Bypass == nil || !model.HasBlockingError(errs) {
		return errs, nil
	}
	active, reason, err := v.Bypass.IsActive(ctx, entityID, "fdd")
	if err != nil {
		return nil, fmt.Errorf("validate: bypass lookup for %s: %w", entityID, err)
	}
	return ApplyBypass(errs, active, reason), nil
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

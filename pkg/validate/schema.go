package validate

import (
	"fmt"
	"time"

	"fddpipeline/pkg/model"
)

// ValidateSchema runs spec.md §4.4's schema tier: required-field and range
// checks per item type, run before any business-rule or cross-field check.
// Grounded on the teacher's pkg/core/validate range checks (ValidateRange,
// ValidatePositive), generalized from income-statement fields to the six
// normalized FDD item schemas.
func ValidateSchema(item *model.ExtractedItem, now time.Time) []model.ValidationError {
	var errs []model.ValidationError

	switch item.Tag {
	case model.TagItem5:
		for i, f := range item.Item5.Fees {
			if f.AmountCents < 0 {
				errs = append(errs, errorf(fmt.Sprintf("item5.fees[%d].amount_cents", i),
					model.SeverityError, model.CategorySchema, fmt.Sprintf("%d", f.AmountCents), ">=0",
					"negative fee amount"))
			}
			if f.Name == "" {
				errs = append(errs, errorf(fmt.Sprintf("item5.fees[%d].name", i),
					model.SeverityError, model.CategorySchema, "", "non-empty", "missing fee name"))
			}
		}
	case model.TagItem6:
		for i, f := range item.Item6.Fees {
			if f.AmountCents == nil && f.AmountPercentage == nil {
				errs = append(errs, errorf(fmt.Sprintf("item6.fees[%d]", i),
					model.SeverityError, model.CategorySchema, "nil,nil", "one of amount_cents/amount_percentage set",
					"neither a fixed amount nor a percentage is set"))
			}
			if f.AmountCents != nil && f.AmountPercentage != nil {
				errs = append(errs, errorf(fmt.Sprintf("item6.fees[%d]", i),
					model.SeverityWarning, model.CategorySchema, "both set", "exactly one set",
					"both a fixed amount and a percentage are set"))
			}
			if f.MinCents != nil && f.MaxCents != nil && *f.MinCents > *f.MaxCents {
				errs = append(errs, errorf(fmt.Sprintf("item6.fees[%d]", i),
					model.SeverityError, model.CategorySchema, fmt.Sprintf("%d>%d", *f.MinCents, *f.MaxCents),
					"min<=max", "min_cents exceeds max_cents"))
			}
		}
	case model.TagItem7:
		for i, c := range item.Item7.Categories {
			if c.LowCents > c.HighCents {
				errs = append(errs, errorf(fmt.Sprintf("item7.categories[%d]", i),
					model.SeverityError, model.CategorySchema, fmt.Sprintf("%d>%d", c.LowCents, c.HighCents),
					"low<=high", "low_cents exceeds high_cents"))
			}
		}
	case model.TagItem19:
		if item.Item19.SampleSize < 0 {
			errs = append(errs, errorf("item19.sample_size", model.SeverityError, model.CategorySchema,
				fmt.Sprintf("%d", item.Item19.SampleSize), ">=0", "negative sample size"))
		}
	case model.TagItem20:
		for i, row := range item.Item20.Rows {
			errs = append(errs, ValidateFiscalYear(fmt.Sprintf("item20.rows[%d].fiscal_year", i), row.FiscalYear, now)...)
			if row.Start < 0 || row.Opened < 0 || row.Closed < 0 || row.TransferredIn < 0 || row.TransferredOut < 0 || row.End < 0 {
				errs = append(errs, errorf(fmt.Sprintf("item20.rows[%d]", i),
					model.SeverityError, model.CategorySchema, "negative", ">=0", "negative outlet count"))
			}
		}
	case model.TagItem21:
		for i, y := range item.Item21.Years {
			errs = append(errs, ValidateFiscalYear(fmt.Sprintf("item21.years[%d].fiscal_year", i), y.FiscalYear, now)...)
		}
	}

	return errs
}

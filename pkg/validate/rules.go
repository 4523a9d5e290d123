// Package validate enforces spec.md §4.4's schema and business-rule tiers
// on extraction results. Grounded on the teacher's pkg/core/validate
// (CheckBalanceEquation, CheckForOutlier tolerance-based checks)
// generalized from DCF/income-statement reconciliation to FDD Item
// 19/20/21 invariants.
package validate

import (
	"fmt"
	"strings"
	"time"

	"fddpipeline/pkg/model"
)

const balanceToleranceCents = 100 // $1.00 (spec.md §4.4: "|assets - (liabilities+equity)| <= $1")

func errorf(path string, severity model.Severity, category model.Category, actual, expected, msg string) model.ValidationError {
	return model.ValidationError{
		FieldPath: path,
		Severity:  severity,
		Category:  category,
		Actual:    actual,
		Expected:  expected,
		Message:   msg,
	}
}

// ValidateItem20OutletMath checks spec.md §4.4's "end == start + opened -
// closed + transferred_in - transferred_out" for every row.
func ValidateItem20OutletMath(outlets *model.Item20Outlets) []model.ValidationError {
	var errs []model.ValidationError
	for i, row := range outlets.Rows {
		expected := row.ExpectedEnd()
		if expected != row.End {
			errs = append(errs, errorf(
				fmt.Sprintf("item20.rows[%d].end", i),
				model.SeverityError, model.CategoryBusinessRule,
				fmt.Sprintf("%d", row.End), fmt.Sprintf("%d", expected),
				fmt.Sprintf("outlet math mismatch for fiscal_year=%d outlet_type=%s", row.FiscalYear, row.OutletType),
			))
		}
	}
	return errs
}

// ValidateItem21Balance checks spec.md §4.4's balance-sheet equation per
// fiscal year.
func ValidateItem21Balance(financials *model.Item21Financials) []model.ValidationError {
	var errs []model.ValidationError
	for i, y := range financials.Years {
		diff := y.BalanceDiffCents()
		if diff > balanceToleranceCents {
			errs = append(errs, errorf(
				fmt.Sprintf("item21.years[%d]", i),
				model.SeverityError, model.CategoryBusinessRule,
				fmt.Sprintf("%d", diff), fmt.Sprintf("<=%d", balanceToleranceCents),
				fmt.Sprintf("balance-sheet equation violated for fiscal_year=%d", y.FiscalYear),
			))
		}
	}
	return errs
}

// ValidateItem19Ordering checks spec.md §4.4's "low <= average <= high" and
// "low <= median <= high".
func ValidateItem19Ordering(fpr *model.Item19FPR) []model.ValidationError {
	var errs []model.ValidationError
	if fpr.LowCents == nil || fpr.HighCents == nil {
		return errs
	}
	low, high := *fpr.LowCents, *fpr.HighCents
	if fpr.AverageCents != nil && (*fpr.AverageCents < low || *fpr.AverageCents > high) {
		errs = append(errs, errorf("item19.average_cents", model.SeverityError, model.CategoryBusinessRule,
			fmt.Sprintf("%d", *fpr.AverageCents), fmt.Sprintf("[%d,%d]", low, high),
			"average is outside the low/high range"))
	}
	if fpr.MedianCents != nil && (*fpr.MedianCents < low || *fpr.MedianCents > high) {
		errs = append(errs, errorf("item19.median_cents", model.SeverityError, model.CategoryBusinessRule,
			fmt.Sprintf("%d", *fpr.MedianCents), fmt.Sprintf("[%d,%d]", low, high),
			"median is outside the low/high range"))
	}
	return errs
}

// ValidateItem5Item7Consistency checks spec.md §4.4's cross-field rule: an
// Item 7 "franchise fee" line's low/high must bracket the Item 5 primary
// fee (the first/largest listed initial fee).
func ValidateItem5Item7Consistency(item5 *model.Item5Fees, item7 *model.Item7Investment) []model.ValidationError {
	if item5 == nil || item7 == nil || len(item5.Fees) == 0 {
		return nil
	}
	primary := item5.Fees[0]
	for _, f := range item5.Fees[1:] {
		if f.AmountCents > primary.AmountCents {
			primary = f
		}
	}

	var errs []model.ValidationError
	for i, cat := range item7.Categories {
		if !isFranchiseFeeLine(cat.Category) {
			continue
		}
		if primary.AmountCents < cat.LowCents || primary.AmountCents > cat.HighCents {
			errs = append(errs, errorf(
				fmt.Sprintf("item7.categories[%d]", i),
				model.SeverityError, model.CategoryCrossField,
				fmt.Sprintf("%d", primary.AmountCents), fmt.Sprintf("[%d,%d]", cat.LowCents, cat.HighCents),
				"item 5 primary fee is not bracketed by item 7's franchise fee range",
			))
		}
	}
	return errs
}

func isFranchiseFeeLine(category string) bool {
	return strings.Contains(strings.ToLower(category), "franchise fee")
}

// ValidateTemporal checks spec.md §4.4's "amendment_date >= issue_date;
// fiscal_year in [1900, current_year+1]".
func ValidateTemporal(fdd *model.FDD, now time.Time) []model.ValidationError {
	var errs []model.ValidationError
	if fdd.AmendmentDate != nil && fdd.AmendmentDate.Before(fdd.IssueDate) {
		errs = append(errs, errorf("fdd.amendment_date", model.SeverityError, model.CategoryBusinessRule,
			fdd.AmendmentDate.Format("2006-01-02"), ">="+fdd.IssueDate.Format("2006-01-02"),
			"amendment_date precedes issue_date"))
	}
	return errs
}

// ValidateFiscalYear checks a fiscal year against spec.md §4.4's
// [1900, current_year+1] bound.
func ValidateFiscalYear(path string, year int, now time.Time) []model.ValidationError {
	max := now.Year() + 1
	if year < 1900 || year > max {
		return []model.ValidationError{errorf(path, model.SeverityError, model.CategoryRange,
			fmt.Sprintf("%d", year), fmt.Sprintf("[1900,%d]", max),
			"fiscal_year out of range")}
	}
	return nil
}

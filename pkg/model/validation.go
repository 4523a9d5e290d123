package model

// ValidationError is a single structured finding produced by the validator
// (spec.md §4.4, §6/§7).
type ValidationError struct {
	FieldPath string
	Severity  Severity
	Category  Category
	Actual    interface{}
	Expected  interface{}
	Message   string
}

// HasBlockingError reports whether any finding is Error severity.
func HasBlockingError(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarning reports whether any finding is Warning severity.
func HasWarning(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// QualityScore computes the weighted completeness fraction described in
// spec.md §3/§4.4: high-value sections (5,6,7,19,20,21) weight 2.0, all
// others weight 1.0.
func QualityScore(sections []Section) float64 {
	if len(sections) == 0 {
		return 0
	}
	var total, achieved float64
	for _, s := range sections {
		weight := 1.0
		if HighValueItems[s.ItemNo] {
			weight = 2.0
		}
		total += weight
		if s.ExtractionStatus == SectionSuccess {
			achieved += weight
		}
	}
	if total == 0 {
		return 0
	}
	return achieved / total
}

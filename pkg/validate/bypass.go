package validate

import (
	"context"

	"fddpipeline/pkg/model"
)

// BypassStore looks up active operator bypasses (spec.md §4.4: "an operator
// may record a bypass for (entity_id, entity_type) with a reason; while
// active, Error-severity failures are demoted to Warning for that entity
// only").
type BypassStore interface {
	IsActive(ctx context.Context, entityID, entityType string) (bool, string, error)
}

// ApplyBypass demotes Error-severity findings to Warning when an active
// bypass covers (entityID, entityType), per spec.md §4.4. Other severities
// are unchanged.
func ApplyBypass(errs []model.ValidationError, bypassActive bool, reason string) []model.ValidationError {
	if !bypassActive {
		return errs
	}
	out := make([]model.ValidationError, len(errs))
	for i, e := range errs {
		if e.Severity == model.SeverityError {
			e.Severity = model.SeverityWarning
			e.Message = e.Message + " (demoted by operator bypass: " + reason + ")"
		}
		out[i] = e
	}
	return out
}

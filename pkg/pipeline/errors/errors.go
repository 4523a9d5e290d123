// Package errors defines the pipeline's error taxonomy (spec.md §7):
// Transient, Permanent input, Budget, and Fatal system errors. Stage
// boundaries in pkg/scheduler classify any error returned by a stage
// handler into one of these kinds to decide retry vs terminal-failure vs
// halt-the-scheduler behavior.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy's discriminator.
type Kind string

const (
	KindTransient       Kind = "transient"
	KindPermanentInput  Kind = "permanent_input"
	KindBudget          Kind = "budget"
	KindFatalSystem     Kind = "fatal_system"
)

// PipelineError wraps an underlying error with its taxonomy Kind.
type PipelineError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable error (network timeout, provider 5xx,
// rate-limited, DB transient).
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: KindTransient, Op: op, Err: err}
}

// PermanentInput wraps err as a non-retryable input defect (corrupt PDF,
// layout-missing, insufficient anchors, schema-invalid after fallback).
func PermanentInput(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: KindPermanentInput, Op: op, Err: err}
}

// Budget wraps err as a per-document budget-exceeded condition.
func Budget(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: KindBudget, Op: op, Err: err}
}

// FatalSystem wraps err as a halt-the-scheduler condition (DB/object-store
// unreachable past retries).
func FatalSystem(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: KindFatalSystem, Op: op, Err: err}
}

// KindOf extracts the taxonomy Kind from err, defaulting to KindTransient
// for errors that were never classified (conservative: retry unknowns up to
// the stage's attempt budget rather than silently dropping them).
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}

// Retryable reports whether a Kind should be retried per stage policy.
func Retryable(k Kind) bool {
	return k == KindTransient
}

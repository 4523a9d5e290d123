package scheduler

import (
	"context"
	"math"
	"time"

	"fddpipeline/pkg/config"
	pipelineerrors "fddpipeline/pkg/pipeline/errors"
)

// RetryPolicy governs a stage's attempt budget and backoff curve (spec.md
// §4.6, §7: transient errors retry, permanent/fatal ones don't). Grounded
// on the call-site shape of other_examples/.../pdf-extractor's
// retryWithBackoff (retry a closure against a context, exponential delay
// capped at a max) — the helper's body wasn't in the retrieval pack, only
// its call sites, so the backoff math here is a direct generalization of
// that calling convention rather than a line-for-line port.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
}

// DefaultRetryPolicy matches spec.md §5's defaults for external-call
// stages: 3 attempts, exponential backoff from 500ms up to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second, Factor: 2}
}

// RetryPolicyFromConfig converts config.RetryPolicy's millisecond fields
// (YAML-friendly ints) into the time.Duration form Do operates on.
func RetryPolicyFromConfig(c config.RetryPolicy) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   time.Duration(c.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(c.MaxDelayMS) * time.Millisecond,
		Factor:      c.Factor,
	}
}

// Do runs fn, retrying while the returned error classifies as Transient
// (pkg/pipeline/errors) and the attempt budget remains, sleeping an
// exponentially increasing delay between attempts. A Permanent/Budget/Fatal
// error returns immediately without consuming remaining attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !pipelineerrors.Retryable(pipelineerrors.KindOf(err)) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		delay := p.delayFor(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (p RetryPolicy) delayFor(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

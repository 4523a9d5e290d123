package scheduler

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiters holds one token-bucket limiter per LLM/embedding provider
// name, so one vendor's quota can't starve another's (spec.md §5's
// per-provider rate limiting). The teacher already carries
// golang.org/x/time as an indirect dependency (pulled in transitively by
// google.golang.org/genai); this is what promotes it to a direct,
// exercised one.
type RateLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewRateLimiters constructs a RateLimiters keyed lazily per provider name,
// each allowing rps requests/sec with the given burst.
func NewRateLimiters(rps float64, burst int) *RateLimiters {
	return &RateLimiters{limiters: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

// Wait blocks until provider's bucket has a token or ctx is done.
func (r *RateLimiters) Wait(ctx context.Context, provider string) error {
	return r.limiterFor(provider).Wait(ctx)
}

func (r *RateLimiters) limiterFor(provider string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[provider]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.rps), r.burst)
		r.limiters[provider] = l
	}
	return l
}

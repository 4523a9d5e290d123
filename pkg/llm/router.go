package llm

import (
	"context"
	"fmt"

	"fddpipeline/pkg/jsonutil"
	pipelineerrors "fddpipeline/pkg/pipeline/errors"
)

// maxAttemptsPerSection caps total provider calls per section, regardless
// of chain length (spec.md §4.3: "Total attempts per section ≤ 3").
const maxAttemptsPerSection = 3

// Router generalizes the teacher's agent.Manager provider-by-name lookup
// into spec.md §4.3's per-item routing table plus Primary→Secondary→
// Last-resort fallback chain with schema-invalid escalation.
type Router struct {
	providers map[string]Provider
}

// NewRouter registers a set of providers by their Name().
func NewRouter(providers ...Provider) *Router {
	r := &Router{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Result is one successful structured-output call.
type Result struct {
	Raw      string
	Provider string
	Attempts int
}

// Extract walks chain in order, calling each provider and validating its
// response against schema via jsonutil.RepairAndUnmarshal. The first
// provider whose response parses cleanly wins. A provider returning a
// transport/rate-limit error is skipped to the next chain member; a
// schema-invalid response also escalates to the next (higher-capacity, by
// routing-table convention) provider. Exceeding maxAttemptsPerSection or
// exhausting the chain yields a SchemaInvalid-classified error.
func (r *Router) Extract(ctx context.Context, chain []string, prompt, systemPrompt string, schema interface{}) (*Result, error) {
	var lastErr error
	attempts := 0

	for _, name := range chain {
		if attempts >= maxAttemptsPerSection {
			break
		}
		provider, ok := r.providers[name]
		if !ok {
			continue
		}

		attempts++
		raw, err := provider.GenerateResponse(ctx, prompt, systemPrompt, nil)
		if err != nil {
			lastErr = fmt.Errorf("provider %s: %w", name, err)
			continue
		}

		repaired, verr := jsonutil.RepairAndUnmarshal(raw, schema)
		if verr == nil {
			return &Result{Raw: repaired, Provider: name, Attempts: attempts}, nil
		}
		lastErr = fmt.Errorf("provider %s: %w", name, verr)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider in chain %v was registered", chain)
	}
	return nil, pipelineerrors.PermanentInput("llm.Extract", fmt.Errorf("schema invalid after %d attempts: %w", attempts, lastErr))
}

package extraction

import (
	"fmt"
	"sync"

	pipelineerrors "fddpipeline/pkg/pipeline/errors"
)

// estimateTokens is the crude chars/4 heuristic used wherever a provider
// doesn't report usage back (none of the teacher's adapters do); it is a
// proxy for budget enforcement, not a billing-accurate count.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// TokenBudget enforces spec.md §4.3's per-document token budget
// (config.LLM.PerDocumentTokens, default 200000). One instance is shared
// across all of a single FDD's section extractions; it is not a
// package-level singleton (spec.md §9 applies the same no-singleton rule
// used for pkg/scheduler's Resources to anything shared across concurrent
// section workers).
type TokenBudget struct {
	mu     sync.Mutex
	limit  int
	spent  int
}

func NewTokenBudget(limit int) *TokenBudget {
	return &TokenBudget{limit: limit}
}

// Reserve accounts for prompt+response token usage, failing with a Budget
// error (fatal for the document, per spec.md §4.3/§7) once the document's
// limit is exceeded.
func (b *TokenBudget) Reserve(promptText, responseText string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cost := estimateTokens(promptText) + estimateTokens(responseText)
	if b.spent+cost > b.limit {
		return pipelineerrors.Budget("extraction.TokenBudget", fmt.Errorf("per-document token budget exceeded: spent=%d cost=%d limit=%d", b.spent, cost, b.limit))
	}
	b.spent += cost
	return nil
}

func (b *TokenBudget) Spent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent
}

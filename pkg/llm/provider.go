// Package llm adapts the teacher's per-vendor chat-completion providers and
// generalizes its agent.Manager provider-selection logic into a per-item
// routing table with a fallback chain (spec.md §4.3).
package llm

import "context"

// Provider is the narrow interface every vendor adapter implements, kept
// from the teacher's pkg/core/llm.Provider.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

// Package embedding maps text to a fixed-dim vector (spec.md §4, "Embedding
// provider... Map text → fixed-dim vector (384)").
package embedding

import "context"

// Dimensions is the fixed embedding width required by the entity resolver
// (spec.md §3: "name embedding (384-dim unit vector)").
const Dimensions = 384

// Provider is the narrow interface pkg/entity depends on.
type Provider interface {
	Embed(ctx context.Context, text string) ([384]float32, error)
}

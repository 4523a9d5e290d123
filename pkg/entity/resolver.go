package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"fddpipeline/pkg/model"
)

// Embedder maps a name to a fixed-dim vector (spec.md §4.3 of the
// component table: "Embedding provider... 5%"). pkg/embedding provides the
// production adapters; this narrow interface is all the resolver needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([384]float32, error)
}

const topK = 5

// Resolver implements spec.md §4.1: entity resolution plus document
// lineage.
type Resolver struct {
	Franchisors FranchisorStore
	FDDs        FDDLineageStore
	Reviews     ReviewStore
	Embedder    Embedder

	HighThreshold   float64
	ReviewThreshold float64
}

// NewResolver constructs a Resolver with spec.md §6 default thresholds
// (0.94 / 0.85); callers may override via the exported fields.
func NewResolver(franchisors FranchisorStore, fdds FDDLineageStore, reviews ReviewStore, embedder Embedder) *Resolver {
	return &Resolver{
		Franchisors:     franchisors,
		FDDs:            fdds,
		Reviews:         reviews,
		Embedder:        embedder,
		HighThreshold:   0.94,
		ReviewThreshold: 0.85,
	}
}

// ResolveResult is the resolver's output (spec.md §4.1).
type ResolveResult struct {
	FranchisorID string
	MatchKind    model.MatchKind
}

// Resolve maps an extracted franchisor name to an existing Franchisor or
// creates a new one, implementing spec.md §4.1 steps 1-6 exactly.
func (r *Resolver) Resolve(ctx context.Context, fddID string, candidateName string) (*ResolveResult, error) {
	normalized := Normalize(candidateName)

	if existing, err := r.Franchisors.FindByCanonicalName(ctx, normalized); err != nil {
		return nil, fmt.Errorf("entity: exact lookup: %w", err)
	} else if existing != nil {
		return &ResolveResult{FranchisorID: existing.ID, MatchKind: model.MatchExact}, nil
	}

	emb, err := r.Embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("entity: embed candidate: %w", err)
	}
	emb = NormalizeVector(emb)

	candidates, err := r.Franchisors.TopKBySimilarity(ctx, emb, topK)
	if err != nil {
		return nil, fmt.Errorf("entity: similarity search: %w", err)
	}
	sortCandidates(candidates)

	if len(candidates) > 0 && candidates[0].Similarity >= r.HighThreshold {
		return &ResolveResult{FranchisorID: candidates[0].Franchisor.ID, MatchKind: model.MatchHighConfident}, nil
	}

	if len(candidates) > 0 && candidates[0].Similarity >= r.ReviewThreshold {
		created, err := r.createTentative(ctx, normalized, emb)
		if err != nil {
			return nil, err
		}
		if r.Reviews != nil {
			review := &model.ReviewRecord{
				ID:                uuid.NewString(),
				FDDID:             fddID,
				CandidateName:     normalized,
				CreatedFranchisor: created.ID,
				MatchedCandidates: toMatches(candidates),
				CreatedAt:         now(),
			}
			if err := r.Reviews.CreateReview(ctx, review); err != nil {
				return nil, fmt.Errorf("entity: create review: %w", err)
			}
		}
		return &ResolveResult{FranchisorID: created.ID, MatchKind: model.MatchNeedsReview}, nil
	}

	created, err := r.createTentative(ctx, normalized, emb)
	if err != nil {
		return nil, err
	}
	return &ResolveResult{FranchisorID: created.ID, MatchKind: model.MatchCreated}, nil
}

func (r *Resolver) createTentative(ctx context.Context, normalized string, emb [384]float32) (*model.Franchisor, error) {
	f := &model.Franchisor{
		ID:            uuid.NewString(),
		CanonicalName: normalized,
		Embedding:     emb,
		CreatedAt:     now(),
		UpdatedAt:     now(),
	}
	if err := r.Franchisors.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("entity: create franchisor: %w", err)
	}
	return f, nil
}

// sortCandidates orders by similarity descending; ties are broken by older
// CreatedAt (spec.md §4.1: "Ties at equal similarity are broken by older
// created_at").
func sortCandidates(c []ScoredFranchisor) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Similarity != c[j].Similarity {
			return c[i].Similarity > c[j].Similarity
		}
		return c[i].Franchisor.CreatedAt.Before(c[j].Franchisor.CreatedAt)
	})
}

func toMatches(c []ScoredFranchisor) []model.FranchisorMatch {
	out := make([]model.FranchisorMatch, 0, len(c))
	for _, sc := range c {
		out = append(out, model.FranchisorMatch{
			FranchisorID: sc.Franchisor.ID,
			Name:         sc.Franchisor.CanonicalName,
			Similarity:   sc.Similarity,
		})
	}
	return out
}

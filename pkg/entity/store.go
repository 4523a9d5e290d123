package entity

import (
	"context"
	"time"

	"fddpipeline/pkg/model"
)

// FranchisorStore is the persistence seam the resolver needs (spec.md §4.1).
// pkg/storage provides the Postgres-backed implementation; tests use an
// in-memory fake grounded on the teacher's knowledge.MemoryStore
// (mutex-guarded maps, linear scan for candidate search).
type FranchisorStore interface {
	FindByCanonicalName(ctx context.Context, name string) (*model.Franchisor, error)
	TopKBySimilarity(ctx context.Context, embedding [384]float32, k int) ([]ScoredFranchisor, error)
	Create(ctx context.Context, f *model.Franchisor) error
	Update(ctx context.Context, f *model.Franchisor) error
	Get(ctx context.Context, id string) (*model.Franchisor, error)
}

// ScoredFranchisor pairs a candidate Franchisor with its cosine similarity
// to the query embedding.
type ScoredFranchisor struct {
	Franchisor *model.Franchisor
	Similarity float64
}

// FDDLineageStore is the persistence seam lineage resolution needs
// (spec.md §4.1 "Document lineage", §9).
type FDDLineageStore interface {
	FindByContentHash(ctx context.Context, hash string) (*model.FDD, error)
	FindLatestForFranchisor(ctx context.Context, franchisorID string) ([]*model.FDD, error)
	SetSupersededBy(ctx context.Context, oldID, newID string) error
	Get(ctx context.Context, id string) (*model.FDD, error)
}

// ReviewStore persists the NeedsReview linkage record (spec.md §4.1 step 5).
type ReviewStore interface {
	CreateReview(ctx context.Context, r *model.ReviewRecord) error
}

// now is overridable in tests; production always uses wall-clock time.
var now = time.Now

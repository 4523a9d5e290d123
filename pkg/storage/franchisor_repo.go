package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fddpipeline/pkg/entity"
	"fddpipeline/pkg/model"
	"fddpipeline/pkg/validate"
)

// FranchisorRepo backs entity.FranchisorStore. Franchisor embeddings are
// stored as a flat float4 array rather than pgvector, since the teacher's
// stack never wires pgvector (spec.md §9's "franchisor_embedding
// pgvector-less column") — TopKBySimilarity pulls every row and ranks in Go
// with entity.CosineSimilarity, which is fine at the franchisor-table scale
// this pipeline targets.
type FranchisorRepo struct {
	pool *pgxpool.Pool
}

var _ entity.FranchisorStore = (*FranchisorRepo)(nil)

func NewFranchisorRepo(pool *pgxpool.Pool) *FranchisorRepo {
	return &FranchisorRepo{pool: pool}
}

func (r *FranchisorRepo) FindByCanonicalName(ctx context.Context, name string) (*model.Franchisor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, canonical_name, parent_company, contact_email, contact_phone, alternate_names, embedding, created_at, updated_at
		FROM franchisors WHERE canonical_name = $1`, name)
	f, err := scanFranchisor(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: find franchisor by canonical name: %w", err)
	}
	return f, nil
}

func (r *FranchisorRepo) TopKBySimilarity(ctx context.Context, embedding [384]float32, k int) ([]entity.ScoredFranchisor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, canonical_name, parent_company, contact_email, contact_phone, alternate_names, embedding, created_at, updated_at
		FROM franchisors`)
	if err != nil {
		return nil, fmt.Errorf("storage: scan franchisors for similarity: %w", err)
	}
	defer rows.Close()

	var scored []entity.ScoredFranchisor
	for rows.Next() {
		f, err := scanFranchisor(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan franchisor row: %w", err)
		}
		scored = append(scored, entity.ScoredFranchisor{
			Franchisor: f,
			Similarity: entity.CosineSimilarity(embedding, f.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topKSelect(scored, k)
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// topKSelect orders scored by similarity descending in place; callers then
// truncate to k. Scale here is small (franchisor count, not FDD count), so
// a plain sort is clearer than a heap.
func topKSelect(scored []entity.ScoredFranchisor, k int) {
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].Similarity > scored[j-1].Similarity; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
}

func (r *FranchisorRepo) Create(ctx context.Context, f *model.Franchisor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO franchisors (id, canonical_name, parent_company, contact_email, contact_phone, alternate_names, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		f.ID, f.CanonicalName, f.ParentCompany, f.ContactEmail, f.ContactPhone, f.AlternateNames, f.Embedding[:], time.Now())
	if err != nil {
		return fmt.Errorf("storage: insert franchisor: %w", err)
	}
	return nil
}

func (r *FranchisorRepo) Update(ctx context.Context, f *model.Franchisor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE franchisors SET canonical_name = $2, parent_company = $3, contact_email = $4, contact_phone = $5,
		       alternate_names = $6, embedding = $7, updated_at = $8
		WHERE id = $1`,
		f.ID, f.CanonicalName, f.ParentCompany, f.ContactEmail, f.ContactPhone, f.AlternateNames, f.Embedding[:], time.Now())
	if err != nil {
		return fmt.Errorf("storage: update franchisor: %w", err)
	}
	return nil
}

func (r *FranchisorRepo) Get(ctx context.Context, id string) (*model.Franchisor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, canonical_name, parent_company, contact_email, contact_phone, alternate_names, embedding, created_at, updated_at
		FROM franchisors WHERE id = $1`, id)
	f, err := scanFranchisor(row)
	if err != nil {
		return nil, fmt.Errorf("storage: get franchisor %s: %w", id, err)
	}
	return f, nil
}

func scanFranchisor(row rowScanner) (*model.Franchisor, error) {
	var f model.Franchisor
	var embedding []float32
	if err := row.Scan(&f.ID, &f.CanonicalName, &f.ParentCompany, &f.ContactEmail, &f.ContactPhone,
		&f.AlternateNames, &embedding, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	copy(f.Embedding[:], embedding)
	return &f, nil
}

// ReviewRepo backs entity.ReviewStore.
type ReviewRepo struct {
	pool *pgxpool.Pool
}

var _ entity.ReviewStore = (*ReviewRepo)(nil)

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) CreateReview(ctx context.Context, rec *model.ReviewRecord) error {
	candidates, err := json.Marshal(rec.MatchedCandidates)
	if err != nil {
		return fmt.Errorf("storage: marshal matched candidates: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO review_records (id, fdd_id, candidate_name, created_franchisor, matched_candidates, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.FDDID, rec.CandidateName, rec.CreatedFranchisor, candidates, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: insert review record: %w", err)
	}
	return nil
}

// BypassRepo backs validate.BypassStore.
type BypassRepo struct {
	pool *pgxpool.Pool
}

var _ validate.BypassStore = (*BypassRepo)(nil)

func NewBypassRepo(pool *pgxpool.Pool) *BypassRepo {
	return &BypassRepo{pool: pool}
}

func (r *BypassRepo) IsActive(ctx context.Context, entityID, entityType string) (bool, string, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT reason FROM bypasses WHERE entity_id = $1 AND entity_type = $2 AND active = true
		ORDER BY created_at DESC LIMIT 1`, entityID, entityType)
	var reason string
	err := row.Scan(&reason)
	if err == pgx.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("storage: lookup bypass for %s/%s: %w", entityType, entityID, err)
	}
	return true, reason, nil
}

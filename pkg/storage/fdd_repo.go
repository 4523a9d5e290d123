package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fddpipeline/pkg/entity"
	"fddpipeline/pkg/model"
)

// FDDRepo persists FDD and Section status/lineage, matching the teacher's
// db.go pgxpool wiring.
type FDDRepo struct {
	pool *pgxpool.Pool
}

var _ entity.FDDLineageStore = (*FDDRepo)(nil)

func NewFDDRepo(pool *pgxpool.Pool) *FDDRepo {
	return &FDDRepo{pool: pool}
}

// CreateFDD inserts a new FDD row in Pending status.
func (r *FDDRepo) CreateFDD(ctx context.Context, fdd *model.FDD) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO fdds (id, franchisor_id, issue_date, amendment_date, document_type, filing_state, storage_path, content_hash, total_pages, processing_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		fdd.ID, fdd.FranchisorID, fdd.IssueDate, fdd.AmendmentDate, fdd.DocumentType, fdd.FilingState,
		fdd.StoragePath, fdd.ContentHash, fdd.TotalPages, fdd.ProcessingStatus, time.Now())
	if err != nil {
		return fmt.Errorf("storage: insert fdd: %w", err)
	}
	return nil
}

// FindByContentHash supports dedupe (spec.md §4.1): nil, nil on no match.
func (r *FDDRepo) FindByContentHash(ctx context.Context, hash string) (*model.FDD, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, franchisor_id, issue_date, amendment_date, document_type, filing_state, storage_path,
		       content_hash, total_pages, processing_status, superseded_by, duplicate_of, failure_reason, created_at, updated_at
		FROM fdds WHERE content_hash = $1`, hash)
	fdd, err := scanFDD(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: find fdd by content hash: %w", err)
	}
	return fdd, nil
}

// Get loads a single FDD by id.
func (r *FDDRepo) Get(ctx context.Context, id string) (*model.FDD, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, franchisor_id, issue_date, amendment_date, document_type, filing_state, storage_path,
		       content_hash, total_pages, processing_status, superseded_by, duplicate_of, failure_reason, created_at, updated_at
		FROM fdds WHERE id = $1`, id)
	fdd, err := scanFDD(row)
	if err != nil {
		return nil, fmt.Errorf("storage: get fdd %s: %w", id, err)
	}
	return fdd, nil
}

// FindLatestForFranchisor lists FDDs for a franchisor ordered newest-first,
// for lineage resolution (spec.md §4.1 "Document lineage").
func (r *FDDRepo) FindLatestForFranchisor(ctx context.Context, franchisorID string) ([]*model.FDD, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, franchisor_id, issue_date, amendment_date, document_type, filing_state, storage_path,
		       content_hash, total_pages, processing_status, superseded_by, duplicate_of, failure_reason, created_at, updated_at
		FROM fdds WHERE franchisor_id = $1 ORDER BY issue_date DESC`, franchisorID)
	if err != nil {
		return nil, fmt.Errorf("storage: list fdds for franchisor %s: %w", franchisorID, err)
	}
	defer rows.Close()

	var out []*model.FDD
	for rows.Next() {
		fdd, err := scanFDD(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan fdd row: %w", err)
		}
		out = append(out, fdd)
	}
	return out, rows.Err()
}

// SetSupersededBy marks oldID as superseded by newID (spec.md §4.1 lineage).
func (r *FDDRepo) SetSupersededBy(ctx context.Context, oldID, newID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE fdds SET superseded_by = $2, updated_at = $3 WHERE id = $1`, oldID, newID, time.Now())
	if err != nil {
		return fmt.Errorf("storage: set superseded_by: %w", err)
	}
	return nil
}

// UpdateQualityScore records the weighted completeness fraction computed by
// model.QualityScore once every section of an FDD reaches a terminal state
// (spec.md §4.6 step 5).
func (r *FDDRepo) UpdateQualityScore(ctx context.Context, fddID string, score float64) error {
	_, err := r.pool.Exec(ctx, `UPDATE fdds SET quality_score = $2, updated_at = $3 WHERE id = $1`, fddID, score, time.Now())
	if err != nil {
		return fmt.Errorf("storage: update quality score: %w", err)
	}
	return nil
}

// UpdateStatus transitions an FDD's processing_status, recording a failure
// reason for terminal Failed transitions (spec.md §4.6 stage outcomes).
func (r *FDDRepo) UpdateStatus(ctx context.Context, id string, status model.FDDStatus, failureReason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE fdds SET processing_status = $2, failure_reason = $3, updated_at = $4 WHERE id = $1`,
		id, status, failureReason, time.Now())
	if err != nil {
		return fmt.Errorf("storage: update fdd status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFDD(row rowScanner) (*model.FDD, error) {
	var fdd model.FDD
	err := row.Scan(&fdd.ID, &fdd.FranchisorID, &fdd.IssueDate, &fdd.AmendmentDate, &fdd.DocumentType,
		&fdd.FilingState, &fdd.StoragePath, &fdd.ContentHash, &fdd.TotalPages, &fdd.ProcessingStatus,
		&fdd.SupersededBy, &fdd.DuplicateOf, &fdd.FailureReason, &fdd.CreatedAt, &fdd.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &fdd, nil
}

// SectionRepo persists Section detection/extraction state.
type SectionRepo struct {
	pool *pgxpool.Pool
}

func NewSectionRepo(pool *pgxpool.Pool) *SectionRepo {
	return &SectionRepo{pool: pool}
}

// CreateSections bulk-inserts the sections produced by the detector for one
// FDD (spec.md §4.2 output).
func (r *SectionRepo) CreateSections(ctx context.Context, sections []model.Section) error {
	for _, s := range sections {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO sections (id, fdd_id, item_no, start_page, end_page, extraction_status, needs_review, detection_confidence, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			s.ID, s.FDDID, s.ItemNo, s.StartPage, s.EndPage, s.ExtractionStatus, s.NeedsReview, s.DetectionConfidence, time.Now())
		if err != nil {
			return fmt.Errorf("storage: insert section %s item %d: %w", s.FDDID, s.ItemNo, err)
		}
	}
	return nil
}

// UpdateExtractionStatus records a section's extraction outcome. Storage
// writes for a single FDD are serialized by item_no via the scheduler's
// keyed lock (spec.md §4.6/§5 ordering guarantee), so this single-row
// update never races against another write for the same section.
func (r *SectionRepo) UpdateExtractionStatus(ctx context.Context, sectionID string, status model.SectionStatus, modelName string, attempts int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sections SET extraction_status = $2, extraction_model = $3, attempt_count = $4, extracted_at = $5, updated_at = $5
		WHERE id = $1`, sectionID, status, modelName, attempts, time.Now())
	if err != nil {
		return fmt.Errorf("storage: update section extraction status: %w", err)
	}
	return nil
}

// ListByFDD returns every section for quality-score recomputation (spec.md
// §4.4's weighted completeness fraction).
func (r *SectionRepo) ListByFDD(ctx context.Context, fddID string) ([]model.Section, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, fdd_id, item_no, start_page, end_page, extraction_status, extraction_model, attempt_count, needs_review, storage_path, detection_confidence, created_at, updated_at
		FROM sections WHERE fdd_id = $1 ORDER BY item_no`, fddID)
	if err != nil {
		return nil, fmt.Errorf("storage: list sections for fdd %s: %w", fddID, err)
	}
	defer rows.Close()

	var out []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.FDDID, &s.ItemNo, &s.StartPage, &s.EndPage, &s.ExtractionStatus,
			&s.ExtractionModel, &s.AttemptCount, &s.NeedsReview, &s.StoragePath, &s.DetectionConfidence,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan section row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package scheduler

import (
	"context"

	"fddpipeline/pkg/model"
)

// FDDStore is the subset of pkg/storage.FDDRepo the scheduler drives
// directly. Declared here (not alongside the concrete type) so tests can
// substitute an in-memory fake without a database, the same seam
// pkg/entity's Store interfaces give the resolver.
type FDDStore interface {
	CreateFDD(ctx context.Context, fdd *model.FDD) error
	FindByContentHash(ctx context.Context, hash string) (*model.FDD, error)
	UpdateQualityScore(ctx context.Context, fddID string, score float64) error
	UpdateStatus(ctx context.Context, id string, status model.FDDStatus, failureReason string) error
}

// SectionStore is the subset of pkg/storage.SectionRepo the scheduler
// drives directly.
type SectionStore interface {
	CreateSections(ctx context.Context, sections []model.Section) error
	UpdateExtractionStatus(ctx context.Context, sectionID string, status model.SectionStatus, modelName string, attempts int) error
	ListByFDD(ctx context.Context, fddID string) ([]model.Section, error)
}

// ItemStore is the subset of pkg/storage.ItemRepo the scheduler drives
// directly.
type ItemStore interface {
	SaveItem(ctx context.Context, item *model.ExtractedItem) error
}

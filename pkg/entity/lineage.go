package entity

import (
	"context"
	"fmt"

	"fddpipeline/pkg/model"
)

// maxLineageDepth bounds the iterative superseded_by/duplicate_of walk
// (spec.md §9: "resolve lineage by iterative lookup with a depth bound
// (≤ 64) to defend against accidental cycles").
const maxLineageDepth = 64

// LineageResult records what, if anything, the lineage check decided about
// the newly-registered FDD (spec.md §4.1 "Document lineage").
type LineageResult struct {
	DuplicateOf  string // set if this FDD duplicates an existing one
	SupersededOld string // set if this FDD supersedes an existing one (the old FDD's id)
}

// ResolveLineage implements spec.md §4.1's document-lineage rules:
//   - same content hash for the same franchisor => duplicate_of
//   - Amendment, or a strictly later issue_date than an existing
//     Initial/Renewal => supersede the older FDD
func (r *Resolver) ResolveLineage(ctx context.Context, franchisorID string, newFDD *model.FDD) (*LineageResult, error) {
	if dup, err := r.FDDs.FindByContentHash(ctx, newFDD.ContentHash); err != nil {
		return nil, fmt.Errorf("entity: lineage hash lookup: %w", err)
	} else if dup != nil && dup.FranchisorID == franchisorID && dup.ID != newFDD.ID {
		return &LineageResult{DuplicateOf: dup.ID}, nil
	}

	siblings, err := r.FDDs.FindLatestForFranchisor(ctx, franchisorID)
	if err != nil {
		return nil, fmt.Errorf("entity: lineage sibling lookup: %w", err)
	}

	result := &LineageResult{}
	for _, sib := range siblings {
		if sib.ID == newFDD.ID || sib.SupersededBy != nil || sib.DuplicateOf != nil {
			continue
		}
		supersedes := false
		if newFDD.DocumentType == model.DocAmendment {
			supersedes = true
		} else if (sib.DocumentType == model.DocInitial || sib.DocumentType == model.DocRenewal) &&
			newFDD.IssueDate.After(sib.IssueDate) {
			supersedes = true
		}
		if supersedes {
			if err := r.FDDs.SetSupersededBy(ctx, sib.ID, newFDD.ID); err != nil {
				return nil, fmt.Errorf("entity: set superseded_by: %w", err)
			}
			result.SupersededOld = sib.ID
		}
	}
	return result, nil
}

// Latest walks the superseded_by chain from start to the current FDD for
// its franchisor lineage, bounded to maxLineageDepth hops to defend against
// an accidental cycle (spec.md §9).
func Latest(ctx context.Context, store FDDLineageStore, startID string) (*model.FDD, error) {
	id := startID
	var cur *model.FDD
	for i := 0; i < maxLineageDepth; i++ {
		f, err := store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("entity: lineage walk: %w", err)
		}
		if f == nil {
			return cur, nil
		}
		cur = f
		if f.SupersededBy == nil {
			return f, nil
		}
		id = *f.SupersededBy
	}
	return nil, fmt.Errorf("entity: lineage walk exceeded depth bound %d (possible cycle involving %s)", maxLineageDepth, startID)
}

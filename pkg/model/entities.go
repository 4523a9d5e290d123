package model

import "time"

// Franchisor is a canonical business entity (spec.md §3).
type Franchisor struct {
	ID             string
	CanonicalName  string
	ParentCompany  string
	ContactEmail   string
	ContactPhone   string
	AlternateNames []string
	Embedding      [384]float32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FDD is a specific disclosure filing (spec.md §3).
type FDD struct {
	ID               string
	FranchisorID     string
	IssueDate        time.Time
	AmendmentDate    *time.Time
	DocumentType     DocumentType
	FilingState      string
	StoragePath      string
	ContentHash      string // lowercase hex, 64 chars
	TotalPages       int
	ProcessingStatus FDDStatus
	SupersededBy     *string
	DuplicateOf      *string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Section is a contiguous page range corresponding to one of 25 logical items.
type Section struct {
	ID                string
	FDDID             string
	ItemNo            int
	StartPage         int
	EndPage            int
	ExtractionStatus  SectionStatus
	ExtractionModel   string
	AttemptCount      int
	NeedsReview       bool
	StoragePath       string
	DetectionConfidence float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ExtractedAt       *time.Time
}

// ReviewRecord links a tentatively-created Franchisor back to the candidate
// matches an operator should reconcile (spec.md §4.1 step 5).
type ReviewRecord struct {
	ID                string
	FDDID             string
	CandidateName     string
	CreatedFranchisor string
	MatchedCandidates []FranchisorMatch
	CreatedAt         time.Time
}

// FranchisorMatch is one candidate considered during entity resolution.
type FranchisorMatch struct {
	FranchisorID string
	Name         string
	Similarity   float64
}

// Bypass is an operator-recorded exception demoting Errors to Warnings for a
// specific entity (spec.md §4.4).
type Bypass struct {
	ID         string
	EntityID   string
	EntityType string
	Reason     string
	Active     bool
	CreatedAt  time.Time
}

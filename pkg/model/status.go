// Package model defines the domain entities shared across every pipeline
// stage: Franchisor, FDD, Section, and the typed per-item extraction
// payloads described in spec.md §3.
package model

// FDDStatus is FDD.processing_status.
type FDDStatus string

const (
	FDDPending    FDDStatus = "Pending"
	FDDProcessing FDDStatus = "Processing"
	FDDCompleted  FDDStatus = "Completed"
	FDDFailed     FDDStatus = "Failed"
)

// DocumentType is FDD.document_type.
type DocumentType string

const (
	DocInitial   DocumentType = "Initial"
	DocAmendment DocumentType = "Amendment"
	DocRenewal   DocumentType = "Renewal"
)

// SectionStatus is Section.extraction_status.
type SectionStatus string

const (
	SectionPending    SectionStatus = "Pending"
	SectionProcessing SectionStatus = "Processing"
	SectionSuccess    SectionStatus = "Success"
	SectionFailed     SectionStatus = "Failed"
	SectionSkipped    SectionStatus = "Skipped"
)

// MatchKind is the outcome of entity resolution (spec.md §4.1).
type MatchKind string

const (
	MatchExact         MatchKind = "Exact"
	MatchHighConfident MatchKind = "HighConfidence"
	MatchCreated       MatchKind = "Created"
	MatchNeedsReview   MatchKind = "NeedsReview"
)

// Severity is the validator's severity scale (spec.md §4.4, §6).
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Category classifies a validation error (spec.md §6).
type Category string

const (
	CategorySchema       Category = "SCHEMA"
	CategoryBusinessRule Category = "BUSINESS_RULE"
	CategoryCrossField   Category = "CROSS_FIELD"
	CategoryRange        Category = "RANGE"
	CategoryFormat       Category = "FORMAT"
	CategoryReference    Category = "REFERENCE"
)

// OutletType is Item 20's outlet_type.
type OutletType string

const (
	OutletFranchised    OutletType = "Franchised"
	OutletCompanyOwned  OutletType = "CompanyOwned"
)

// HighValueItems are the items with normalized schemas and double weight in
// the quality score (spec.md §3, Glossary).
var HighValueItems = map[int]bool{5: true, 6: true, 7: true, 19: true, 20: true, 21: true}

// TotalItems is the number of logical FDD sections: 0 (Intro) .. 23 plus 24 (Appendix).
const TotalItems = 25

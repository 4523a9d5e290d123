package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"fddpipeline/pkg/contenthash"
	"fddpipeline/pkg/entity"
	"fddpipeline/pkg/extraction"
	"fddpipeline/pkg/external"
	"fddpipeline/pkg/model"
	"fddpipeline/pkg/pdfdoc"
	pipelineerrors "fddpipeline/pkg/pipeline/errors"
	"fddpipeline/pkg/section"
	"fddpipeline/pkg/validate"
)

// Resolver is the subset of entity.Resolver the scheduler drives directly,
// declared here so scheduler tests can substitute a fake without wiring a
// real FranchisorStore/Embedder pair.
type Resolver interface {
	Resolve(ctx context.Context, fddID string, candidateName string) (*entity.ResolveResult, error)
}

// Scheduler drives one FDD through all five stages (spec.md §4.6):
// Registration, Segmentation, Extraction, Validation, Storage. It holds no
// state of its own beyond a Resources reference — everything mutable lives
// there, explicitly, not behind package-level singletons (spec.md §9).
type Scheduler struct {
	Res      *Resources
	Store    external.ObjectStore
	Analyzer external.LayoutAnalyzer
	Resolver Resolver
	Validate *validate.Validator
}

func NewScheduler(res *Resources, store external.ObjectStore, analyzer external.LayoutAnalyzer, resolver Resolver, validator *validate.Validator) *Scheduler {
	return &Scheduler{Res: res, Store: store, Analyzer: analyzer, Resolver: resolver, Validate: validator}
}

// RegisterInput is the Registration stage's job payload, mirroring
// external.RegisteredDocument plus the metadata a Scraper would attach.
type RegisterInput struct {
	Content            []byte
	FranchisorNameHint string
	FilingState        string
	IssueDate          time.Time
}

// ProcessFDD runs Registration through Storage for one document, enforcing
// spec.md §5's per-document deadline (default 600s, overridable via
// cfg.DocumentDeadlineSeconds).
func (s *Scheduler) ProcessFDD(ctx context.Context, input RegisterInput) (string, error) {
	deadline := time.Duration(s.Res.Config.DocumentDeadlineSeconds) * time.Second
	if deadline <= 0 {
		deadline = 600 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	fddID, existing, err := s.register(ctx, input)
	if err != nil {
		return "", err
	}
	if existing {
		return fddID, nil
	}

	doc, err := s.openDocument(input.Content)
	if err != nil {
		s.failFDD(ctx, fddID, err)
		return fddID, err
	}
	defer doc.cleanup()

	layout, err := s.segment(ctx, input.Content)
	if err != nil {
		s.failFDD(ctx, fddID, err)
		return fddID, err
	}

	sections, err := s.storeSections(ctx, fddID, layout, doc.NumPages)
	if err != nil {
		s.failFDD(ctx, fddID, err)
		return fddID, err
	}

	if rawKey := contenthash.RawPath(input.FilingState, contenthash.Slug(input.FranchisorNameHint), input.IssueDate.Year()); rawKey != "" {
		if err := s.Store.Put(ctx, rawKey, bytes.NewReader(input.Content)); err != nil {
			s.failFDD(ctx, fddID, pipelineerrors.Transient("scheduler.storeRaw", err))
			return fddID, err
		}
	}

	s.extractValidateStore(ctx, fddID, sections, doc)

	if err := s.finalize(ctx, fddID); err != nil {
		return fddID, err
	}
	return fddID, nil
}

// register hashes the content, locking per-hash so two concurrent
// submissions of the same bytes can't both create an FDD row (spec.md §4.1
// dedupe, §5's keyed-mutex requirement). Returns (id, true, nil) when the
// document is a known duplicate.
func (s *Scheduler) register(ctx context.Context, input RegisterInput) (string, bool, error) {
	hash := contenthash.SHA256Hex(input.Content)

	var fddID string
	var existing bool
	var regErr error
	s.Res.Dedupe.With(hash, func() {
		found, err := s.Res.FDDs.FindByContentHash(ctx, hash)
		if err != nil {
			regErr = pipelineerrors.Transient("scheduler.register", err)
			return
		}
		if found != nil {
			fddID = found.ID
			existing = true
			return
		}

		result, err := s.Resolver.Resolve(ctx, "", input.FranchisorNameHint)
		if err != nil {
			regErr = pipelineerrors.PermanentInput("scheduler.register", err)
			return
		}

		fdd := &model.FDD{
			ID:               uuid.NewString(),
			FranchisorID:     result.FranchisorID,
			IssueDate:        input.IssueDate,
			DocumentType:     model.DocInitial,
			FilingState:      input.FilingState,
			ContentHash:      hash,
			ProcessingStatus: model.FDDProcessing,
		}
		if err := s.Res.FDDs.CreateFDD(ctx, fdd); err != nil {
			regErr = pipelineerrors.Transient("scheduler.register", err)
			return
		}
		fddID = fdd.ID
	})
	return fddID, existing, regErr
}

// openDocument spills content to a temp file so pkg/pdfdoc (which reads
// from a path, per the teacher's unipdf reference) can index it.
func (s *Scheduler) openDocument(content []byte) (*openedDoc, error) {
	f, err := os.CreateTemp("", "fdd-*.pdf")
	if err != nil {
		return nil, pipelineerrors.FatalSystem("scheduler.openDocument", err)
	}
	path := f.Name()
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(path)
		return nil, pipelineerrors.FatalSystem("scheduler.openDocument", err)
	}
	f.Close()

	doc, err := pdfdoc.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, pipelineerrors.PermanentInput("scheduler.openDocument", err)
	}
	return &openedDoc{Document: doc, path: path}, nil
}

type openedDoc struct {
	*pdfdoc.Document
	path string
}

func (d *openedDoc) cleanup() {
	d.Close()
	os.Remove(d.path)
}

// segment calls the LayoutAnalyzer collaborator (spec.md §4.2's inputs:
// "an analyzed block layout").
func (s *Scheduler) segment(ctx context.Context, content []byte) (section.Layout, error) {
	layout, err := s.Analyzer.Analyze(ctx, content)
	if err != nil {
		return section.Layout{}, pipelineerrors.Transient("scheduler.segment", err)
	}
	return layout, nil
}

// storeSections runs the detector and persists its output, falling back to
// a single whole-document section when anchors are insufficient (spec.md
// §4.2's degraded path) rather than failing Segmentation outright.
func (s *Scheduler) storeSections(ctx context.Context, fddID string, layout section.Layout, numPages int) ([]model.Section, error) {
	sections, err := section.Detect(layout, fddID, s.Res.Config.Detector.MinAnchorsRequired)
	if err != nil {
		sections = []model.Section{section.FallbackSection(fddID, numPages)}
	}
	for i := range sections {
		sections[i].ID = uuid.NewString()
	}
	if err := s.Res.Sections.CreateSections(ctx, sections); err != nil {
		return nil, pipelineerrors.Transient("scheduler.storeSections", err)
	}
	return sections, nil
}

// extractValidateStore runs Extraction, Validation, and Storage for every
// section through a bounded worker pool (spec.md §4.6 concurrency caps),
// serializing the Storage write per (fdd, item_no) with StoreLock so two
// sections can extract concurrently but never race on their row write.
func (s *Scheduler) extractValidateStore(ctx context.Context, fddID string, sections []model.Section, doc *openedDoc) {
	engine := s.Res.NewEngine()
	retry := RetryPolicyFromConfig(s.Res.Config.Retry.Extract)
	budget := extraction.NewTokenBudget(s.Res.Config.LLM.PerDocumentTokens)

	handler := func(ctx context.Context, sec model.Section) (model.Section, error) {
		sectionText, err := doc.RangeText(sec.StartPage, sec.EndPage)
		if err != nil {
			sec.ExtractionStatus = model.SectionFailed
			_ = s.Res.Sections.UpdateExtractionStatus(ctx, sec.ID, model.SectionFailed, "", 0)
			return sec, pipelineerrors.PermanentInput("scheduler.extract", err)
		}

		if sub, subErr := doc.ExtractRange(sec.StartPage, sec.EndPage); subErr == nil {
			key := contenthash.ProcessedSectionPath(fddID, sec.ItemNo)
			_ = s.Store.Put(ctx, key, bytes.NewReader(sub))
			sec.StoragePath = key
		}

		var item *model.ExtractedItem
		err = retry.Do(ctx, func() error {
			if err := s.Res.Limiters.Wait(ctx, "extraction"); err != nil {
				return err
			}
			var extractErr error
			item, extractErr = engine.Extract(ctx, sec.ID, sec.ItemNo, sectionText, "", extraction.FranchisorContext{}, budget)
			return extractErr
		})
		if err != nil {
			sec.ExtractionStatus = model.SectionFailed
			_ = s.Res.Sections.UpdateExtractionStatus(ctx, sec.ID, model.SectionFailed, "", retry.MaxAttempts)
			return sec, err
		}

		errs, verr := s.Validate.ValidateItem(ctx, fddID, item)
		if verr != nil {
			sec.ExtractionStatus = model.SectionFailed
			_ = s.Res.Sections.UpdateExtractionStatus(ctx, sec.ID, model.SectionFailed, item.Model, item.AttemptCount)
			return sec, verr
		}

		status := model.SectionSuccess
		if model.HasBlockingError(errs) {
			status = model.SectionFailed
		} else if model.HasWarning(errs) {
			sec.NeedsReview = true
		}

		storeKey := fmt.Sprintf("%s:%d", fddID, sec.ItemNo)
		var storeErr error
		if status == model.SectionSuccess {
			s.Res.StoreLock.With(storeKey, func() {
				storeErr = s.Res.Items.SaveItem(ctx, item)
			})
		}
		if storeErr != nil {
			status = model.SectionFailed
		}

		sec.ExtractionStatus = status
		sec.AttemptCount = item.AttemptCount
		sec.ExtractionModel = item.Model
		_ = s.Res.Sections.UpdateExtractionStatus(ctx, sec.ID, status, item.Model, item.AttemptCount)
		return sec, nil
	}

	Run(ctx, s.Res.Config.MaxConcurrency.Extract, sections, handler)
}

// finalize recomputes the quality score and transitions the FDD to a
// terminal status once every section has reached one (spec.md §4.6 step 5,
// spec.md line "If every section of the FDD is in a terminal state...").
func (s *Scheduler) finalize(ctx context.Context, fddID string) error {
	sections, err := s.Res.Sections.ListByFDD(ctx, fddID)
	if err != nil {
		return pipelineerrors.Transient("scheduler.finalize", err)
	}

	for _, sec := range sections {
		if sec.ExtractionStatus == model.SectionPending || sec.ExtractionStatus == model.SectionProcessing {
			return nil
		}
	}

	score := model.QualityScore(sections)
	if err := s.Res.FDDs.UpdateQualityScore(ctx, fddID, score); err != nil {
		return pipelineerrors.Transient("scheduler.finalize", err)
	}

	status := model.FDDCompleted
	highValueTotal, highValueFailed := 0, 0
	for _, sec := range sections {
		if !model.HighValueItems[sec.ItemNo] {
			continue
		}
		highValueTotal++
		if sec.ExtractionStatus == model.SectionFailed {
			highValueFailed++
		}
	}
	if highValueTotal > 0 && highValueFailed == highValueTotal {
		status = model.FDDFailed
	}
	if err := s.Res.FDDs.UpdateStatus(ctx, fddID, status, ""); err != nil {
		return pipelineerrors.Transient("scheduler.finalize", err)
	}
	return nil
}

func (s *Scheduler) failFDD(ctx context.Context, fddID string, err error) {
	_ = s.Res.FDDs.UpdateStatus(ctx, fddID, model.FDDFailed, err.Error())
}

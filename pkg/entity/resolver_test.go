package entity

import (
	"context"
	"testing"
	"time"

	"fddpipeline/pkg/model"
)

// --- in-memory fakes, grounded on the teacher's knowledge.MemoryStore ---

type memFranchisorStore struct {
	byID map[string]*model.Franchisor
}

func newMemFranchisorStore() *memFranchisorStore {
	return &memFranchisorStore{byID: make(map[string]*model.Franchisor)}
}

func (s *memFranchisorStore) FindByCanonicalName(ctx context.Context, name string) (*model.Franchisor, error) {
	for _, f := range s.byID {
		if f.CanonicalName == name {
			return f, nil
		}
	}
	return nil, nil
}

func (s *memFranchisorStore) TopKBySimilarity(ctx context.Context, embedding [384]float32, k int) ([]ScoredFranchisor, error) {
	var out []ScoredFranchisor
	for _, f := range s.byID {
		out = append(out, ScoredFranchisor{Franchisor: f, Similarity: CosineSimilarity(embedding, f.Embedding)})
	}
	if len(out) > k {
		sortCandidates(out)
		out = out[:k]
	}
	return out, nil
}

func (s *memFranchisorStore) Create(ctx context.Context, f *model.Franchisor) error {
	s.byID[f.ID] = f
	return nil
}

func (s *memFranchisorStore) Update(ctx context.Context, f *model.Franchisor) error {
	s.byID[f.ID] = f
	return nil
}

func (s *memFranchisorStore) Get(ctx context.Context, id string) (*model.Franchisor, error) {
	return s.byID[id], nil
}

type memFDDStore struct {
	byID map[string]*model.FDD
}

func newMemFDDStore() *memFDDStore { return &memFDDStore{byID: make(map[string]*model.FDD)} }

func (s *memFDDStore) FindByContentHash(ctx context.Context, hash string) (*model.FDD, error) {
	for _, f := range s.byID {
		if f.ContentHash == hash && f.DuplicateOf == nil {
			return f, nil
		}
	}
	return nil, nil
}

func (s *memFDDStore) FindLatestForFranchisor(ctx context.Context, franchisorID string) ([]*model.FDD, error) {
	var out []*model.FDD
	for _, f := range s.byID {
		if f.FranchisorID == franchisorID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memFDDStore) SetSupersededBy(ctx context.Context, oldID, newID string) error {
	s.byID[oldID].SupersededBy = &newID
	return nil
}

func (s *memFDDStore) Get(ctx context.Context, id string) (*model.FDD, error) {
	return s.byID[id], nil
}

type memReviewStore struct{ reviews []*model.ReviewRecord }

func (s *memReviewStore) CreateReview(ctx context.Context, r *model.ReviewRecord) error {
	s.reviews = append(s.reviews, r)
	return nil
}

// fakeEmbedder returns a deterministic near-unit vector so tests can steer
// similarity without a real embedding call.
type fakeEmbedder struct {
	vectors map[string][384]float32
	fallback [384]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([384]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func baseVector(x float32) [384]float32 {
	var v [384]float32
	v[0] = x
	v[1] = 1
	return v
}

// Scenario 4: exact canonical-name match (spec.md §8 boundary scenario 4).
func TestResolve_ExactMatch(t *testing.T) {
	franchisors := newMemFranchisorStore()
	existing := &model.Franchisor{ID: "f1", CanonicalName: "Acme Burgers", Embedding: baseVector(1), CreatedAt: time.Unix(0, 0)}
	franchisors.Create(context.Background(), existing)

	r := NewResolver(franchisors, newMemFDDStore(), nil, &fakeEmbedder{})
	res, err := r.Resolve(context.Background(), "fdd-1", "Acme Burgers, LLC")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.MatchKind != model.MatchExact {
		t.Fatalf("expected Exact, got %s", res.MatchKind)
	}
	if res.FranchisorID != "f1" {
		t.Fatalf("expected f1, got %s", res.FranchisorID)
	}
}

// Scenario 5: medium-confidence match creates a tentative Franchisor and a
// review record linking the candidates (spec.md §8 boundary scenario 5).
func TestResolve_MediumConfidenceNeedsReview(t *testing.T) {
	franchisors := newMemFranchisorStore()
	existing := &model.Franchisor{ID: "f1", CanonicalName: "Acme Burgers", Embedding: baseVector(1), CreatedAt: time.Unix(0, 0)}
	franchisors.Create(context.Background(), existing)

	reviews := &memReviewStore{}
	// cos([1,1], [1,0.3]) ~= 0.88, landing in [0.85, 0.94).
	var candidate [384]float32
	candidate[0] = 1
	candidate[1] = 0.3
	embedder := &fakeEmbedder{vectors: map[string][384]float32{"Akme Burgers": candidate}}
	r := NewResolver(franchisors, newMemFDDStore(), reviews, embedder)

	res, err := r.Resolve(context.Background(), "fdd-2", "Akme Burgers LLC")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.MatchKind != model.MatchNeedsReview {
		t.Fatalf("expected NeedsReview, got %s", res.MatchKind)
	}
	if res.FranchisorID == "f1" {
		t.Fatalf("expected a new tentative franchisor, got the existing one")
	}
	if len(reviews.reviews) != 1 {
		t.Fatalf("expected one review record, got %d", len(reviews.reviews))
	}
	if reviews.reviews[0].CreatedFranchisor != res.FranchisorID {
		t.Fatalf("review record does not link the created franchisor")
	}
}

func TestResolve_LowSimilarityCreatesNew(t *testing.T) {
	franchisors := newMemFranchisorStore()
	existing := &model.Franchisor{ID: "f1", CanonicalName: "Acme Burgers", Embedding: baseVector(1), CreatedAt: time.Unix(0, 0)}
	franchisors.Create(context.Background(), existing)

	var unrelated [384]float32
	unrelated[100] = 1
	embedder := &fakeEmbedder{vectors: map[string][384]float32{"Totally Different Co": unrelated}}
	r := NewResolver(franchisors, newMemFDDStore(), nil, embedder)

	res, err := r.Resolve(context.Background(), "fdd-3", "Totally Different Co")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.MatchKind != model.MatchCreated {
		t.Fatalf("expected Created, got %s", res.MatchKind)
	}
}

// Scenario 6: amendment supersession (spec.md §8 boundary scenario 6).
func TestResolveLineage_AmendmentSupersedes(t *testing.T) {
	fdds := newMemFDDStore()
	a := &model.FDD{ID: "A", FranchisorID: "f1", DocumentType: model.DocInitial, IssueDate: mustDate("2023-01-15"), ContentHash: "hash-a"}
	fdds.byID["A"] = a

	r := NewResolver(newMemFranchisorStore(), fdds, nil, &fakeEmbedder{})
	b := &model.FDD{ID: "B", FranchisorID: "f1", DocumentType: model.DocAmendment, IssueDate: mustDate("2024-02-01"), ContentHash: "hash-b"}

	result, err := r.ResolveLineage(context.Background(), "f1", b)
	if err != nil {
		t.Fatalf("resolve lineage: %v", err)
	}
	if result.SupersededOld != "A" {
		t.Fatalf("expected A superseded, got %q", result.SupersededOld)
	}
	if a.SupersededBy == nil || *a.SupersededBy != "B" {
		t.Fatalf("expected A.superseded_by = B")
	}
	if b.SupersededBy != nil {
		t.Fatalf("B must not be superseded")
	}
}

// Scenario 1: duplicate hash (spec.md §8 boundary scenario 1).
func TestResolveLineage_DuplicateHash(t *testing.T) {
	fdds := newMemFDDStore()
	a := &model.FDD{ID: "A", FranchisorID: "f1", DocumentType: model.DocInitial, IssueDate: mustDate("2023-01-15"), ContentHash: "same-hash"}
	fdds.byID["A"] = a

	r := NewResolver(newMemFranchisorStore(), fdds, nil, &fakeEmbedder{})
	b := &model.FDD{ID: "B", FranchisorID: "f1", DocumentType: model.DocInitial, IssueDate: mustDate("2023-01-15"), ContentHash: "same-hash"}

	result, err := r.ResolveLineage(context.Background(), "f1", b)
	if err != nil {
		t.Fatalf("resolve lineage: %v", err)
	}
	if result.DuplicateOf != "A" {
		t.Fatalf("expected duplicate_of A, got %q", result.DuplicateOf)
	}
}

func TestLatest_DepthBoundCatchesCycle(t *testing.T) {
	fdds := newMemFDDStore()
	a := &model.FDD{ID: "A"}
	b := &model.FDD{ID: "B"}
	aID, bID := "A", "B"
	a.SupersededBy = &bID
	b.SupersededBy = &aID // accidental cycle
	fdds.byID["A"] = a
	fdds.byID["B"] = b

	_, err := Latest(context.Background(), fdds, "A")
	if err == nil {
		t.Fatalf("expected depth-bound error for a cyclic lineage chain")
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

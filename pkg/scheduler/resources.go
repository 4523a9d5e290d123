package scheduler

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"fddpipeline/pkg/config"
	"fddpipeline/pkg/extraction"
	"fddpipeline/pkg/llm"
	"fddpipeline/pkg/prompt"
	"fddpipeline/pkg/storage"
)

// Resources bundles everything the five stages share: the DB pool, the LLM
// router, per-provider rate limiters, and the dedupe/ordering keyed mutex.
// Deliberately NOT a package-level singleton the way the teacher's
// store.GetPool()/sync.Once is (spec.md §9): a scheduler run owns one
// Resources value and passes it explicitly to every stage handler, so two
// concurrent pipeline runs (e.g. production plus a test) never share
// global state by accident.
type Resources struct {
	Pool      *pgxpool.Pool
	Config    *config.Config
	Router    *llm.Router
	Prompts   *prompt.Registry
	Limiters  *RateLimiters
	Dedupe    *KeyedMutex
	StoreLock *KeyedMutex

	Items       ItemStore
	FDDs        FDDStore
	Sections    SectionStore
	Franchisors *storage.FranchisorRepo
	Reviews     *storage.ReviewRepo
	Bypasses    *storage.BypassRepo
}

// NewResources wires the concrete storage/llm implementations against pool
// and cfg. Callers in tests build a Resources by hand instead, substituting
// fakes for Items/FDDs/etc.
func NewResources(pool *pgxpool.Pool, cfg *config.Config, router *llm.Router, prompts *prompt.Registry) *Resources {
	return &Resources{
		Pool:        pool,
		Config:      cfg,
		Router:      router,
		Prompts:     prompts,
		Limiters:    NewRateLimiters(1, 5),
		Dedupe:      NewKeyedMutex(),
		StoreLock:   NewKeyedMutex(),
		Items:       storage.NewItemRepo(pool),
		FDDs:        storage.NewFDDRepo(pool),
		Sections:    storage.NewSectionRepo(pool),
		Franchisors: storage.NewFranchisorRepo(pool),
		Reviews:     storage.NewReviewRepo(pool),
		Bypasses:    storage.NewBypassRepo(pool),
	}
}

// NewEngine builds the extraction.Engine sharing this Resources' router,
// prompt registry, and config — the Extraction stage's per-job dependency.
func (r *Resources) NewEngine() *extraction.Engine {
	return extraction.NewEngine(r.Router, r.Prompts, r.Config)
}

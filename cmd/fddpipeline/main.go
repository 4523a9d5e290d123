// Command fddpipeline wires the FDD processing pipeline's concrete
// adapters and drives one document through the scheduler end to end,
// mirroring the teacher's cmd/pipeline entrypoint shape (env load, client
// construction, then the actual run) rather than its valuation-specific
// content.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fddpipeline/pkg/config"
	"fddpipeline/pkg/embedding"
	"fddpipeline/pkg/entity"
	"fddpipeline/pkg/external/fixture"
	"fddpipeline/pkg/external/memstore"
	"fddpipeline/pkg/llm"
	"fddpipeline/pkg/prompt"
	"fddpipeline/pkg/scheduler"
	"fddpipeline/pkg/storage"
	"fddpipeline/pkg/validate"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("fddpipeline: .env not found, assuming environment is set")
	}

	cfg, err := config.Load("config.yaml", "config.local.hjson", ".env")
	if err != nil {
		log.Printf("fddpipeline: using defaults, config load failed: %v", err)
		cfg = config.Default()
	}

	ctx := context.Background()

	pool, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("fddpipeline: db pool: %v", err)
	}
	defer pool.Close()

	router := llm.NewRouter(
		&llm.GeminiProvider{},
		&llm.DeepSeekProvider{},
		&llm.QwenProvider{},
		&llm.LocalProvider{},
	)
	prompts := prompt.NewRegistry()

	res := scheduler.NewResources(pool, cfg, router, prompts)

	embedder, err := embedding.New(cfg.Embedding.Driver, cfg.Embedding.Model)
	if err != nil {
		log.Fatalf("fddpipeline: embedding provider: %v", err)
	}
	resolver := entity.NewResolver(res.Franchisors, res.FDDs, res.Reviews, embedder)
	validator := validate.NewValidator(res.Bypasses, validate.NewSampleStats())

	objectStore := memstore.New()
	analyzer := fixture.New()

	sched := scheduler.NewScheduler(res, objectStore, analyzer, resolver, validator)

	path := "fdd.pdf"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("fddpipeline: read %s: %v", path, err)
	}

	fddID, err := sched.ProcessFDD(ctx, scheduler.RegisterInput{
		Content:     content,
		IssueDate:   time.Now(),
		FilingState: "CA",
	})
	if err != nil {
		log.Fatalf("fddpipeline: process %s: %v", path, err)
	}
	log.Printf("fddpipeline: processed fdd %s", fddID)
}

// Package config loads the configuration surface described in spec.md §6:
// per-stage concurrency caps, retry policy, LLM routing, similarity
// thresholds, detector anchor minimums, document deadline, and bypass
// reason whitelist.
//
// Loading follows the teacher's conventions: YAML for the structured base
// config (mirroring pkg/core/agent.Config's yaml tags), an optional .env
// overlay for secrets via github.com/joho/godotenv, and an optional Hjson
// operator-override file for hand-edited tweaks (the teacher already
// depends on github.com/hjson/hjson-go/v4 for relaxed JSON parsing in
// pkg/core/utils/json_validator.go; this is the same library used for a
// human-editable config surface instead).
package config

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// StageConcurrency holds worker caps per stage (spec.md §4.6 defaults).
type StageConcurrency struct {
	Register int `yaml:"register"`
	Segment  int `yaml:"segment"`
	Extract  int `yaml:"extract"`
	Validate int `yaml:"validate"`
	Store    int `yaml:"store"`
}

// RetryPolicy is one stage's retry policy (spec.md §4.6/§5).
type RetryPolicy struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	MaxDelayMS  int     `yaml:"max_delay_ms"`
	Factor      float64 `yaml:"factor"`
}

// RetryConfig is the per-stage retry table.
type RetryConfig struct {
	Register RetryPolicy `yaml:"register"`
	Segment  RetryPolicy `yaml:"segment"`
	Extract  RetryPolicy `yaml:"extract"`
	Validate RetryPolicy `yaml:"validate"`
	Store    RetryPolicy `yaml:"store"`
}

// LLMConfig is the routing + budget surface (spec.md §6).
type LLMConfig struct {
	// Routing maps an item number (as a string key, for YAML friendliness)
	// to an ordered provider-name chain, e.g. {"5": ["local", "gemini"]}.
	Routing             map[string][]string `yaml:"routing"`
	PerDocumentTokens   int                 `yaml:"per_document_tokens"`
	DefaultProviderChain []string           `yaml:"default_provider_chain"`
}

// SimilarityConfig holds entity-resolution thresholds (spec.md §4.1/§6).
type SimilarityConfig struct {
	HighThreshold   float64 `yaml:"high_threshold"`
	ReviewThreshold float64 `yaml:"review_threshold"`
}

// DetectorConfig holds section-detector thresholds (spec.md §4.2/§6).
type DetectorConfig struct {
	MinAnchorsRequired int `yaml:"min_anchors_required"`
}

// EmbeddingConfig selects which Google AI SDK backs pkg/embedding.Provider
// (spec.md §4.3: the teacher carries two distinct Google AI SDKs and either
// can serve the embedding call).
type EmbeddingConfig struct {
	Driver string `yaml:"driver"` // "genai" (default) or "generativeai"
	Model  string `yaml:"model"`
}

// TimeoutConfig holds external-call timeouts (spec.md §5).
type TimeoutConfig struct {
	LLMSeconds         int `yaml:"llm_seconds"`
	EmbeddingSeconds   int `yaml:"embedding_seconds"`
	ObjectStoreSeconds int `yaml:"object_store_seconds"`
	DBTransactionSeconds int `yaml:"db_transaction_seconds"`
}

// Config is the root configuration object.
type Config struct {
	MaxConcurrency        StageConcurrency  `yaml:"max_concurrency"`
	Retry                 RetryConfig       `yaml:"retry"`
	LLM                   LLMConfig         `yaml:"llm"`
	Similarity            SimilarityConfig  `yaml:"similarity"`
	Detector              DetectorConfig    `yaml:"detector"`
	Embedding             EmbeddingConfig   `yaml:"embedding"`
	DocumentDeadlineSeconds int             `yaml:"document_deadline_seconds"`
	ValidationBypassReasons []string        `yaml:"validation_bypass_reasons"`
	Timeouts              TimeoutConfig     `yaml:"timeouts"`
	DBPoolMaxConns        int               `yaml:"db_pool_max_conns"`
	DatabaseURL           string            `yaml:"-"`
}

// Default returns the spec.md §4.6/§5/§6 default configuration.
func Default() *Config {
	return &Config{
		MaxConcurrency: StageConcurrency{Register: 4, Segment: 2, Extract: 8, Validate: 8, Store: 4},
		Retry: RetryConfig{
			Register: RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2},
			Segment:  RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2},
			Extract:  RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2},
			Validate: RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2},
			Store:    RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2},
		},
		LLM: LLMConfig{
			Routing: map[string][]string{
				"5":  {"local", "gemini", "deepseek"},
				"6":  {"local", "gemini", "deepseek"},
				"7":  {"local", "gemini", "deepseek"},
				"20": {"local", "gemini", "deepseek"},
				"19": {"gemini", "deepseek", "qwen"},
				"21": {"gemini", "deepseek", "qwen"},
			},
			DefaultProviderChain: []string{"gemini", "deepseek", "qwen"},
			PerDocumentTokens:    200000,
		},
		Similarity: SimilarityConfig{HighThreshold: 0.94, ReviewThreshold: 0.85},
		Detector:   DetectorConfig{MinAnchorsRequired: 18},
		Embedding:  EmbeddingConfig{Driver: "genai", Model: "text-embedding-004"},
		DocumentDeadlineSeconds: 600,
		ValidationBypassReasons: []string{"known_extraction_artifact", "operator_verified", "pending_amendment"},
		Timeouts: TimeoutConfig{LLMSeconds: 60, EmbeddingSeconds: 10, ObjectStoreSeconds: 30, DBTransactionSeconds: 15},
		DBPoolMaxConns: 20,
	}
}

// Load reads a base YAML config, applies an optional Hjson operator-override
// file, then folds in environment/`.env` values (DATABASE_URL and API keys
// are never stored in YAML).
func Load(yamlPath string, hjsonOverridePath string, envPath string) (*Config, error) {
	cfg := Default()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: %s not found, assuming environment is set\n", envPath)
		}
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("config: read yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if hjsonOverridePath != "" {
		if data, err := os.ReadFile(hjsonOverridePath); err == nil {
			var override map[string]interface{}
			if err := hjson.Unmarshal(data, &override); err != nil {
				return nil, fmt.Errorf("config: parse hjson override: %w", err)
			}
			applyOverride(cfg, override)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	return cfg, nil
}

// applyOverride folds a small set of commonly hand-tweaked knobs from an
// Hjson override document onto cfg. Unlike the full YAML schema, operators
// editing this file by hand only ever touch routing/thresholds/budget.
func applyOverride(cfg *Config, override map[string]interface{}) {
	if v, ok := override["per_document_tokens"]; ok {
		if f, ok := toFloat(v); ok {
			cfg.LLM.PerDocumentTokens = int(f)
		}
	}
	if v, ok := override["high_threshold"]; ok {
		if f, ok := toFloat(v); ok {
			cfg.Similarity.HighThreshold = f
		}
	}
	if v, ok := override["review_threshold"]; ok {
		if f, ok := toFloat(v); ok {
			cfg.Similarity.ReviewThreshold = f
		}
	}
	if v, ok := override["min_anchors_required"]; ok {
		if f, ok := toFloat(v); ok {
			cfg.Detector.MinAnchorsRequired = int(f)
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// RoutingFor returns the configured provider chain for an item number,
// falling back to the default chain (spec.md §4.3 model routing).
func (c *Config) RoutingFor(itemNo int) []string {
	key := fmt.Sprintf("%d", itemNo)
	if chain, ok := c.LLM.Routing[key]; ok && len(chain) > 0 {
		return chain
	}
	return c.LLM.DefaultProviderChain
}

// RetryFor returns the retry policy for a named stage.
func (c *Config) RetryFor(stage string) RetryPolicy {
	switch stage {
	case "register":
		return c.Retry.Register
	case "segment":
		return c.Retry.Segment
	case "extract":
		return c.Retry.Extract
	case "validate":
		return c.Retry.Validate
	case "store":
		return c.Retry.Store
	default:
		return RetryPolicy{MaxAttempts: 3, BaseDelayMS: 1000, MaxDelayMS: 60000, Factor: 2}
	}
}

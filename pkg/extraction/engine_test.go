package extraction

import (
	"context"
	"testing"

	"fddpipeline/pkg/config"
	"fddpipeline/pkg/llm"
	"fddpipeline/pkg/prompt"
)

type fakeProvider struct {
	name string
	resp string
	err  error
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return f.resp, f.err
}

func TestEngine_ExtractItem5(t *testing.T) {
	cfg := config.Default()
	registry := prompt.NewRegistry()
	if err := registry.Register(&prompt.Template{
		ID:             "extraction.item5",
		ItemNo:         5,
		SystemPrompt:   "Return JSON matching the Item5Fees schema.",
		UserPromptTmpl: "Extract initial fees from: {{.SectionText}}",
		Version:        "v1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	providerName := cfg.RoutingFor(5)[0]
	provider := &fakeProvider{name: providerName, resp: `{"Fees":[{"Name":"Initial Franchise Fee","AmountCents":3500000,"Refundable":false,"Conditions":""}]}`}
	router := llm.NewRouter(provider)

	engine := NewEngine(router, registry, cfg)
	budget := NewTokenBudget(cfg.LLM.PerDocumentTokens)

	item, err := engine.Extract(context.Background(), "section-1", 5, "Initial Franchise Fee: $35,000", "", FranchisorContext{Name: "Acme Burgers", IssueYear: 2024}, budget)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if item.Item5 == nil || len(item.Item5.Fees) != 1 {
		t.Fatalf("expected one parsed fee, got %+v", item.Item5)
	}
	if item.Item5.Fees[0].AmountCents != 3500000 {
		t.Fatalf("expected 3500000 cents, got %d", item.Item5.Fees[0].AmountCents)
	}
	if item.AttemptCount != 1 {
		t.Fatalf("expected 1 attempt, got %d", item.AttemptCount)
	}
}

func TestEngine_SchemaInvalidEscalatesThenFails(t *testing.T) {
	cfg := config.Default()
	registry := prompt.NewRegistry()
	registry.Register(&prompt.Template{
		ID:             "extraction.item5",
		ItemNo:         5,
		SystemPrompt:   "Return JSON.",
		UserPromptTmpl: "Extract: {{.SectionText}}",
		Version:        "v1",
	})

	chain := cfg.RoutingFor(5)
	var providers []llm.Provider
	for _, name := range chain {
		providers = append(providers, &fakeProvider{name: name, resp: "not json"})
	}
	router := llm.NewRouter(providers...)

	engine := NewEngine(router, registry, cfg)
	_, err := engine.Extract(context.Background(), "section-1", 5, "text", "", FranchisorContext{}, nil)
	if err == nil {
		t.Fatalf("expected schema-invalid error after exhausting the chain")
	}
}

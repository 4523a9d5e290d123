package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"fddpipeline/pkg/config"
	"fddpipeline/pkg/llm"
	"fddpipeline/pkg/model"
	"fddpipeline/pkg/prompt"
)

// FranchisorContext is the franchisor-level info every item template can
// reference (spec.md §4.3 inputs: "franchisor context (name, issue year)").
type FranchisorContext struct {
	Name      string
	IssueYear int
}

// Engine implements spec.md §4.3's render/call/parse/retry loop for one
// Section.
type Engine struct {
	Router   *llm.Router
	Prompts  *prompt.Registry
	Config   *config.Config
}

func NewEngine(router *llm.Router, prompts *prompt.Registry, cfg *config.Config) *Engine {
	return &Engine{Router: router, Prompts: prompts, Config: cfg}
}

// schemaFor returns a fresh pointer matching the item's tagged-union field
// (spec.md §9), the target jsonutil.RepairAndUnmarshal decodes into.
func schemaFor(itemNo int) (model.ItemTag, interface{}) {
	switch model.TagForItem(itemNo) {
	case model.TagItem5:
		return model.TagItem5, &model.Item5Fees{}
	case model.TagItem6:
		return model.TagItem6, &model.Item6Fees{}
	case model.TagItem7:
		return model.TagItem7, &model.Item7Investment{}
	case model.TagItem19:
		return model.TagItem19, &model.Item19FPR{}
	case model.TagItem20:
		return model.TagItem20, &model.Item20Outlets{}
	case model.TagItem21:
		return model.TagItem21, &model.Item21Financials{}
	default:
		var v map[string]interface{}
		return model.TagOpaque, &v
	}
}

// Extract runs the full pipeline for one section: render the item's
// template, route the call through the provider chain, and assemble a
// tagged ExtractedItem. candidateText, when non-empty, is the
// goquery-derived table pre-parse (§4.7) appended to the prompt for the
// "simple tables" items.
func (e *Engine) Extract(ctx context.Context, sectionID string, itemNo int, sectionText string, candidateText string, franchisor FranchisorContext, budget *TokenBudget) (*model.ExtractedItem, error) {
	tmpl, err := e.Prompts.ForItem(itemNo)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}

	pctx := prompt.NewContext().
		Set("SectionText", sectionText).
		Set("FranchisorName", franchisor.Name).
		Set("IssueYear", franchisor.IssueYear)
	if candidateText != "" {
		pctx.Set("CandidateTable", candidateText)
	}

	userPrompt, err := prompt.RenderUserPrompt(tmpl, pctx)
	if err != nil {
		return nil, fmt.Errorf("extraction: render prompt: %w", err)
	}

	tag, schema := schemaFor(itemNo)
	chain := e.Config.RoutingFor(itemNo)

	result, err := e.Router.Extract(ctx, chain, userPrompt, tmpl.SystemPrompt, schema)
	if err != nil {
		return nil, err
	}

	if budget != nil {
		if err := budget.Reserve(userPrompt, result.Raw); err != nil {
			return nil, err
		}
	}

	item := &model.ExtractedItem{
		SectionID:     sectionID,
		ItemNo:        itemNo,
		Tag:           tag,
		SchemaVersion: tmpl.Version,
		ExtractionMeta: model.ExtractionMeta{
			Model:        result.Provider,
			PromptVersion: tmpl.Version,
			TokensUsed:   estimateTokens(userPrompt) + estimateTokens(result.Raw),
			AttemptCount: result.Attempts,
		},
	}

	switch tag {
	case model.TagItem5:
		item.Item5 = schema.(*model.Item5Fees)
	case model.TagItem6:
		item.Item6 = schema.(*model.Item6Fees)
	case model.TagItem7:
		item.Item7 = schema.(*model.Item7Investment)
	case model.TagItem19:
		item.Item19 = schema.(*model.Item19FPR)
	case model.TagItem20:
		item.Item20 = schema.(*model.Item20Outlets)
	case model.TagItem21:
		item.Item21 = schema.(*model.Item21Financials)
	default:
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("extraction: marshal opaque payload: %w", err)
		}
		item.Opaque = raw
	}

	return item, nil
}

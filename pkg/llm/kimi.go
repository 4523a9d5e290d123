package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// KimiProvider generalizes the teacher's stub KimiProvider
// (pkg/core/llm/provider.go) into a real call against Moonshot AI's
// OpenAI-compatible chat-completions endpoint. Kimi's long-context window
// makes it a plausible last-resort member of the Item 19/21 fallback chain
// (spec.md §4.3) for oversized narrative sections.
type KimiProvider struct {
	Model string // defaults to "moonshot-v1-128k"
}

var _ Provider = (*KimiProvider)(nil)

func (p *KimiProvider) Name() string { return "kimi" }

func (p *KimiProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("MOONSHOT_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("MOONSHOT_API_KEY not set")
	}

	model := p.Model
	if model == "" {
		model = "moonshot-v1-128k"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := localChatRequest{
		Model: model,
		Messages: []deepseekMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.1,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal kimi request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.moonshot.cn/v1/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("llm: create kimi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: kimi call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read kimi response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: kimi status %d: %s", resp.StatusCode, string(body))
	}

	var parsed localChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: unmarshal kimi response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: kimi returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

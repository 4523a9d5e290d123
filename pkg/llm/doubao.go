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

// DoubaoProvider generalizes the teacher's stub DoubaoProvider
// (pkg/core/llm/provider.go) into a real call against ByteDance's Ark
// OpenAI-compatible endpoint.
type DoubaoProvider struct {
	Model string // Ark endpoint/model id, required
}

var _ Provider = (*DoubaoProvider)(nil)

func (p *DoubaoProvider) Name() string { return "doubao" }

func (p *DoubaoProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("ARK_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ARK_API_KEY not set")
	}

	model := p.Model
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}
	if model == "" {
		return "", fmt.Errorf("llm: doubao provider requires an Ark endpoint/model id")
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
		return "", fmt.Errorf("llm: marshal doubao request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://ark.cn-beijing.volces.com/api/v3/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("llm: create doubao request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: doubao call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read doubao response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: doubao status %d: %s", resp.StatusCode, string(body))
	}

	var parsed localChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: unmarshal doubao response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: doubao returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

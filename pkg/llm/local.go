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

// LocalProvider is the "local" routing-table entry for simple-table items
// (5, 6, 7, 20 — spec.md §4.3 model routing). Generalized from the
// teacher's OpenAIProvider stub (pkg/core/llm/provider.go) into a real
// OpenAI-compatible chat-completions call against a local inference server
// (e.g. Ollama/vLLM), since simple fee-table extraction doesn't need a
// frontier model.
type LocalProvider struct {
	BaseURL string // defaults to http://localhost:11434/v1
	Model   string // defaults to "llama3.1"
}

var _ Provider = (*LocalProvider)(nil)

func (p *LocalProvider) Name() string { return "local" }

type localChatRequest struct {
	Model          string             `json:"model"`
	Messages       []deepseekMessage  `json:"messages"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat map[string]string  `json:"response_format"`
}

type localChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *LocalProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("LOCAL_LLM_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}

	model := p.Model
	if model == "" {
		model = "llama3.1"
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
		Temperature:    0.0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal local request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("llm: create local request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: local call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read local response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: local status %d: %s", resp.StatusCode, string(body))
	}

	var parsed localChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: unmarshal local response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: local provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

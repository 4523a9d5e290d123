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

// DeepSeekProvider adapts the teacher's pkg/core/llm/deepseek.go almost
// unchanged: the DeepSeek chat-completions wire format doesn't depend on
// the caller's domain.
type DeepSeekProvider struct{}

var _ Provider = (*DeepSeekProvider)(nil)

func (p *DeepSeekProvider) Name() string { return "deepseek" }

type deepseekMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type deepseekRequest struct {
	Messages       []deepseekMessage      `json:"messages"`
	Model          string                 `json:"model"`
	ResponseFormat map[string]string      `json:"response_format"`
	Temperature    float64                `json:"temperature"`
	TopP           float64                `json:"top_p"`
	MaxTokens      int                    `json:"max_tokens"`
	Stream         bool                   `json:"stream"`
}

type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY not set")
	}

	model := "deepseek-chat"
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := deepseekRequest{
		Messages: []deepseekMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Model:          model,
		ResponseFormat: map[string]string{"type": "json_object"},
		MaxTokens:      4096,
		Temperature:    0.1,
		TopP:           1.0,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal deepseek request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.deepseek.com/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("llm: create deepseek request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: deepseek call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read deepseek response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: deepseek status %d: %s", resp.StatusCode, string(body))
	}

	var parsed deepseekResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: unmarshal deepseek response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: deepseek returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

package embedding

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GenAIEmbedder uses google.golang.org/genai's text-embedding-004 model,
// the same SDK pkg/llm.GeminiProvider uses for chat completion (see
// pkg/llm/gemini.go, adapted from the teacher's pkg/core/llm/gemini.go).
type GenAIEmbedder struct {
	Model string // defaults to "text-embedding-004"
}

var _ Provider = (*GenAIEmbedder)(nil)

// Embed calls genai's EmbedContent with OutputDimensionality pinned to 384.
func (p *GenAIEmbedder) Embed(ctx context.Context, text string) ([384]float32, error) {
	var out [384]float32

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return out, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := p.Model
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return out, fmt.Errorf("embedding: create genai client: %w", err)
	}

	dims := int32(Dimensions)
	result, err := client.Models.EmbedContent(ctx, model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return out, fmt.Errorf("embedding: genai EmbedContent: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return out, fmt.Errorf("embedding: genai returned no embeddings")
	}

	vals := result.Embeddings[0].Values
	for i := 0; i < Dimensions && i < len(vals); i++ {
		out[i] = vals[i]
	}
	return out, nil
}

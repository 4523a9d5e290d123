package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenerativeAIEmbedder uses the older github.com/google/generative-ai-go SDK
// (the client pattern the teacher uses in pkg/core/debate/agents.go:
// genai.NewClient(ctx, option.WithAPIKey(apiKey))), selected via
// config.Embedding.Driver = "generativeai" as an alternative to GenAIEmbedder
// when the deployment is pinned to the older SDK.
type GenerativeAIEmbedder struct {
	Model string // defaults to "embedding-001"
}

var _ Provider = (*GenerativeAIEmbedder)(nil)

func (p *GenerativeAIEmbedder) Embed(ctx context.Context, text string) ([384]float32, error) {
	var out [384]float32

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return out, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return out, fmt.Errorf("embedding: create generative-ai client: %w", err)
	}
	defer client.Close()

	modelName := p.Model
	if modelName == "" {
		modelName = "embedding-001"
	}

	em := client.EmbeddingModel(modelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return out, fmt.Errorf("embedding: generative-ai EmbedContent: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return out, fmt.Errorf("embedding: generative-ai returned no embedding")
	}

	vals := res.Embedding.Values
	for i := 0; i < Dimensions && i < len(vals); i++ {
		out[i] = vals[i]
	}
	return out, nil
}

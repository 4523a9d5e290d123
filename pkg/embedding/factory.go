package embedding

import "fmt"

// New selects a Provider by driver name (config.Embedding.Driver): "genai"
// (default, google.golang.org/genai) or "generativeai"
// (github.com/google/generative-ai-go/genai).
func New(driver, model string) (Provider, error) {
	switch driver {
	case "", "genai":
		return &GenAIEmbedder{Model: model}, nil
	case "generativeai":
		return &GenerativeAIEmbedder{Model: model}, nil
	default:
		return nil, fmt.Errorf("embedding: unknown driver %q", driver)
	}
}

package ai

import "context"

// GeminiGenerator wraps GeminiClient with a fixed model for grounded
// text generation.
type GeminiGenerator struct {
	client *GeminiClient
	model  string
}

// NewGeminiGenerator builds a Gemini-based GroundedGenerator.
func NewGeminiGenerator(client *GeminiClient, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// GenerateGroundedText implements GroundedGenerator using Gemini.
func (g *GeminiGenerator) GenerateGroundedText(ctx context.Context, prompt string) (string, error) {
	return g.client.GenerateGroundedText(ctx, g.model, prompt)
}

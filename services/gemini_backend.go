package services

import (
	"context"
	"fmt"

	"github.com/itish2003/studysense/logger"
	"google.golang.org/genai"
)

// GeminiGenerator sends single-turn prompts to the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    logger.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, log logger.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, log: log}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, options ...GenerateOption) string {
	opts := resolveOptions(options)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokens),
	})
	if err != nil {
		g.log.Error("GEMINI", "generate content failed", map[string]interface{}{"model": g.model, "error": err})
		return fmt.Sprintf("Error: An unexpected error occurred: %v", err)
	}

	text := result.Text()
	if text == "" {
		return noResponseText
	}
	return text
}

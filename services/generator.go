package services

import "context"

// TextGenerator produces a completion for a prompt. It never returns an
// error: failures come back as human-readable text starting with "Error:",
// which the caller treats like any other completion.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, options ...GenerateOption) string
}

// GenerateOption sets sampling parameters for one call.
type GenerateOption func(*GenerateOptions)

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

func resolveOptions(options []GenerateOption) GenerateOptions {
	o := GenerateOptions{Temperature: 0.7, MaxTokens: 500}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

const noResponseText = "No response text found"

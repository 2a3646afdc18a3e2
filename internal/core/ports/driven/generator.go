package driven

import "context"

// GenerateOptions holds generation parameters.
type GenerateOptions struct {
	// System is an optional system prompt.
	System string

	// MaxTokens limits the response length (0 = model default).
	MaxTokens int

	// Temperature controls sampling randomness (0 = model default).
	Temperature float64

	// TopP controls nucleus sampling (0 = model default).
	TopP float64

	// StopWords stop generation when emitted.
	StopWords []string
}

// Generator produces text completions. It backs the LLM keyword
// extraction strategy, which treats every failure as best-effort:
// an unreachable generator yields zero keywords, never a pipeline error.
type Generator interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

package driven

import "context"

// LLMService is the opaque text-completion collaborator that turns a
// grounded prompt into an answer. It is consumed through a fixed
// prompt contract: one system instruction plus one user prompt.
type LLMService interface {
	// Generate produces a completion for the given prompts.
	// Failures surface as ServiceError and are never converted into
	// fallback answers by the adapter.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens bounds the completion length. Zero means the
	// adapter's default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

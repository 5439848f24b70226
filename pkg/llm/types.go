package llm

import "context"

// Client defines the completion-service boundary: a single synchronous,
// stateless prompt-to-text capability. Calls are blocking and single-shot;
// cancellation only happens through the caller's context.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the configured model.
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
}

// Config holds configuration for LLM clients.
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	BaseURL             string
	MaxCompletionTokens int
	Temperature         float64
}

package interfaces

import (
	"context"
)

// CompletionRequest carries one generation call to a provider. The
// System prompt and User prompt are kept separate because providers
// differ in how system instructions are attached.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the provider-neutral result of a generation call.
type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// LLMProvider defines a single chat-completion backend (OpenAI,
// Anthropic, Gemini). Implementations must map their vendor errors to
// the provider error sentinels in models so callers can classify
// failures without knowing the vendor.
type LLMProvider interface {
	// Name returns the provider identifier ("openai", "anthropic", "gemini")
	Name() string

	// Complete performs a single chat completion. Blocking; honors ctx
	// cancellation and deadline.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// EmbeddingService generates embedding vectors for index builds and
// query-time retrieval.
type EmbeddingService interface {
	// ModelName returns the embedding model this service calls.
	ModelName() string

	// Dimension returns the vector dimension the model produces.
	Dimension() int

	// EmbedBatch embeds texts in order. The returned slice is the same
	// length and order as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

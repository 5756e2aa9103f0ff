package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// ModelSpec describes one chat model the service can route to.
type ModelSpec struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	ContextWindow int    `json:"context_window"`
}

// modelTable is the closed set of supported chat models. Requests
// naming anything else are rejected up front.
var modelTable = []ModelSpec{
	{Name: "gpt-4.1", Provider: "openai", ContextWindow: 1_000_000},
	{Name: "claude-opus-4-5", Provider: "anthropic", ContextWindow: 200_000},
	{Name: "gemini-2.5-flash", Provider: "gemini", ContextWindow: 1_000_000},
}

// Registry routes model names to configured providers.
type Registry struct {
	providers map[string]interfaces.LLMProvider
	specs     map[string]ModelSpec
	logger    arbor.ILogger
}

// NewRegistry constructs providers for every backend with an API key
// configured. Models whose provider has no key remain listed but
// resolve to an error at call time.
func NewRegistry(cfg *common.Config, logger arbor.ILogger) (*Registry, error) {
	registry := &Registry{
		providers: make(map[string]interfaces.LLMProvider),
		specs:     make(map[string]ModelSpec),
		logger:    logger,
	}

	for _, spec := range modelTable {
		registry.specs[spec.Name] = spec
	}

	if cfg.OpenAI.APIKey != "" {
		svc, err := NewOpenAIService(&cfg.OpenAI, cfg.LLM.MaxRetries, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		registry.providers["openai"] = svc
	}

	if cfg.Claude.APIKey != "" {
		svc, err := NewClaudeService(&cfg.Claude, cfg.LLM.MaxRetries, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		registry.providers["anthropic"] = svc
	}

	if cfg.Gemini.APIKey != "" {
		svc, err := NewGeminiService(&cfg.Gemini, cfg.LLM.MaxRetries, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		registry.providers["gemini"] = svc
	}

	logger.Info().
		Int("models", len(registry.specs)).
		Int("providers", len(registry.providers)).
		Msg("LLM registry initialized")

	return registry, nil
}

// Models returns the supported model specs in table order
func (r *Registry) Models() []ModelSpec {
	out := make([]ModelSpec, len(modelTable))
	copy(out, modelTable)
	return out
}

// Spec returns the spec for a model name
func (r *Registry) Spec(modelName string) (ModelSpec, error) {
	spec, ok := r.specs[modelName]
	if !ok {
		return ModelSpec{}, fmt.Errorf("%w: unknown model %q", models.ErrInvalidRequest, modelName)
	}
	return spec, nil
}

// Resolve returns the spec and provider for a model name. Unknown
// models are invalid requests; known models without a configured
// provider key are provider failures.
func (r *Registry) Resolve(modelName string) (ModelSpec, interfaces.LLMProvider, error) {
	spec, err := r.Spec(modelName)
	if err != nil {
		return ModelSpec{}, nil, err
	}

	provider, ok := r.providers[spec.Provider]
	if !ok {
		return ModelSpec{}, nil, fmt.Errorf("%w: provider %s is not configured (missing API key)",
			models.ErrProviderFailed, spec.Provider)
	}

	return spec, provider, nil
}

package embeddings

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/services/llm"
)

// modelDimensions maps known embedding models to their vector size
var modelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
}

// Service implements EmbeddingService using the OpenAI embeddings API.
type Service struct {
	client    *openai.Client
	model     string
	dimension int
	retry     *llm.RetryConfig
	logger    arbor.ILogger
}

// NewService creates an embedding service for the configured model
func NewService(cfg *common.Config, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required for embeddings")
	}

	model := cfg.Indexing.EmbedModel
	dimension, ok := modelDimensions[model]
	if !ok {
		return nil, fmt.Errorf("unknown embedding model: %s", model)
	}

	return &Service{
		client:    openai.NewClient(cfg.OpenAI.APIKey),
		model:     model,
		dimension: dimension,
		retry:     llm.NewRetryConfig(cfg.Indexing.MaxRetries),
		logger:    logger,
	}, nil
}

// ModelName returns the embedding model this service calls
func (s *Service) ModelName() string {
	return s.model
}

// Dimension returns the vector dimension the model produces
func (s *Service) Dimension() int {
	return s.dimension
}

// EmbedBatch embeds texts in one API call, preserving input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	}

	start := time.Now()
	var resp openai.EmbeddingResponse
	err := llm.WithRetries(ctx, s.retry, s.logger, "openai-embeddings", func() error {
		var callErr error
		resp, callErr = s.client.CreateEmbeddings(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	// The API reports each vector's input position; order by it rather
	// than trusting response order.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index out of range: %d", item.Index)
		}
		if len(item.Embedding) != s.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(item.Embedding))
		}
		vectors[item.Index] = item.Embedding
	}

	s.logger.Debug().
		Int("texts", len(texts)).
		Int("dimension", s.dimension).
		Str("duration", time.Since(start).String()).
		Msg("Embedded batch")

	return vectors, nil
}

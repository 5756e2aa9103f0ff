package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
	"google.golang.org/genai"
)

// GeminiService implements LLMProvider using the Google Gemini API.
type GeminiService struct {
	client      *genai.Client
	temperature float32
	timeout     time.Duration
	retry       *RetryConfig
	logger      arbor.ILogger
}

// NewGeminiService creates a Gemini chat provider
func NewGeminiService(cfg *common.GeminiConfig, maxRetries int, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:      client,
		temperature: cfg.Temperature,
		timeout:     timeout,
		retry:       NewRetryConfig(maxRetries),
		logger:      logger,
	}, nil
}

// Name returns the provider identifier
func (s *GeminiService) Name() string {
	return "gemini"
}

// Complete performs a single chat completion
func (s *GeminiService) Complete(ctx context.Context, req interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	start := time.Now()
	var resp *genai.GenerateContentResponse
	err := WithRetries(ctx, s.retry, s.logger, "gemini", func() error {
		var callErr error
		resp, callErr = s.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genCfg)
		return callErr
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: gemini returned no text content", models.ErrProviderFailed)
	}

	inputTokens := 0
	outputTokens := 0
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	s.logger.Debug().
		Str("model", req.Model).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Str("duration", time.Since(start).String()).
		Msg("Gemini completion finished")

	return &interfaces.CompletionResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}

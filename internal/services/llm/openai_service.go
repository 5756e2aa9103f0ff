package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// OpenAIService implements LLMProvider using the OpenAI chat API.
type OpenAIService struct {
	client      *openai.Client
	temperature float32
	timeout     time.Duration
	retry       *RetryConfig
	logger      arbor.ILogger
}

// NewOpenAIService creates an OpenAI chat provider
func NewOpenAIService(cfg *common.OpenAIConfig, maxRetries int, logger arbor.ILogger) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &OpenAIService{
		client:      openai.NewClient(cfg.APIKey),
		temperature: cfg.Temperature,
		timeout:     timeout,
		retry:       NewRetryConfig(maxRetries),
		logger:      logger,
	}, nil
}

// Name returns the provider identifier
func (s *OpenAIService) Name() string {
	return "openai"
}

// Complete performs a single chat completion
func (s *OpenAIService) Complete(ctx context.Context, req interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	start := time.Now()
	var resp openai.ChatCompletionResponse
	err := WithRetries(ctx, s.retry, s.logger, "openai", func() error {
		var callErr error
		resp, callErr = s.client.CreateChatCompletion(ctx, chatReq)
		return callErr
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", models.ErrProviderFailed)
	}

	s.logger.Debug().
		Str("model", req.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("duration", time.Since(start).String()).
		Msg("OpenAI completion finished")

	return &interfaces.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// ClaudeService implements LLMProvider using the Anthropic Messages API.
type ClaudeService struct {
	client      *anthropic.Client
	maxTokens   int
	temperature float32
	timeout     time.Duration
	retry       *RetryConfig
	logger      arbor.ILogger
}

// NewClaudeService creates an Anthropic chat provider
func NewClaudeService(cfg *common.ClaudeConfig, maxRetries int, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	return &ClaudeService{
		client:      &client,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		retry:       NewRetryConfig(maxRetries),
		logger:      logger,
	}, nil
}

// Name returns the provider identifier
func (s *ClaudeService) Name() string {
	return "anthropic"
}

// Complete performs a single chat completion
func (s *ClaudeService) Complete(ctx context.Context, req interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	start := time.Now()
	var message *anthropic.Message
	err := WithRetries(ctx, s.retry, s.logger, "anthropic", func() error {
		var callErr error
		message, callErr = s.client.Messages.New(ctx, params)
		return callErr
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(textBlock.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: anthropic returned no text content", models.ErrProviderFailed)
	}

	s.logger.Debug().
		Str("model", req.Model).
		Int64("input_tokens", message.Usage.InputTokens).
		Int64("output_tokens", message.Usage.OutputTokens).
		Str("duration", time.Since(start).String()).
		Msg("Anthropic completion finished")

	return &interfaces.CompletionResponse{
		Text:         sb.String(),
		Model:        string(message.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

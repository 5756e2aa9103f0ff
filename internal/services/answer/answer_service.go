package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
	"github.com/voxlore/voxlore/internal/services/llm"
)

const (
	// outputReserve is held back from the model context window for the
	// generated answer.
	outputReserve = 8192

	// promptMargin absorbs message framing the token counter can't see
	promptMargin = 256

	// noContextMarker stands in for transcript context when the index
	// cannot serve a RAG request. The answer proceeds with a warning
	// instead of failing.
	noContextMarker = "# No transcript context available\nThe transcript index is not available for this question.\n\n"

	warnTruncated = "context truncated to fit the model window; oldest videos were dropped"
	warnNoContext = "no transcript context was available; the answer is not grounded in the corpus"
)

// ModelResolver maps a model name to its spec and the provider that
// serves it. *llm.Registry is the production implementation.
type ModelResolver interface {
	Resolve(modelName string) (llm.ModelSpec, interfaces.LLMProvider, error)
}

// Service orchestrates one question end to end: validate the request,
// assemble context for the chosen mode, route to the provider owning
// the requested model, and shape the reply.
type Service struct {
	registry       ModelResolver
	retriever      interfaces.RetrieverService
	assembler      interfaces.AssemblerService
	counter        interfaces.TokenCounter
	profile        string
	defaultModel   string
	requestTimeout time.Duration
	logger         arbor.ILogger
}

// NewService creates the answer orchestrator
func NewService(
	registry ModelResolver,
	retriever interfaces.RetrieverService,
	assembler interfaces.AssemblerService,
	counter interfaces.TokenCounter,
	config *common.Config,
	logger arbor.ILogger,
) interfaces.AnswerService {
	timeout, err := time.ParseDuration(config.LLM.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Service{
		registry:       registry,
		retriever:      retriever,
		assembler:      assembler,
		counter:        counter,
		profile:        config.Corpus.Profile,
		defaultModel:   config.LLM.DefaultModel,
		requestTimeout: timeout,
		logger:         logger,
	}
}

// Answer handles one question
func (s *Service) Answer(ctx context.Context, query *models.Query) (*models.Answer, error) {
	question := strings.TrimSpace(query.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", models.ErrInvalidRequest)
	}

	modelName := query.Model
	if modelName == "" {
		modelName = s.defaultModel
	}

	spec, provider, err := s.registry.Resolve(modelName)
	if err != nil {
		return nil, err
	}

	correlationID := uuid.NewString()
	system := systemPrompt(query.Tone, s.profile)

	budget := spec.ContextWindow - outputReserve - s.counter.Count(system) - s.counter.Count(question) - promptMargin
	if budget <= 0 {
		return nil, fmt.Errorf("%w: question leaves no room for context in model %s", models.ErrInvalidRequest, spec.Name)
	}

	assembled, warning, err := s.assembleContext(ctx, query, question, budget)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("correlation_id", correlationID).
		Str("model", spec.Name).
		Str("mode", string(query.Mode)).
		Str("tone", string(query.Tone)).
		Int("context_tokens", assembled.TokensUsed).
		Int("cited_records", len(assembled.CitedRecordIDs)).
		Msg("Dispatching question to provider")

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := provider.Complete(callCtx, interfaces.CompletionRequest{
		Model:  spec.Name,
		System: system,
		Prompt: userPrompt(assembled.Text, question),
	})
	if err != nil {
		s.logger.Error().
			Str("correlation_id", correlationID).
			Str("model", spec.Name).
			Err(err).
			Msg("Provider call failed")
		return nil, err
	}

	s.logger.Info().
		Str("correlation_id", correlationID).
		Str("model", spec.Name).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("Answer generated")

	return &models.Answer{
		Text:             resp.Text,
		Model:            spec.Name,
		Mode:             query.Mode,
		Tone:             query.Tone,
		Provider:         spec.Provider,
		CitedRecordIDs:   assembled.CitedRecordIDs,
		ContextTruncated: assembled.Truncated,
		Warning:          warning,
	}, nil
}

// assembleContext builds the transcript context for the query's mode.
// An unavailable index degrades a RAG request to the no-context marker
// rather than failing the question.
func (s *Service) assembleContext(ctx context.Context, query *models.Query, question string, budget int) (*interfaces.AssembledContext, string, error) {
	switch query.Mode {
	case models.ModeRAG:
		retrieved, err := s.retriever.Retrieve(ctx, question, query.TopK)
		if err != nil {
			if errors.Is(err, models.ErrIndexUnavailable) {
				s.logger.Warn().Err(err).Msg("Index unavailable, answering without context")
				return s.noContext(), warnNoContext, nil
			}
			return nil, "", err
		}

		assembled, err := s.assembler.AssembleRAG(ctx, retrieved, budget)
		if err != nil {
			if errors.Is(err, models.ErrIndexUnavailable) {
				s.logger.Warn().Err(err).Msg("Assembly found no usable chunks, answering without context")
				return s.noContext(), warnNoContext, nil
			}
			return nil, "", err
		}
		if assembled.Truncated {
			return assembled, warnTruncated, nil
		}
		return assembled, "", nil

	default:
		assembled, err := s.assembler.AssembleFull(ctx, budget)
		if err != nil {
			return nil, "", err
		}
		if assembled.Truncated {
			return assembled, warnTruncated, nil
		}
		return assembled, "", nil
	}
}

func (s *Service) noContext() *interfaces.AssembledContext {
	return &interfaces.AssembledContext{
		Text:       noContextMarker,
		TokensUsed: s.counter.Count(noContextMarker),
	}
}

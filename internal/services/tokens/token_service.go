package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/interfaces"
)

const (
	// PrimaryEncoding covers the current OpenAI model generation
	PrimaryEncoding = "o200k_base"

	// FallbackEncoding is used when the primary encoding is unavailable
	FallbackEncoding = "cl100k_base"
)

// Service counts tokens with tiktoken. One encoding is resolved at
// construction and used for the process lifetime, so all stored counts
// stay comparable.
type Service struct {
	encoding *tiktoken.Tiktoken
	name     string
	logger   arbor.ILogger
}

// NewService resolves the tokenizer encoding, preferring o200k_base
// and falling back to cl100k_base.
func NewService(logger arbor.ILogger) (interfaces.TokenCounter, error) {
	encoding, err := tiktoken.GetEncoding(PrimaryEncoding)
	if err == nil {
		return &Service{encoding: encoding, name: PrimaryEncoding, logger: logger}, nil
	}

	logger.Warn().
		Err(err).
		Str("encoding", PrimaryEncoding).
		Str("fallback", FallbackEncoding).
		Msg("Primary tokenizer encoding unavailable, falling back")

	encoding, err = tiktoken.GetEncoding(FallbackEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer encoding: %w", err)
	}

	return &Service{encoding: encoding, name: FallbackEncoding, logger: logger}, nil
}

// Count returns the token count of text under the resolved encoding
func (s *Service) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(s.encoding.Encode(text, nil, nil))
}

// EncodingName returns the tokenizer encoding in use
func (s *Service) EncodingName() string {
	return s.name
}

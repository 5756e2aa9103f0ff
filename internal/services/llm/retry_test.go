package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", errors.New("API error: status 429"), true},
		{"gemini quota", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), true},
		{"openai style", errors.New("rate_limit_exceeded: too many requests"), true},
		{"spelled out", errors.New("rate limit reached for gpt-4.1"), true},
		{"quota", errors.New("quota exceeded for this project"), true},
		{"timeout", errors.New("context deadline exceeded"), false},
		{"auth", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 500", errors.New("API error: status 500 Internal Server Error"), true},
		{"http 502", errors.New("502 Bad Gateway"), true},
		{"http 503", errors.New("503 Service Unavailable"), true},
		{"anthropic overloaded", errors.New("overloaded_error: Overloaded"), true},
		{"dropped connection", errors.New("read tcp: connection reset by peer"), true},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"auth", errors.New("invalid api key"), false},
		{"bad request", errors.New("400 Bad Request: unknown field"), false},
		{"not found", errors.New("404 model not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewRetryConfig(t *testing.T) {
	if got := NewRetryConfig(7).MaxRetries; got != 7 {
		t.Errorf("configured attempts: got %d, want 7", got)
	}
	if got := NewRetryConfig(0).MaxRetries; got != DefaultMaxRetries {
		t.Errorf("zero falls back to default: got %d, want %d", got, DefaultMaxRetries)
	}
	if got := NewRetryConfig(-2).MaxRetries; got != DefaultMaxRetries {
		t.Errorf("negative falls back to default: got %d, want %d", got, DefaultMaxRetries)
	}
	if got := NewRetryConfig(7).InitialBackoff; got != DefaultInitialBackoff {
		t.Errorf("backoff curve stays at defaults: got %v, want %v", got, DefaultInitialBackoff)
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"no delay", errors.New("rate limit reached"), 0},
		{"please retry", errors.New("Rate limit reached. Please retry in 20s."), 20 * time.Second},
		{"fractional", errors.New("Please retry in 1.5s"), 1500 * time.Millisecond},
		{"retryDelay field", errors.New(`details: retryDelay: 37s`), 37 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRetryDelay(tt.err); got != tt.want {
				t.Errorf("ExtractRetryDelay(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	if got := cfg.CalculateBackoff(0, 0); got != DefaultInitialBackoff {
		t.Errorf("attempt 0: got %v, want %v", got, DefaultInitialBackoff)
	}
	if got := cfg.CalculateBackoff(1, 0); got != 2*DefaultInitialBackoff {
		t.Errorf("attempt 1: got %v, want %v", got, 2*DefaultInitialBackoff)
	}

	// API-suggested delay plus buffer takes over as the base
	if got := cfg.CalculateBackoff(0, 20*time.Second); got != 25*time.Second {
		t.Errorf("api delay: got %v, want 25s", got)
	}

	// Never exceeds the cap
	if got := cfg.CalculateBackoff(10, 0); got != DefaultMaxBackoff {
		t.Errorf("large attempt: got %v, want cap %v", got, DefaultMaxBackoff)
	}
}

func TestWithRetriesStopsOnPermanentError(t *testing.T) {
	cfg := NewDefaultRetryConfig()
	calls := 0
	permanent := errors.New("invalid api key")

	err := WithRetries(context.Background(), cfg, arbor.NewLogger(), "test", func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not retry, got %d calls", calls)
	}
}

func TestWithRetriesRecoversFromServerError(t *testing.T) {
	cfg := &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	calls := 0

	// One transient 500 must not fail the batch outright
	err := WithRetries(context.Background(), cfg, arbor.NewLogger(), "test", func() error {
		calls++
		if calls == 1 {
			return errors.New("API error: status 500 Internal Server Error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected recovery after transient server error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetriesSucceedsFirstTry(t *testing.T) {
	cfg := NewDefaultRetryConfig()
	calls := 0

	err := WithRetries(context.Background(), cfg, arbor.NewLogger(), "test", func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetriesRecoversFromRateLimit(t *testing.T) {
	cfg := &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	calls := 0

	err := WithRetries(context.Background(), cfg, arbor.NewLogger(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetriesHonorsContext(t *testing.T) {
	cfg := &RetryConfig{
		MaxRetries:        5,
		InitialBackoff:    time.Minute,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetries(ctx, cfg, arbor.NewLogger(), "test", func() error {
		return errors.New("429 too many requests")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

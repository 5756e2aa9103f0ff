package models

import (
	"fmt"
	"strings"
)

// Mode selects how the answer context is built.
type Mode string

const (
	// ModeFull feeds the entire corpus as context.
	ModeFull Mode = "full"
	// ModeRAG retrieves the top-k relevant records via the embedding index.
	ModeRAG Mode = "rag"
)

// ParseMode validates a mode string. An empty value defaults to ModeFull.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ModeFull, nil
	case ModeFull:
		return ModeFull, nil
	case ModeRAG:
		return ModeRAG, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

// Tone selects one of the fixed prompt-style instructions. There are exactly
// two recognized tones; free-form tone text is rejected at the API boundary.
type Tone string

const (
	// ToneCreator answers in the creator's own voice.
	ToneCreator Tone = "creator"
	// ToneAnalyst answers as a neutral content strategy analyst.
	ToneAnalyst Tone = "analyst"
)

// ParseTone validates a tone string. An empty value defaults to ToneCreator.
func ParseTone(s string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ToneCreator, nil
	case ToneCreator:
		return ToneCreator, nil
	case ToneAnalyst:
		return ToneAnalyst, nil
	default:
		return "", fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, s)
	}
}

// Query is a single answer request. Transient; never persisted.
type Query struct {
	Question string
	Mode     Mode
	Model    string
	Tone     Tone
	TopK     int
}

// RetrievedRecord is one ranked retrieval result, already deduplicated to the
// best-scoring chunk per record.
type RetrievedRecord struct {
	RecordID string  `json:"record_id"`
	ChunkID  string  `json:"chunk_id"`
	Score    float64 `json:"score"`
}

// Answer is the normalized result of a completed answer request.
type Answer struct {
	Text             string   `json:"answer"`
	Model            string   `json:"model"`
	Mode             Mode     `json:"mode"`
	Tone             Tone     `json:"tone"`
	Provider         string   `json:"provider"`
	CitedRecordIDs   []string `json:"cited_record_ids,omitempty"`
	ContextTruncated bool     `json:"context_truncated,omitempty"`
	Warning          string   `json:"warning,omitempty"`
}

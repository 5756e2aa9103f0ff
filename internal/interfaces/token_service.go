package interfaces

// TokenCounter counts tokens under a fixed encoding. Counts are made
// once at ingest and stored, so every later budget decision reuses the
// same numbers.
type TokenCounter interface {
	// Count returns the token count of text under the counter's encoding.
	Count(text string) int

	// EncodingName returns the tokenizer encoding in use.
	EncodingName() string
}

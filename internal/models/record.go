package models

import (
	"fmt"
	"time"
)

// Record represents one corpus item: the transcript and captions of a single
// short video, normalized at ingest time. Records are immutable once written;
// a re-ingest replaces the whole set rather than patching individual fields.
type Record struct {
	ID         string            `json:"id" badgerhold:"key"`
	Title      string            `json:"title"`
	Transcript string            `json:"transcript"`
	Captions   string            `json:"captions"`
	SourceText string            `json:"source_text"`
	URL        string            `json:"url"`
	Timestamp  int64             `json:"timestamp"`
	Stats      map[string]int64  `json:"stats,omitempty"`
	TokenCount int               `json:"token_count"`
	CreatedAt  time.Time         `json:"created_at"`
}

// BuildSourceText joins title, transcript and captions in that fixed
// precedence order, skipping empty parts. Token counts are computed over
// exactly this text, so the join must stay stable across ingest runs.
func BuildSourceText(title, transcript, captions string) string {
	text := ""
	for _, part := range []string{title, transcript, captions} {
		if part == "" {
			continue
		}
		if text != "" {
			text += "\n\n"
		}
		text += part
	}
	return text
}

// Chunk is a retrieval-sized slice of a Record's source text. The ChunkID is
// a deterministic function of the record ID and byte offset so that
// re-chunking an unchanged record yields identical IDs.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	RecordID   string `json:"record_id"`
	Text       string `json:"text"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	TokenCount int    `json:"token_count"`
}

// ChunkID derives the stable identifier for a chunk of the given record at
// the given byte offset.
func ChunkID(recordID string, offset int) string {
	return fmt.Sprintf("%s:%d", recordID, offset)
}

// IndexEntry pairs a chunk with its embedding vector inside a snapshot.
type IndexEntry struct {
	ChunkID   string    `json:"chunk_id"`
	RecordID  string    `json:"record_id"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexSnapshot is an immutable embedding index for one embedding model.
// A rebuild produces a new snapshot that atomically replaces the previous
// one; entries are never mutated in place.
type IndexSnapshot struct {
	ModelName string       `json:"model_name"`
	Dimension int          `json:"dimension"`
	Entries   []IndexEntry `json:"entries"`
	BuiltAt   time.Time    `json:"built_at"`
}

// Empty reports whether the snapshot has no queryable entries.
func (s *IndexSnapshot) Empty() bool {
	return s == nil || len(s.Entries) == 0
}

// ChunkIDs returns the set of chunk IDs present in the snapshot. Used by the
// index builder to compute the incremental difference.
func (s *IndexSnapshot) ChunkIDs() map[string]struct{} {
	if s == nil {
		return map[string]struct{}{}
	}
	ids := make(map[string]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		ids[e.ChunkID] = struct{}{}
	}
	return ids
}

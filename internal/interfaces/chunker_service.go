package interfaces

import (
	"github.com/voxlore/voxlore/internal/models"
)

// ChunkerService splits a record's source text into bounded,
// overlapping chunks with deterministic IDs. Chunking the same record
// twice yields identical chunks.
type ChunkerService interface {
	ChunkRecord(record *models.Record) []models.Chunk
}

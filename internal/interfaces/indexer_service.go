package interfaces

import (
	"context"

	"github.com/voxlore/voxlore/internal/models"
)

// BuildReport summarizes one index build pass.
type BuildReport struct {
	TotalChunks    int   `json:"total_chunks"`
	EmbeddedNew    int   `json:"embedded_new"`
	ReusedExisting int   `json:"reused_existing"`
	Removed        int   `json:"removed"`
	Failed         int   `json:"failed"`
	DurationMs     int64 `json:"duration_ms"`
}

// IndexerService builds the embedding index incrementally: chunks
// already present in the current snapshot are carried over without
// re-embedding, chunks whose records vanished are dropped, and only
// new chunks hit the embedding API.
type IndexerService interface {
	// Build runs one build pass and returns the published snapshot
	// along with a report. A failed-chunk fraction above the configured
	// threshold fails the build and leaves the previous snapshot live.
	Build(ctx context.Context) (*models.IndexSnapshot, *BuildReport, error)
}

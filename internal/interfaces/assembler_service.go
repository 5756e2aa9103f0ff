package interfaces

import (
	"context"

	"github.com/voxlore/voxlore/internal/models"
)

// AssembledContext is the transcript context handed to a provider,
// with the records it cites and the token cost it consumed.
type AssembledContext struct {
	Text           string
	CitedRecordIDs []string
	TokensUsed     int
	Truncated      bool
}

// AssemblerService builds the transcript context block for a question
// under a token budget. Full mode walks the whole corpus newest-first;
// RAG mode walks retrieved records in score order.
type AssemblerService interface {
	AssembleFull(ctx context.Context, budget int) (*AssembledContext, error)
	AssembleRAG(ctx context.Context, retrieved []models.RetrievedRecord, budget int) (*AssembledContext, error)
}

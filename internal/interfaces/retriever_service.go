package interfaces

import (
	"context"

	"github.com/voxlore/voxlore/internal/models"
)

// RetrieverService ranks corpus records against a question using the
// hybrid blend of embedding similarity and lexical overlap. Results
// are deterministic for a fixed snapshot and query.
type RetrieverService interface {
	Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievedRecord, error)
}

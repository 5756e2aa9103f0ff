package interfaces

import (
	"context"

	"github.com/voxlore/voxlore/internal/models"
)

// AnswerService orchestrates one question: validate, assemble context
// (full corpus or retrieved subset), select the provider for the
// requested model, and return the generated answer.
type AnswerService interface {
	Answer(ctx context.Context, query *models.Query) (*models.Answer, error)
}

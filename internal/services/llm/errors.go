package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/voxlore/voxlore/internal/models"
)

// classifyProviderError maps a vendor SDK error onto the provider error
// sentinels so callers can branch on kind without importing the SDK.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", models.ErrProviderTimeout, err)
	case IsRateLimitError(err):
		return fmt.Errorf("%w: %v", models.ErrProviderRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", models.ErrProviderFailed, err)
	}
}

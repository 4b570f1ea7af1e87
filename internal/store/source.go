package store

import (
	"context"

	"sales-dashboard/internal/models"
)

// Source loads the immutable order dataset exactly once at startup.
// Implementations fail loudly: a missing file, a missing column, or a cell
// that does not parse aborts the load rather than producing a partial
// dataset.
type Source interface {
	Load(ctx context.Context) ([]models.Order, error)
}

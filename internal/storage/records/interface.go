package records

import (
	"context"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

// Repository describes operations on the local mirror of remote records.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a record or fully overwrites the existing one by id.
	Upsert(ctx context.Context, r *models.Record) error

	// GetAll returns the whole mirror.
	GetAll(ctx context.Context) ([]models.Record, error)

	// GetByID returns one record, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Record, error)

	// GetByUsername looks a record up through the unique username index,
	// or returns common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.Record, error)

	// Count returns the number of mirrored records.
	Count(ctx context.Context) (int, error)
}

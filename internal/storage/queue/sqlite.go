// Package queue stores mutations attempted while offline until they can be
// replayed against the remote endpoint.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/dbx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

// Repository describes the offline mutation queue. Entries are immutable
// once written; there is no partial removal, only a wholesale Clear.
type Repository interface {
	// Enqueue appends one mutation.
	Enqueue(ctx context.Context, m *models.QueuedMutation) error

	// List returns all entries in enqueue order.
	List(ctx context.Context) ([]models.QueuedMutation, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, m *models.QueuedMutation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO offline_queue (key, action, payload, created_at) VALUES (?, ?, ?, ?)`,
		m.Key, string(m.Action), []byte(m.Payload), m.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.QueuedMutation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, action, payload, created_at FROM offline_queue ORDER BY created_at, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue: %w", err)
	}
	defer rows.Close()

	var result []models.QueuedMutation
	for rows.Next() {
		var item models.QueuedMutation
		var action string
		var payload []byte
		var created int64
		if err := rows.Scan(&item.Key, &action, &payload, &created); err != nil {
			return nil, err
		}
		item.Action = models.Action(action)
		item.Payload = json.RawMessage(payload)
		item.Timestamp = time.Unix(0, created)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM offline_queue`)
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

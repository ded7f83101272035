// Package status stores the sync status singleton.
package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/dbx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

// Repository describes access to the sync status singleton row.
type Repository interface {
	// Get returns the singleton, or common.ErrNotFound before the first Set.
	Get(ctx context.Context) (*models.SyncStatus, error)

	// Set overwrites the singleton.
	Set(ctx context.Context, s *models.SyncStatus) error

	// Seed writes the singleton only if it does not exist yet.
	Seed(ctx context.Context, s *models.SyncStatus) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.SyncStatus, error) {
	var lastSync int64
	var total int
	var online int
	err := r.db.QueryRowContext(ctx,
		`SELECT last_sync, total_records, is_online FROM sync_status WHERE id = ?`,
		common.SyncStatusKey).Scan(&lastSync, &total, &online)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	st := &models.SyncStatus{
		TotalRecords: total,
		IsOnline:     online != 0,
	}
	// 0 marks "never synced" and maps back to the zero time
	if lastSync != 0 {
		st.LastSync = time.UnixMilli(lastSync)
	}
	return st, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, s *models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_status (id, last_sync, total_records, is_online) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_sync = excluded.last_sync,
			total_records = excluded.total_records,
			is_online = excluded.is_online
	`, common.SyncStatusKey, millis(s.LastSync), s.TotalRecords, boolToInt(s.IsOnline))
	if err != nil {
		return fmt.Errorf("failed to set sync status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Seed(ctx context.Context, s *models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sync_status (id, last_sync, total_records, is_online) VALUES (?, ?, ?, ?)
	`, common.SyncStatusKey, millis(s.LastSync), s.TotalRecords, boolToInt(s.IsOnline))
	if err != nil {
		return fmt.Errorf("failed to seed sync status: %w", err)
	}
	return nil
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

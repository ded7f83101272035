// Package storage owns the durable local state: the record mirror, the sync
// status singleton, and the offline mutation queue. It is the only component
// that touches the database; the orchestrator and services go through it.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/dbx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/migrations"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/storage/queue"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/storage/records"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/storage/status"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store is the handle to the local database. Every method fails with
// common.ErrNotInitialized until Open has succeeded.
type Store struct {
	db *sql.DB

	records records.Repository
	status  status.Repository
	queue   queue.Repository

	now func() time.Time
}

// runMigrations applies the embedded goose scripts, creating or upgrading
// the schema as needed. Goose's version table carries the schema version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the database at dsn, migrates the schema, and
// seeds the sync status singleton with the given connectivity state, a zero
// count and a zero last-sync time if it does not exist yet. Open is idempotent: re-opening an
// existing database only re-checks the schema version. Failures here mean
// the platform denied access and wrap common.ErrStorageUnavailable.
func Open(ctx context.Context, dsn string, online bool) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	// modernc's driver mislikes concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	s := &Store{
		db:      db,
		records: records.NewSQLiteRepository(db),
		status:  status.NewSQLiteRepository(db),
		queue:   queue.NewSQLiteRepository(db),
		now:     time.Now,
	}

	// a zero LastSync marks a mirror that has never completed a pull
	seed := &models.SyncStatus{TotalRecords: 0, IsOnline: online}
	if err := s.status.Seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return s, nil
}

// Close releases the underlying database handle. Subsequent calls on the
// store fail with common.ErrNotInitialized.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return common.ErrNotInitialized
	}
	return nil
}

// SaveRecords bulk-upserts the given records with overwrite-by-id semantics.
// The batch is atomic: either every record is written or none is.
func (s *Store) SaveRecords(ctx context.Context, recs []models.Record) error {
	if err := s.ready(); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := records.NewSQLiteRepository(tx)
		for i := range recs {
			if err := repo.Upsert(ctx, &recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetAll(ctx context.Context) ([]models.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.records.GetAll(ctx)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.records.GetByID(ctx, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*models.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.records.GetByUsername(ctx, username)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.records.Count(ctx)
}

// UpdateSyncStatus overwrites the status singleton with the outcome of a
// sync attempt.
func (s *Store) UpdateSyncStatus(ctx context.Context, count int, online bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.status.Set(ctx, &models.SyncStatus{
		LastSync:     s.now(),
		TotalRecords: count,
		IsOnline:     online,
	})
}

func (s *Store) GetSyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.status.Get(ctx)
}

// Enqueue records a mutation attempted while offline. The payload is
// marshaled to JSON; the key encodes action and enqueue time so order stays
// recoverable.
func (s *Store) Enqueue(ctx context.Context, action models.Action, payload any) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !action.Valid() {
		return fmt.Errorf("unknown mutation action %q", action)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation payload: %w", err)
	}
	ts := s.now()
	return s.queue.Enqueue(ctx, &models.QueuedMutation{
		Key:       models.MutationKey(action, ts),
		Action:    action,
		Payload:   data,
		Timestamp: ts,
	})
}

// Drain returns the queued mutations in enqueue order. It does not remove
// them; the caller clears the queue wholesale once a replay pass finishes.
func (s *Store) Drain(ctx context.Context) ([]models.QueuedMutation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queue.List(ctx)
}

func (s *Store) ClearQueue(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.queue.Clear(ctx)
}

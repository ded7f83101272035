// Package records stores the local mirror of the remote record set.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/dbx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts a record by id. On conflict the whole row is overwritten;
// there is no field-level merge. A duplicate username on a different id
// fails with common.ErrConstraintViolation.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (id, username, password_hash, first_name, last_name, email)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET username = excluded.username,
				password_hash = excluded.password_hash,
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				email = excluded.email
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Username, rec.PasswordHash, rec.FirstName, rec.LastName, rec.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q already exists", common.ErrConstraintViolation, rec.Username)
		}
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// GetAll lists the whole mirror ordered by id.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	query := `SELECT id, username, password_hash, first_name, last_name, email FROM records ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var item models.Record
		if err := rows.Scan(&item.ID, &item.Username, &item.PasswordHash, &item.FirstName, &item.LastName, &item.Email); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	query := `SELECT id, username, password_hash, first_name, last_name, email FROM records WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.Record, error) {
	query := `SELECT id, username, password_hash, first_name, last_name, email FROM records WHERE username = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*models.Record, error) {
	rec := &models.Record{}
	err := row.Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &rec.FirstName, &rec.LastName, &rec.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

// isUniqueViolation matches sqlite unique-index failures by message; the
// driver does not export a stable error type for them.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package records

import (
	"context"
	"database/sql"
	"testing"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE records (
  id            INTEGER PRIMARY KEY,
  username      TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name    TEXT NOT NULL,
  last_name     TEXT NOT NULL DEFAULT '',
  email         TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_records_username ON records (username);
`)
	require.NoError(t, err)

	return db
}

func alice() *models.Record {
	return &models.Record{ID: 1, Username: "alice", PasswordHash: "$2a$x", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com"}
}

func TestUpsert_InsertAndOverwrite(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, alice()))

	// same id overwrites every field
	changed := alice()
	changed.Email = "new@example.com"
	changed.LastName = "Jones"
	require.NoError(t, r.Upsert(ctx, changed))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "Jones", got.LastName)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsert_DuplicateUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, alice()))

	dup := alice()
	dup.ID = 2 // different id, same username
	err := r.Upsert(ctx, dup)
	assert.ErrorIs(t, err, common.ErrConstraintViolation)
}

func TestGetByUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, alice()))

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ID)

	_, err = r.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_OrderedByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	b := &models.Record{ID: 2, Username: "bob", PasswordHash: "h", FirstName: "Bob", Email: "b@example.com"}
	require.NoError(t, r.Upsert(ctx, b))
	require.NoError(t, r.Upsert(ctx, alice()))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)
}

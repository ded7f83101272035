package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

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
CREATE TABLE offline_queue (
  key        TEXT PRIMARY KEY,
  action     TEXT NOT NULL,
  payload    BLOB NOT NULL,
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func mutation(action models.Action, ts time.Time, payload string) *models.QueuedMutation {
	return &models.QueuedMutation{
		Key:       models.MutationKey(action, ts),
		Action:    action,
		Payload:   json.RawMessage(payload),
		Timestamp: ts,
	}
}

func TestList_PreservesEnqueueOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	t0 := time.Unix(100, 0)
	require.NoError(t, r.Enqueue(ctx, mutation(models.ActionCreate, t0, `{"id":1}`)))
	require.NoError(t, r.Enqueue(ctx, mutation(models.ActionUpdate, t0.Add(time.Second), `{"id":1}`)))
	require.NoError(t, r.Enqueue(ctx, mutation(models.ActionDelete, t0.Add(2*time.Second), `{"id":1}`)))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.ActionCreate, got[0].Action)
	assert.Equal(t, models.ActionUpdate, got[1].Action)
	assert.Equal(t, models.ActionDelete, got[2].Action)
	assert.Equal(t, t0.Add(time.Second).UnixNano(), got[1].Timestamp.UnixNano())
}

func TestClear_RemovesEverything(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, mutation(models.ActionCreate, time.Unix(1, 0), `{}`)))
	require.NoError(t, r.Enqueue(ctx, mutation(models.ActionDelete, time.Unix(2, 0), `{}`)))
	require.NoError(t, r.Clear(ctx))

	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnqueue_DuplicateKeyFails(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	m := mutation(models.ActionCreate, time.Unix(1, 0), `{}`)
	require.NoError(t, r.Enqueue(ctx, m))
	assert.Error(t, r.Enqueue(ctx, m))
}

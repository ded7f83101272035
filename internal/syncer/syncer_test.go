package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/netx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves canned pages and records mutation calls.
type fakeClient struct {
	mu sync.Mutex

	pages    [][]models.User // served in order; exhausted -> empty page
	perPage  int             // if >0, serve this many records per page forever
	fetchErr error
	block    chan struct{} // if set, FetchPage waits on it

	fetchCalls int
	created    []models.User
	updated    []models.User
	deleted    []int64
	createErr  error
}

func (f *fakeClient) FetchPage(ctx context.Context, resource string, page int) ([]models.User, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.perPage > 0 {
		users := make([]models.User, f.perPage)
		for i := range users {
			id := int64((page-1)*f.perPage + i + 1)
			users[i] = models.User{ID: id, Username: username(id), Name: "U Ser", Email: "u@example.com"}
		}
		return users, nil
	}
	if page-1 < len(f.pages) {
		return f.pages[page-1], nil
	}
	return nil, nil
}

// calls reads the fetch counter under the lock; needed when Run polls in the
// background.
func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func username(id int64) string {
	return "user" + strconv.FormatInt(id, 10)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	return nil, nil
}

func (f *fakeClient) CreateUser(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeClient) UpdateUser(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, user)
	return nil
}

func (f *fakeClient) DeleteUser(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "mirror.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func page(ids ...int64) []models.User {
	users := make([]models.User, len(ids))
	for i, id := range ids {
		users[i] = models.User{ID: id, Username: username(id), Name: "First Last", Email: "x@example.com"}
	}
	return users
}

func TestStartSync_EmptyPageTerminates(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	client := &fakeClient{pages: [][]models.User{
		page(1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		page(11, 12, 13, 14, 15, 16, 17, 18, 19, 20),
		nil, // empty third page ends the loop
	}}

	s := New(store, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())
	s.StartSync(ctx)

	assert.Equal(t, 3, client.fetchCalls)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 20)

	st, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, st.TotalRecords)
	assert.True(t, st.IsOnline)

	assert.Equal(t, StateCompleted, s.Status().State)
	assert.Equal(t, 20, s.Status().TotalRecords)
}

func TestStartSync_StopsAtBounds(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	// remote serves 20 records per page forever
	client := &fakeClient{perPage: 20}

	s := New(store, client, netx.StaticProbe(true), Options{MaxPages: 3, MaxRecords: 50}, logging.NewNopLogger())
	s.StartSync(ctx)

	// page 3 crosses MaxRecords; the loop must stop there, keeping the
	// crossing page whole
	assert.Equal(t, 3, client.fetchCalls)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, n)
}

func TestStartSync_MaxRecordsStopsBeforeMaxPages(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	client := &fakeClient{perPage: 30}

	s := New(store, client, netx.StaticProbe(true), Options{MaxPages: 10, MaxRecords: 50}, logging.NewNopLogger())
	s.StartSync(ctx)

	assert.Equal(t, 2, client.fetchCalls)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, n)
}

func TestStartSync_OfflineServesCache(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SaveRecords(ctx, []models.Record{
		{ID: 1, Username: "alice", PasswordHash: "h", FirstName: "Alice", Email: "a@example.com"},
	}))

	client := &fakeClient{perPage: 5}
	s := New(store, client, netx.StaticProbe(false), Options{}, logging.NewNopLogger())
	s.StartSync(ctx)

	// no network attempt was made
	assert.Zero(t, client.fetchCalls)

	st, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalRecords)
	assert.False(t, st.IsOnline)

	assert.Equal(t, StateDegraded, s.Status().State)
}

func TestStartSync_FailureFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SaveRecords(ctx, []models.Record{
		{ID: 1, Username: "alice", PasswordHash: "h", FirstName: "Alice", Email: "a@example.com"},
	}))

	boom := errors.New("connection reset")
	client := &fakeClient{fetchErr: boom}

	s := New(store, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())
	s.StartSync(ctx) // must not panic or surface the error

	st, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalRecords)
	assert.False(t, st.IsOnline)

	status := s.Status()
	assert.Equal(t, StateDegraded, status.State)
	assert.ErrorIs(t, status.Err, boom)
}

func TestStartSync_ReentrantCallIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	block := make(chan struct{})
	client := &fakeClient{pages: [][]models.User{page(1)}, block: block}

	s := New(store, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.StartSync(ctx)
	}()

	// wait for the first pass to take the guard
	require.Eventually(t, func() bool { return s.Status().IsSyncing }, time.Second, time.Millisecond)

	before, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)

	s.StartSync(ctx) // second call returns immediately

	after, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	close(block)
	<-done
	assert.Equal(t, StateCompleted, s.Status().State)
}

func TestStartSync_ReplaysQueueInOrder(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Enqueue(ctx, models.ActionCreate, models.User{ID: 5, Username: "eve", Name: "Eve X", Email: "e@example.com"}))
	require.NoError(t, store.Enqueue(ctx, models.ActionUpdate, models.User{ID: 5, Username: "eve", Name: "Eve Y", Email: "e@example.com"}))
	require.NoError(t, store.Enqueue(ctx, models.ActionDelete, models.DeleteRef{ID: 5}))

	client := &fakeClient{pages: [][]models.User{page(1)}}
	s := New(store, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())
	s.StartSync(ctx)

	require.Len(t, client.created, 1)
	require.Len(t, client.updated, 1)
	require.Equal(t, []int64{5}, client.deleted)
	assert.Equal(t, "Eve X", client.created[0].Name)
	assert.Equal(t, "Eve Y", client.updated[0].Name)

	queued, err := store.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, queued)
}

func TestReplay_SkipsFailingEntriesAndClears(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Enqueue(ctx, models.ActionCreate, models.User{ID: 1, Username: "a", Name: "A", Email: "a@example.com"}))
	require.NoError(t, store.Enqueue(ctx, models.ActionDelete, models.DeleteRef{ID: 2}))

	client := &fakeClient{pages: [][]models.User{page(1)}, createErr: errors.New("rejected")}
	s := New(store, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())
	s.StartSync(ctx)

	// the failing create is skipped, the delete still goes out, and the
	// queue is cleared wholesale
	assert.Empty(t, client.created)
	assert.Equal(t, []int64{2}, client.deleted)

	queued, err := store.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, queued)

	assert.Equal(t, StateCompleted, s.Status().State)
}

// drainFailingStore makes the queue read fail to exercise the abort path.
type drainFailingStore struct {
	*storage.Store
	err error
}

func (d *drainFailingStore) Drain(ctx context.Context) ([]models.QueuedMutation, error) {
	return nil, d.err
}

func TestReplay_StorageErrorAbortsAndDegrades(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	boom := errors.New("disk gone")
	client := &fakeClient{pages: [][]models.User{page(1)}}

	s := New(&drainFailingStore{Store: store, err: boom}, client, netx.StaticProbe(true), Options{}, logging.NewNopLogger())
	s.StartSync(ctx)

	status := s.Status()
	assert.Equal(t, StateDegraded, status.State)
	assert.ErrorIs(t, status.Err, boom)
}

func TestRun_PeriodicTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := openStore(t)
	client := &fakeClient{pages: [][]models.User{page(1)}}

	s := New(store, client, netx.StaticProbe(true), Options{
		SyncInterval:        20 * time.Millisecond,
		OnlineCheckInterval: time.Hour, // keep the probe ticker out of the way
	}, logging.NewNopLogger())

	go s.Run(ctx)

	require.Eventually(t, func() bool {
		return s.Status().State == StateCompleted
	}, time.Second, 5*time.Millisecond)
}

// flipProbe is a connectivity signal the test can toggle while Run polls it.
type flipProbe struct {
	online atomic.Bool
}

func (p *flipProbe) Online(context.Context) bool { return p.online.Load() }

func TestRun_ConnectivityTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := openStore(t)
	client := &fakeClient{pages: [][]models.User{page(1)}}
	probe := &flipProbe{} // starts offline

	s := New(store, client, probe, Options{
		SyncInterval:        time.Hour, // transitions are the only trigger
		OnlineCheckInterval: 5 * time.Millisecond,
	}, logging.NewNopLogger())

	go s.Run(ctx)

	// the initial pass runs offline and falls back to the empty mirror
	require.Eventually(t, func() bool {
		return s.Status().State == StateDegraded
	}, time.Second, time.Millisecond)
	assert.Zero(t, client.calls(), "no network attempt while offline")

	// offline -> online fires a full pass
	probe.online.Store(true)
	require.Eventually(t, func() bool {
		return s.Status().State == StateCompleted
	}, time.Second, time.Millisecond)

	st, err := store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.IsOnline)
	assert.Equal(t, 1, st.TotalRecords)

	// online -> offline records a degraded status without a network attempt
	calls := client.calls()
	probe.online.Store(false)
	require.Eventually(t, func() bool {
		return s.Status().State == StateDegraded
	}, time.Second, time.Millisecond)

	st, err = store.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.IsOnline)
	assert.Equal(t, 1, st.TotalRecords, "the cached mirror survives going offline")
	assert.Equal(t, calls, client.calls())
}

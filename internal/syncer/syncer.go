// Package syncer coordinates synchronization passes between the remote
// directory and the local mirror. The orchestrator itself holds no durable
// state: everything observable is re-derivable from the store plus the
// transient in-progress flag.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/netx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/remote"
)

// Store is the slice of the persistent store the orchestrator needs.
// *storage.Store satisfies it.
type Store interface {
	SaveRecords(ctx context.Context, recs []models.Record) error
	Count(ctx context.Context) (int, error)
	UpdateSyncStatus(ctx context.Context, count int, online bool) error
	Drain(ctx context.Context) ([]models.QueuedMutation, error)
	ClearQueue(ctx context.Context) error
}

// State is the orchestrator's position in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateSyncing
	StateCompleted
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateCompleted:
		return "completed"
	case StateDegraded:
		return "degraded"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Status is a point-in-time snapshot of the engine's observable fields.
type Status struct {
	State        State
	IsSyncing    bool
	LastSyncTime time.Time
	TotalRecords int
	Err          error
}

// Options bound a sync pass. Zero fields fall back to the defaults.
type Options struct {
	Resource            string
	MaxPages            int
	MaxRecords          int
	SyncInterval        time.Duration
	PageTimeout         time.Duration
	OnlineCheckInterval time.Duration
}

const (
	DefaultMaxPages            = 10
	DefaultMaxRecords          = 1000
	DefaultSyncInterval        = 60 * time.Second
	DefaultPageTimeout         = 10 * time.Second
	DefaultOnlineCheckInterval = 3 * time.Second
	DefaultResource            = "users"
)

func (o Options) withDefaults() Options {
	if o.Resource == "" {
		o.Resource = DefaultResource
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultMaxRecords
	}
	if o.SyncInterval <= 0 {
		o.SyncInterval = DefaultSyncInterval
	}
	if o.PageTimeout <= 0 {
		o.PageTimeout = DefaultPageTimeout
	}
	if o.OnlineCheckInterval <= 0 {
		o.OnlineCheckInterval = DefaultOnlineCheckInterval
	}
	return o
}

// Syncer runs full synchronization passes: paginated pull, mirror overwrite,
// status bookkeeping, queue replay.
type Syncer struct {
	store  Store
	client remote.Client
	probe  netx.Probe
	log    logging.Logger
	opts   Options

	// the single concurrency guard in the whole system
	syncing atomic.Bool

	mu       sync.Mutex
	state    State
	lastSync time.Time
	total    int
	err      error
}

func New(store Store, client remote.Client, probe netx.Probe, opts Options, log logging.Logger) *Syncer {
	return &Syncer{
		store:  store,
		client: client,
		probe:  probe,
		log:    log,
		opts:   opts.withDefaults(),
		state:  StateIdle,
	}
}

// StartSync runs one full synchronization pass. A call made while another
// pass is in flight is a no-op. Failures never propagate to the caller: the
// pass falls back to the cached mirror and records a degraded status.
func (s *Syncer) StartSync(ctx context.Context) {
	if !s.syncing.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync already in progress, skipping")
		return
	}
	defer s.syncing.Store(false)

	s.setState(StateSyncing, 0, nil)

	if !s.probe.Online(ctx) {
		s.log.Info(ctx, "offline, serving cached mirror")
		s.degrade(ctx, nil)
		return
	}

	total, err := s.pull(ctx)
	if err != nil {
		s.log.Error(ctx, "sync pass failed, falling back to cached mirror", "error", err)
		s.degrade(ctx, err)
		return
	}

	if err := s.store.UpdateSyncStatus(ctx, total, true); err != nil {
		s.degrade(ctx, err)
		return
	}
	s.setState(StateCompleted, total, nil)
	s.log.Info(ctx, "sync pass completed", "records", total)

	if err := s.replay(ctx); err != nil {
		s.log.Error(ctx, "queue replay aborted", "error", err)
		s.degrade(ctx, err)
	}
}

// pull pages through the remote resource and overwrites the mirror with the
// accumulated set. The loop ends on an empty page or when either bound is
// reached; a page that crosses MaxRecords is kept whole.
func (s *Syncer) pull(ctx context.Context) (int, error) {
	var all []models.Record

	for page := 1; page <= s.opts.MaxPages && len(all) < s.opts.MaxRecords; page++ {
		users, err := s.fetchPage(ctx, page)
		if err != nil {
			return 0, err
		}
		if len(users) == 0 {
			break
		}
		s.log.Debug(ctx, "fetched page", "page", page, "records", len(users))
		for _, u := range users {
			all = append(all, u.Adapt())
		}
	}

	if err := s.store.SaveRecords(ctx, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// fetchPage applies the per-page deadline; a hung fetch terminates here
// rather than stalling the whole pass.
func (s *Syncer) fetchPage(ctx context.Context, page int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PageTimeout)
	defer cancel()
	return s.client.FetchPage(ctx, s.opts.Resource, page)
}

// degrade falls back to whatever the mirror currently holds and records an
// offline status. Errors here are logged only; degrade is already the
// failure path.
func (s *Syncer) degrade(ctx context.Context, cause error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached mirror", "error", err)
	}
	if err := s.store.UpdateSyncStatus(ctx, count, false); err != nil {
		s.log.Error(ctx, "failed to record degraded status", "error", err)
	}
	s.setState(StateDegraded, count, cause)
}

// replay drains the offline queue in enqueue order. Entries that fail are
// logged and skipped, never retried, and the queue is cleared wholesale
// after the pass. Storage errors abort the drain with the queue intact.
func (s *Syncer) replay(ctx context.Context) error {
	queued, err := s.store.Drain(ctx)
	if err != nil {
		return err
	}
	for i := range queued {
		if err := s.dispatch(ctx, &queued[i]); err != nil {
			s.log.Warn(ctx, "skipping queued mutation",
				"key", queued[i].Key, "action", queued[i].Action, "error", err)
		}
	}
	return s.store.ClearQueue(ctx)
}

func (s *Syncer) dispatch(ctx context.Context, m *models.QueuedMutation) error {
	switch m.Action {
	case models.ActionCreate:
		var u models.User
		if err := json.Unmarshal(m.Payload, &u); err != nil {
			return fmt.Errorf("bad create payload: %w", err)
		}
		return s.client.CreateUser(ctx, u)
	case models.ActionUpdate:
		var u models.User
		if err := json.Unmarshal(m.Payload, &u); err != nil {
			return fmt.Errorf("bad update payload: %w", err)
		}
		return s.client.UpdateUser(ctx, u)
	case models.ActionDelete:
		var ref models.DeleteRef
		if err := json.Unmarshal(m.Payload, &ref); err != nil {
			return fmt.Errorf("bad delete payload: %w", err)
		}
		return s.client.DeleteUser(ctx, ref.ID)
	default:
		return fmt.Errorf("unknown mutation action %q", m.Action)
	}
}

func (s *Syncer) setState(state State, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
	if state == StateCompleted || state == StateDegraded {
		s.lastSync = time.Now()
		s.total = total
	}
}

// Status returns a snapshot of the observable fields. The snapshot is a
// plain value; it does not change after return.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:        s.state,
		IsSyncing:    s.syncing.Load(),
		LastSyncTime: s.lastSync,
		TotalRecords: s.total,
		Err:          s.err,
	}
}

// Package services contains the application services the UI layer calls
// into: authentication and user mutations. Unlike sync passes, these are
// direct user actions, so their errors propagate to the caller unmodified.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/netx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/remote"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore is the slice of the persistent store the auth service needs.
type AuthStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Record, error)
	SaveRecords(ctx context.Context, recs []models.Record) error
}

// Auth authenticates users, preferring locally cached credentials so login
// keeps working offline.
type Auth struct {
	store  AuthStore
	client remote.Client
	probe  netx.Probe
	log    logging.Logger

	mu      sync.Mutex
	current *models.User
}

func NewAuth(store AuthStore, client remote.Client, probe netx.Probe, log logging.Logger) *Auth {
	return &Auth{store: store, client: client, probe: probe, log: log}
}

// Login tries cached credentials first; only when the cache cannot vouch for
// the user and the device is online does it fall through to the remote
// endpoint. A successful remote login is cached for offline use.
func (a *Auth) Login(ctx context.Context, username, password string) (*models.User, error) {
	cached, err := a.store.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if cached != nil && VerifyPassword(password, cached.PasswordHash) {
		u := cached.User()
		a.setCurrent(&u)
		return &u, nil
	}

	if !a.probe.Online(ctx) {
		return nil, fmt.Errorf("%w: offline and no valid cached credentials", common.ErrAuth)
	}

	user, err := a.client.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	if err := a.store.SaveRecords(ctx, []models.Record{user.Adapt()}); err != nil {
		// login still succeeds; the user just stays online-only
		a.log.Warn(ctx, "failed to cache credentials", "username", username, "error", err)
	}

	a.setCurrent(user)
	return user, nil
}

// Logout drops the in-memory session. Cached records stay in the store.
func (a *Auth) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
}

// Current returns the logged-in user, or nil.
func (a *Auth) Current() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *Auth) setCurrent(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = u
}

// VerifyPassword compares a plaintext password against its bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package services

import (
	"context"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/netx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/remote"
)

// UsersStore is the slice of the persistent store the users service needs.
type UsersStore interface {
	GetAll(ctx context.Context) ([]models.Record, error)
	Enqueue(ctx context.Context, action models.Action, payload any) error
}

// Users routes user mutations either to the remote endpoint or, while
// offline, into the mutation queue. A queued write is accepted locally and
// replayed best-effort on the next successful sync; callers must treat it
// as pending, not applied.
type Users struct {
	store  UsersStore
	client remote.Client
	probe  netx.Probe
	log    logging.Logger
}

func NewUsers(store UsersStore, client remote.Client, probe netx.Probe, log logging.Logger) *Users {
	return &Users{store: store, client: client, probe: probe, log: log}
}

// GetUsers reads the local mirror.
func (u *Users) GetUsers(ctx context.Context) ([]models.Record, error) {
	return u.store.GetAll(ctx)
}

func (u *Users) Create(ctx context.Context, user models.User) error {
	if !u.probe.Online(ctx) {
		u.log.Info(ctx, "offline, queueing create", "username", user.Username)
		return u.store.Enqueue(ctx, models.ActionCreate, user)
	}
	return u.client.CreateUser(ctx, user)
}

func (u *Users) Update(ctx context.Context, user models.User) error {
	if !u.probe.Online(ctx) {
		u.log.Info(ctx, "offline, queueing update", "id", user.ID)
		return u.store.Enqueue(ctx, models.ActionUpdate, user)
	}
	return u.client.UpdateUser(ctx, user)
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	if !u.probe.Online(ctx) {
		u.log.Info(ctx, "offline, queueing delete", "id", id)
		return u.store.Enqueue(ctx, models.ActionDelete, models.DeleteRef{ID: id})
	}
	return u.client.DeleteUser(ctx, id)
}

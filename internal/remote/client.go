// Package remote implements the HTTP client for the directory endpoint.
package remote

import (
	"context"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
)

// Client is the remote endpoint surface the sync engine depends on. It is
// pure request/response: no caching, no durable state.
//
// Errors: common.ErrNetwork on transport failure, common.ErrProtocol when a
// response envelope cannot be unwrapped, common.ErrServer when the remote
// reports success=false, and common.ErrAuth for rejected credentials.
type Client interface {
	// FetchPage returns one page of the named resource.
	FetchPage(ctx context.Context, resource string, page int) ([]models.User, error)

	// Login authenticates and returns the matching user.
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)

	// CreateUser, UpdateUser and DeleteUser apply a single mutation.
	CreateUser(ctx context.Context, user models.User) error
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

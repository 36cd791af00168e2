package identity

import (
	"context"
)

// Provider is the external identity collaborator. Account creation is a
// mutating external call and is never retried automatically; DeleteAccount is
// the compensation step of the registration saga and is safe to retry.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

package repository

import (
	"context"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
)

// RefreshTokenStore maps refresh tokens to subject ids with store-enforced expiry.
type RefreshTokenStore interface {
	// Set upserts token -> subject with the given ttl.
	Set(ctx context.Context, token, subject string, ttl time.Duration) error
	// Get returns the subject for token or domain.ErrRefreshTokenNotFound.
	Get(ctx context.Context, token string) (string, error)
	// Delete removes token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// UserRegistry maps federated identities to internal principals.
type UserRegistry interface {
	ResolveOrCreate(ctx context.Context, profile domain.UserProfile) (*domain.Principal, error)
	Principal(ctx context.Context, id int64) (*domain.Principal, error)
}

package repository

import (
	"github.com/fitshare/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Users         UserRegistry
	RefreshTokens RefreshTokenStore
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres, redis *database.Redis) *Repositories {
	return &Repositories{
		Users:         NewUserRegistry(db),
		RefreshTokens: NewRefreshTokenStore(redis),
	}
}

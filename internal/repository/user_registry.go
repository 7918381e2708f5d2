package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// userRegistry implements UserRegistry on top of the users and oauth_accounts tables
type userRegistry struct {
	db  *database.Postgres
	now func() time.Time
}

// NewUserRegistry creates a new Postgres-backed user registry
func NewUserRegistry(db *database.Postgres) UserRegistry {
	return &userRegistry{db: db, now: time.Now}
}

// ResolveOrCreate returns the principal linked to the provider identity,
// creating the user and link on first login. Name and avatar are refreshed
// from the latest profile.
func (r *userRegistry) ResolveOrCreate(ctx context.Context, profile domain.UserProfile) (*domain.Principal, error) {
	principal, err := r.findByAccount(ctx, profile.Provider, profile.ProviderUserID)
	switch {
	case err == nil:
		return r.refreshProfile(ctx, principal, profile)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	principal, err = r.create(ctx, profile)
	if errors.Is(err, ErrDuplicateAccount) {
		// Concurrent first login for the same identity; the other request won.
		return r.findByAccount(ctx, profile.Provider, profile.ProviderUserID)
	}
	return principal, err
}

// Principal retrieves a principal by internal id
func (r *userRegistry) Principal(ctx context.Context, id int64) (*domain.Principal, error) {
	query := `
		SELECT id, role, name, profile_uri
		FROM users
		WHERE id = $1
	`

	principal := &domain.Principal{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&principal.ID,
		&principal.Role,
		&principal.Name,
		&principal.ProfileURI,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return principal, nil
}

func (r *userRegistry) findByAccount(ctx context.Context, provider domain.ProviderName, providerUserID string) (*domain.Principal, error) {
	query := `
		SELECT u.id, u.role, u.name, u.profile_uri
		FROM oauth_accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.provider = $1 AND a.provider_user_id = $2
	`

	principal := &domain.Principal{}
	err := r.db.DB.QueryRowContext(ctx, query, string(provider), providerUserID).Scan(
		&principal.ID,
		&principal.Role,
		&principal.Name,
		&principal.ProfileURI,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s account %s not found: %w", provider, providerUserID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by oauth account: %w", err)
	}

	return principal, nil
}

func (r *userRegistry) refreshProfile(ctx context.Context, principal *domain.Principal, profile domain.UserProfile) (*domain.Principal, error) {
	if profile.Name == principal.Name && profile.ProfileURI == principal.ProfileURI {
		return principal, nil
	}

	query := `
		UPDATE users
		SET name = $2, profile_uri = $3, updated_at = $4
		WHERE id = $1
	`

	if _, err := r.db.DB.ExecContext(ctx, query, principal.ID, profile.Name, profile.ProfileURI, r.now()); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	principal.Name = profile.Name
	principal.ProfileURI = profile.ProfileURI
	return principal, nil
}

func (r *userRegistry) create(ctx context.Context, profile domain.UserProfile) (principal *domain.Principal, err error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := r.now()
	principal = &domain.Principal{
		Role:       domain.RoleUser,
		Name:       profile.Name,
		ProfileURI: profile.ProfileURI,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, profile_uri, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, principal.Name, principal.ProfileURI, string(principal.Role), now).Scan(&principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), principal.ID, string(profile.Provider), profile.ProviderUserID, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s account %s: %w", profile.Provider, profile.ProviderUserID, ErrDuplicateAccount)
		}
		return nil, fmt.Errorf("failed to link oauth account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	return principal, nil
}

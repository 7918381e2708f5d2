package service

import (
	"context"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/internal/provider"
)

// AuthService is the login and token lifecycle API consumed by the HTTP layer.
type AuthService interface {
	ExchangeLogin(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, accessToken string) (*domain.AccessClaims, error)
	CurrentPrincipal(ctx context.Context, claims *domain.AccessClaims) (*domain.Principal, error)
}

// ProviderRegistry resolves identity provider clients by name.
type ProviderRegistry interface {
	Get(name domain.ProviderName) (provider.Client, error)
}

// TokenIssuer mints and verifies the service's own credentials.
type TokenIssuer interface {
	CreateAccessToken(subject string, role domain.RoleType) (string, error)
	CreateRefreshToken() (string, error)
	Parse(accessToken string) (*domain.AccessClaims, error)
	AccessTokenExpiry() int
}

type LoginRequest struct {
	Provider domain.ProviderName
	Code     string
	State    string
}

type LoginResult struct {
	Principal domain.Principal
	Tokens    domain.TokenPair
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/internal/provider"
	"github.com/fitshare/auth-service/internal/repository"
	"github.com/fitshare/auth-service/pkg/observability"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	providers       ProviderRegistry
	users           repository.UserRegistry
	refreshTokens   repository.RefreshTokenStore
	issuer          TokenIssuer
	metrics         *observability.AuthMetrics
	logger          *zap.Logger
	refreshTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	providers ProviderRegistry,
	users repository.UserRegistry,
	refreshTokens repository.RefreshTokenStore,
	issuer TokenIssuer,
	metrics *observability.AuthMetrics,
	logger *zap.Logger,
	refreshTokenTTL time.Duration,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		providers:       providers,
		users:           users,
		refreshTokens:   refreshTokens,
		issuer:          issuer,
		metrics:         metrics,
		logger:          logger.Named("auth"),
		refreshTokenTTL: refreshTokenTTL,
	}
}

// ExchangeLogin runs the login flow for an authorization code. Nothing is
// persisted unless every step succeeds; the refresh token write is last.
func (s *authService) ExchangeLogin(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	stage := StageCodeReceived
	fail := func(err error) (*LoginResult, error) {
		s.logger.Warn("Login failed",
			zap.String("provider", string(req.Provider)),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		s.metrics.LoginAttempt(ctx, string(req.Provider), observability.OutcomeFailure, string(stage))
		return nil, &LoginError{Provider: req.Provider, Stage: stage, Err: err}
	}

	client, err := s.providers.Get(req.Provider)
	if err != nil {
		return fail(err)
	}

	providerToken, err := client.ExchangeCode(ctx, req.Code, provider.ExchangeParams{State: req.State})
	if err != nil {
		return fail(err)
	}
	stage = StageProviderTokenObtained

	profile, err := client.FetchProfile(ctx, providerToken)
	if err != nil {
		return fail(err)
	}
	stage = StageProfileObtained

	principal, err := s.users.ResolveOrCreate(ctx, *profile)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrPrincipalResolution, err))
	}
	stage = StagePrincipalResolved

	tokens, err := s.issueTokenPair(ctx, principal)
	if err != nil {
		return fail(err)
	}
	stage = StageTokenPairIssued

	s.logger.Info("Login succeeded",
		zap.String("provider", string(req.Provider)),
		zap.String("stage", string(stage)),
		zap.Int64("user_id", principal.ID),
	)
	s.metrics.LoginAttempt(ctx, string(req.Provider), observability.OutcomeSuccess, "")

	return &LoginResult{
		Principal: *principal,
		Tokens:    *tokens,
	}, nil
}

func (s *authService) issueTokenPair(ctx context.Context, principal *domain.Principal) (*domain.TokenPair, error) {
	subject := principal.Subject()

	accessToken, err := s.issuer.CreateAccessToken(subject, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.issuer.CreateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.refreshTokens.Set(ctx, refreshToken, subject, s.refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.issuer.AccessTokenExpiry(),
	}, nil
}

// Refresh reissues an access token for the subject bound to refreshToken.
// The refresh token is returned unchanged and stays valid until its TTL lapses.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	pair, err := s.refresh(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, domain.ErrRefreshTokenNotFound) {
			s.logger.Error("Refresh failed", zap.Error(err))
		}
		s.metrics.RefreshAttempt(ctx, observability.OutcomeFailure)
		return nil, err
	}

	s.metrics.RefreshAttempt(ctx, observability.OutcomeSuccess)
	return pair, nil
}

func (s *authService) refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	subject, err := s.refreshTokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	id, err := domain.ParseSubject(subject)
	if err != nil {
		return nil, fmt.Errorf("stored subject %q is malformed: %w", subject, domain.ErrRefreshTokenNotFound)
	}

	principal, err := s.users.Principal(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("subject %s no longer exists: %w", subject, domain.ErrRefreshTokenNotFound)
		}
		return nil, fmt.Errorf("failed to resolve subject: %w", err)
	}

	accessToken, err := s.issuer.CreateAccessToken(subject, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.issuer.AccessTokenExpiry(),
	}, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(_ context.Context, accessToken string) (*domain.AccessClaims, error) {
	return s.issuer.Parse(accessToken)
}

// CurrentPrincipal loads the principal named by verified access token claims.
func (s *authService) CurrentPrincipal(ctx context.Context, claims *domain.AccessClaims) (*domain.Principal, error) {
	id, err := domain.ParseSubject(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("malformed subject %q: %w", claims.Subject, domain.ErrInvalidAccessToken)
	}

	principal, err := s.users.Principal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	return principal, nil
}

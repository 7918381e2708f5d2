package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	minSecretLength   = 32
	refreshTokenBytes = 32

	// minIssueGap keeps consecutive iat values ordered after a float decode,
	// which may round a millisecond timestamp down by one unit.
	minIssueGap = 2 * time.Millisecond
	parseLeeway = time.Second
)

func init() {
	jwt.TimePrecision = time.Millisecond
}

// Claims is the JWT claim set of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Role domain.RoleType `json:"role"`
}

// Issuer mints HS256 access tokens and opaque refresh tokens.
type Issuer struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time

	mu         sync.Mutex
	lastIssued time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer validates the signing configuration and returns an Issuer.
// A short secret or non-positive expiry yields domain.ErrSigningConfiguration.
func NewIssuer(secret string, accessTokenExpiry time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("signing secret shorter than %d bytes: %w", minSecretLength, domain.ErrSigningConfiguration)
	}
	if accessTokenExpiry <= 0 {
		return nil, fmt.Errorf("access token expiry must be positive: %w", domain.ErrSigningConfiguration)
	}

	i := &Issuer{
		secret:            []byte(secret),
		accessTokenExpiry: accessTokenExpiry,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// CreateAccessToken signs a token for subject with the given role.
func (i *Issuer) CreateAccessToken(subject string, role domain.RoleType) (string, error) {
	now := i.issueTime()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTokenExpiry)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// issueTime returns the clock reading, moved past the previous issue time
// when the clock has not advanced far enough to order the two tokens.
func (i *Issuer) issueTime() time.Time {
	now := i.now().Truncate(time.Millisecond)

	i.mu.Lock()
	defer i.mu.Unlock()
	if floor := i.lastIssued.Add(minIssueGap); !i.lastIssued.IsZero() && now.Before(floor) {
		now = floor
	}
	i.lastIssued = now
	return now
}

// CreateRefreshToken returns a random, URL-safe lookup key with no embedded claims.
func (i *Issuer) CreateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Parse verifies an access token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*domain.AccessClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithTimeFunc(i.now),
		jwt.WithLeeway(parseLeeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("access token expired: %w", domain.ErrInvalidAccessToken)
		}
		return nil, fmt.Errorf("failed to parse access token: %w: %w", domain.ErrInvalidAccessToken, err)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("incomplete claims: %w", domain.ErrInvalidAccessToken)
	}

	return &domain.AccessClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// AccessTokenExpiry returns the access token lifetime in seconds.
func (i *Issuer) AccessTokenExpiry() int {
	return int(i.accessTokenExpiry.Seconds())
}

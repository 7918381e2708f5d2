package domain

import "errors"

var (
	// ErrProviderExchange is returned when an authorization code cannot be
	// exchanged for a provider access token.
	ErrProviderExchange = errors.New("provider code exchange failed")

	// ErrProfileFetch is returned when the provider profile cannot be retrieved or decoded.
	ErrProfileFetch = errors.New("provider profile fetch failed")

	// ErrRefreshTokenNotFound is returned when a refresh token is unknown or expired.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrSigningConfiguration is returned at startup when the access token
	// signing key or lifetime is unusable.
	ErrSigningConfiguration = errors.New("invalid signing configuration")

	ErrUnknownProvider = errors.New("unknown identity provider")

	// ErrPrincipalResolution is returned when the user registry cannot map a
	// provider identity to a principal.
	ErrPrincipalResolution = errors.New("principal resolution failed")

	ErrInvalidAccessToken = errors.New("invalid access token")
)

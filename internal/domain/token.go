package domain

import "time"

// AccessClaims is the decoded claim set of an access token.
type AccessClaims struct {
	ID        string
	Subject   string
	Role      RoleType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the credential pair handed out after a successful login.
// ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

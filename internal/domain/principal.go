package domain

import "strconv"

// RoleType is the authorization role embedded in access tokens.
type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

// Valid reports whether r is a known role.
func (r RoleType) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Principal is the internal identity of an authenticated user.
type Principal struct {
	ID         int64    `json:"id"`
	Role       RoleType `json:"role"`
	Name       string   `json:"name"`
	ProfileURI string   `json:"profile_uri"`
}

// Subject returns the principal id in the form carried by tokens.
func (p Principal) Subject() string {
	return strconv.FormatInt(p.ID, 10)
}

// ParseSubject converts a token subject back into a principal id.
func ParseSubject(subject string) (int64, error) {
	return strconv.ParseInt(subject, 10, 64)
}

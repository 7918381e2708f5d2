package dto

// LoginRequest carries the authorization code returned to the client's redirect URI.
type LoginRequest struct {
	Code  string `json:"code" form:"code" binding:"required"`
	State string `json:"state" form:"state"`
}

// RefreshRequest carries the refresh token when it is not sent as a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse represents a successful social login
type LoginResponse struct {
	ID           int64  `json:"id"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	Name         string `json:"name"`
	ProfileURI   string `json:"profileURI"`
}

// TokenResponse represents a token refresh response
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// PrincipalResponse represents the authenticated user
type PrincipalResponse struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	ProfileURI string `json:"profileURI"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

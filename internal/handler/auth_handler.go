package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/internal/dto"
	"github.com/fitshare/auth-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	refreshTokenCookie     = "refresh_token"
	refreshTokenCookiePath = "/api/v1/auth"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService     service.AuthService
	logger          *zap.Logger
	refreshTokenTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger, refreshTokenTTL time.Duration) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService:     authService,
		logger:          logger,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Login handles social login
// @Summary Login with an identity provider
// @Description Exchange an authorization code issued by Kakao or Naver for service tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param provider path string true "Identity provider" Enums(kakao, naver)
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/{provider}/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.authService.ExchangeLogin(c.Request.Context(), service.LoginRequest{
		Provider: domain.ProviderName(c.Param("provider")),
		Code:     req.Code,
		State:    req.State,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)

	c.JSON(http.StatusOK, dto.LoginResponse{
		ID:           result.Principal.ID,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
		Name:         result.Principal.Name,
		ProfileURI:   result.Principal.ProfileURI,
	})
}

// Refresh handles access token refresh
// @Summary Refresh access token
// @Description Issue a new access token for a live refresh token. The refresh token is returned unchanged.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest false "Refresh request, optional when the cookie is set"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.refreshTokenFromRequest(c)
	if refreshToken == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in body or cookie",
		})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest false "Logout request, optional when the cookie is set"
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken := h.refreshTokenFromRequest(c)

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		h.writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookie, "", -1, refreshTokenCookiePath, "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe handles getting the current principal
// @Summary Get current user
// @Description Get the principal bound to the bearer access token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PrincipalResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Access token claims not found in context",
		})
		return
	}

	principal, err := h.authService.CurrentPrincipal(c.Request.Context(), claims)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PrincipalResponse{
		ID:         principal.ID,
		Role:       string(principal.Role),
		Name:       principal.Name,
		ProfileURI: principal.ProfileURI,
	})
}

// refreshTokenFromRequest prefers the JSON body and falls back to the cookie.
func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) string {
	var req dto.RefreshRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}

	cookie, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookie, refreshToken, int(h.refreshTokenTTL.Seconds()), refreshTokenCookiePath, "", true, true)
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	status, title := statusFor(err)

	resp := dto.ErrorResponse{
		Error:   title,
		Message: err.Error(),
	}

	var loginErr *service.LoginError
	if errors.As(err, &loginErr) {
		resp.Stage = string(loginErr.Stage)
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status == http.StatusInternalServerError {
			resp.Message = "Internal server error"
		}
	}

	c.JSON(status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "Bad request"
	case errors.Is(err, domain.ErrProviderExchange), errors.Is(err, domain.ErrProfileFetch):
		return http.StatusBadGateway, "Bad gateway"
	case errors.Is(err, domain.ErrRefreshTokenNotFound), errors.Is(err, domain.ErrInvalidAccessToken):
		return http.StatusUnauthorized, "Unauthorized"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

package handler

import (
	"net/http"
	"strings"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/internal/dto"
	"github.com/fitshare/auth-service/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	contextKeySubject = "subject"
	contextKeyRole    = "role"
	contextKeyClaims  = "claims"
)

// AuthMiddleware validates JWT token and adds user info to context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(contextKeySubject, claims.Subject)
		c.Set(contextKeyRole, string(claims.Role))
		c.Set(contextKeyClaims, claims)

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(c *gin.Context) (*domain.AccessClaims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.AccessClaims)
	return claims, ok
}

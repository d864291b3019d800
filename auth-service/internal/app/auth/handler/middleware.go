package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipehub/auth-service/internal/app/auth/service"
	"recipehub/auth-service/internal/app/auth/util"
	"recipehub/pkg/logger"
)

const claimsKey = "claims"

// TokenValidator checks signature, expiry and the blacklist
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "Authorization header required", "")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(c, http.StatusUnauthorized, "Invalid authorization header format", "")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenBlacklisted):
				respondError(c, http.StatusUnauthorized, "Token has been revoked", "")
			case errors.Is(err, service.ErrInvalidToken):
				respondError(c, http.StatusUnauthorized, "Invalid or expired token", "")
			default:
				logger.Error().Err(err).Msg("Failed to validate token")
				respondError(c, http.StatusInternalServerError, "Failed to validate token", "")
			}
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

func currentClaims(c *gin.Context) (*util.JWTClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*util.JWTClaims)
	return claims, ok
}

package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// JWTClaims mirrors the access tokens issued by auth-service
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := m.parseHeader(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthenticate identifies the caller when a valid token is present
// and lets anonymous or badly authenticated requests through.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, err := m.parseHeader(authHeader); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parseHeader(authHeader string) (*JWTClaims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *JWTClaims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
}

// callerID returns the authenticated user id or nil for anonymous requests.
func callerID(c *gin.Context) *int64 {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}

package web

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haawall/haawall-go/internal/auth"
	apperrors "github.com/haawall/haawall-go/internal/errors"
)

const claimsContextKey = "auth_claims"

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// OptionalAuth attaches claims when a valid bearer token is present and
// passes the request through otherwise. Chat works for anonymous callers.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := h.tokens.ParseToken(token); err == nil {
				c.Set(claimsContextKey, claims)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			h.abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		claims, err := h.tokens.ParseToken(token)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token is not an administrator's.
// Must run after RequireAuth.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			h.abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			h.abortWithError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// claimsFrom returns the claims attached by the auth middleware, or nil.
func claimsFrom(c *gin.Context) *auth.Claims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

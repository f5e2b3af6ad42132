package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/auth"
	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

// Resolver is the part of the Gate the middleware needs.
type Resolver interface {
	Resolve(ctx context.Context, client, bearer string) domain.View
}

// WithSession resolves the request's authentication view once and stores it
// in the gin context.
func WithSession(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := r.Resolve(c.Request.Context(), auth.ClientKey(c), extractToken(c))
		c.Set(auth.CtxAuthView, view)
		c.Next()
	}
}

// RequireAuth rejects requests without a session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !abortUnlessAuthenticated(c) {
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests that are not from the admin session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !abortUnlessAuthenticated(c) {
			return
		}
		if !auth.CurrentSession(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}

func abortUnlessAuthenticated(c *gin.Context) bool {
	view := auth.View(c)
	if view.State == domain.StateUnknown {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "authentication service unavailable"})
		return false
	}
	if !view.Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return false
	}
	return true
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}

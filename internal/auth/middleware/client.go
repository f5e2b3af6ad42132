package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/portfolio-site/portfolio-backend/internal/auth"
)

const (
	ClientCookie = "portfolio_client"
	ClientHeader = "X-Client-Key"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

var clientKeyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{16,64}$`)

// ClientKey identifies the browser context a request belongs to. Sessions are
// scoped to this key, so clearing the cookie ends them.
func ClientKey(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(ClientHeader))
		if !clientKeyPattern.MatchString(key) {
			key, _ = c.Cookie(ClientCookie)
		}
		if !clientKeyPattern.MatchString(key) {
			key = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, key, clientCookieMaxAge, "/", "", secure, true)
		}

		c.Set(auth.CtxClientKey, key)
		c.Next()
	}
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

const (
	CtxClientKey = "client_key"
	CtxAuthView  = "auth_view"
)

// ClientKey returns the client context key set by the ClientKey middleware.
func ClientKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxClientKey))
}

// View returns the resolved authentication view for the request.
func View(c *gin.Context) domain.View {
	if v, ok := c.Get(CtxAuthView); ok {
		if view, ok := v.(domain.View); ok {
			return view
		}
	}
	return domain.View{State: domain.StateUnknown}
}

// CurrentSession returns the signed-in session, or nil.
func CurrentSession(c *gin.Context) *domain.Session {
	return View(c).Session
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

type staticResolver struct {
	view      domain.View
	gotClient string
	gotBearer string
}

func (r *staticResolver) Resolve(ctx context.Context, client, bearer string) domain.View {
	r.gotClient, r.gotBearer = client, bearer
	return r.view
}

func serve(res *staticResolver, guard gin.HandlerFunc, header map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientKey(false), WithSession(res))
	r.GET("/x", guard, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequireAuth(t *testing.T) {
	user := &domain.Session{UID: "u"}

	tests := []struct {
		name   string
		view   domain.View
		status int
	}{
		{"anonymous", domain.View{State: domain.StateAnonymous}, http.StatusUnauthorized},
		{"unknown", domain.View{State: domain.StateUnknown}, http.StatusServiceUnavailable},
		{"authenticated", domain.View{State: domain.StateAuthenticated, Session: user}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(&staticResolver{view: tt.view}, RequireAuth(), nil)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	user := domain.View{State: domain.StateAuthenticated, Session: &domain.Session{UID: "u"}}
	admin := domain.View{State: domain.StateAuthenticated, Session: &domain.Session{UID: "admin-x", IsAdmin: true}}

	assert.Equal(t, http.StatusForbidden, serve(&staticResolver{view: user}, RequireAdmin(), nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(&staticResolver{view: admin}, RequireAdmin(), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(&staticResolver{view: domain.View{State: domain.StateAnonymous}}, RequireAdmin(), nil).Code)
}

func TestWithSessionPassesClientAndBearer(t *testing.T) {
	res := &staticResolver{view: domain.View{State: domain.StateAnonymous}}
	serve(res, RequireAuth(), map[string]string{
		ClientHeader:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		"Authorization": "Bearer abc.def",
	})
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", res.gotClient)
	assert.Equal(t, "abc.def", res.gotBearer)

	serve(res, RequireAuth(), map[string]string{ClientHeader: "short", "Authorization": "Basic x"})
	assert.NotEqual(t, "short", res.gotClient, "malformed client keys are replaced")
	assert.Len(t, res.gotClient, 36)
	assert.Empty(t, res.gotBearer)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
)

func serveHealth(t *testing.T, h *HealthHandler, method, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	h.RegisterRoutes(router)

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var response HealthResponse
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	}
	return rr, response
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", "kv", map[string]Check{
		"store": func(context.Context) error { return nil },
	}, synthesis.Heuristic{})

	rr, response := serveHealth(t, h, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "test-service", response.Service)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Equal(t, "kv", response.Backend)
	assert.Equal(t, map[string]string{"store": "up"}, response.Checks)
	assert.Nil(t, response.Synthesis)
}

func TestHealthCheckDegraded(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", "postgres", map[string]Check{
		"store": func(context.Context) error { return errors.New("connection refused") },
		"redis": func(context.Context) error { return nil },
	}, nil)

	rr, response := serveHealth(t, h, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "down", response.Checks["store"])
	assert.Equal(t, "up", response.Checks["redis"])
}

func TestHealthCheckReportsSynthesisStats(t *testing.T) {
	g := synthesis.NewGemini("http://127.0.0.1:0", "k", "m", 0, nil)
	h := NewHealthHandler("test-service", "1.0.0", "kv", nil, g)

	_, response := serveHealth(t, h, http.MethodGet, "/health")

	require.NotNil(t, response.Synthesis)
	assert.Zero(t, response.Synthesis.Calls)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", "kv", nil, nil)

	rr, _ := serveHealth(t, h, http.MethodPost, "/health")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

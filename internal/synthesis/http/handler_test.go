package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
)

type describeResponse struct {
	OK          bool   `json:"ok"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

type failingSynth struct{}

func (failingSynth) Synthesize(context.Context, domain.Kind, string) string {
	return synthesis.FallbackText
}

func setupRouter(s synthesis.Synthesizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(s).Register(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) describeResponse {
	t.Helper()
	var out describeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestDescribe_Multipart(t *testing.T) {
	r := setupRouter(synthesis.Heuristic{})

	body, ct := multipartBody(t, "file", "main.go", []byte("/*\n * A chess engine.\n */\npackage main\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.True(t, out.OK)
	assert.Equal(t, "project", out.Kind)
	assert.Equal(t, "A chess engine.", out.Description)
}

func TestDescribe_JSONCertificate(t *testing.T) {
	r := setupRouter(synthesis.Heuristic{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe?kind=certificate",
		strings.NewReader(`{"content":"Go Fundamentals\nIssued 2024"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.Equal(t, "certificate", out.Kind)
	assert.Equal(t, "Certificate related to Go Fundamentals Issued 2024...", out.Description)
}

func TestDescribe_FallbackIsNotOK(t *testing.T) {
	r := setupRouter(failingSynth{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe", strings.NewReader(`{"content":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.False(t, out.OK)
	assert.Equal(t, synthesis.FallbackText, out.Description)
}

func TestDescribe_BadRequests(t *testing.T) {
	r := setupRouter(synthesis.Heuristic{})
	formBody, formCT := multipartBody(t, "upload", "a.txt", []byte("hello"))

	tests := []struct {
		name   string
		path   string
		ct     string
		body   string
		status int
	}{
		{"unknown kind", "/api/v1/describe?kind=badge", "application/json", `{"content":"x"}`, http.StatusBadRequest},
		{"malformed json", "/api/v1/describe", "application/json", `{`, http.StatusBadRequest},
		{"wrong form field", "/api/v1/describe", formCT, formBody.String(), http.StatusBadRequest},
		{"oversized json", "/api/v1/describe", "application/json",
			`{"content":"` + strings.Repeat("a", MaxUploadBytes+1) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ct)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.False(t, decode(t, rr).OK)
		})
	}
}

func TestDescribe_OversizedUpload(t *testing.T) {
	r := setupRouter(synthesis.Heuristic{})

	body, ct := multipartBody(t, "file", "big.txt", bytes.Repeat([]byte("a"), MaxUploadBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDescribe_BinaryUploadRejected(t *testing.T) {
	r := setupRouter(synthesis.Heuristic{})

	body, ct := multipartBody(t, "file", "img.png", []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "file must be text", decode(t, rr).Error)
}

package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
)

// MaxUploadBytes bounds the content accepted for description synthesis.
const MaxUploadBytes = 1 << 20

var errTooLarge = errors.New("content too large")

type Handler struct {
	synth synthesis.Synthesizer
}

func New(synth synthesis.Synthesizer) *Handler {
	return &Handler{synth: synth}
}

func (h *Handler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.POST("/describe", guard, h.Describe)
}

// Describe synthesizes a description from a multipart "file" upload or a
// JSON body {"content": "..."}. ?kind selects the wording, default project.
func (h *Handler) Describe(c *gin.Context) {
	kind := domain.KindProject
	if raw := c.Query("kind"); raw != "" {
		k, ok := domain.ParseKind(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown kind"})
			return
		}
		kind = k
	}

	content, err := readContent(c)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	description := h.synth.Synthesize(c.Request.Context(), kind, content)
	c.JSON(http.StatusOK, gin.H{
		"ok":          description != synthesis.FallbackText,
		"kind":        kind,
		"description": description,
	})
}

func readContent(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+4096)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return "", errTooLarge
			}
			return "", errors.New("file is required")
		}
		if fh.Size > MaxUploadBytes {
			return "", errTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return "", errors.New("cannot read uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes))
		if err != nil {
			return "", errors.New("cannot read uploaded file")
		}
		if !utf8.Valid(data) {
			return "", errors.New("file must be text")
		}
		return string(data), nil
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", errTooLarge
		}
		return "", errors.New("expected multipart file or JSON {content}")
	}
	if len(body.Content) > MaxUploadBytes {
		return "", errTooLarge
	}
	return body.Content, nil
}

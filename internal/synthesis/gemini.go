package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/logger"
)

// Gemini asks the Generative Language API for a description.
type Gemini struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client

	limiter *rate.Limiter
	metrics Metrics
	log     *zap.Logger
}

// NewGemini builds the client. ratePerMin <= 0 disables throttling.
func NewGemini(baseURL, apiKey, model string, ratePerMin int, log *zap.Logger) *Gemini {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gemini{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
	if ratePerMin > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(ratePerMin)/60), ratePerMin)
	}
	return g
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Synthesize(ctx context.Context, kind domain.Kind, content string) string {
	log := logger.NewLogger(ctx, g.log)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			log.LogWarnf("synthesis.gemini", "rate limit wait: %v", err)
			return FallbackText
		}
	}

	start := time.Now()
	text, err := g.generate(ctx, prompt(kind)+content)
	g.metrics.record(time.Since(start), err)
	if err != nil {
		log.LogError("synthesis.gemini", err)
		return FallbackText
	}
	return text
}

// Stats reports call counters.
func (g *Gemini) Stats() Stats {
	return g.metrics.Snapshot()
}

func (g *Gemini) generate(ctx context.Context, text string) (string, error) {
	b, err := json.Marshal(generateRequest{Contents: []geminiContent{{
		Role:  "user",
		Parts: []geminiPart{{Text: text}},
	}}})
	if err != nil {
		return "", fmt.Errorf("gemini encode: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.BaseURL, url.PathEscape(g.Model), url.QueryEscape(g.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(httpReq)
	if err != nil {
		// url.Error embeds the endpoint, which carries the key.
		return "", fmt.Errorf("gemini call failed: %s", redact(err.Error(), g.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	text = strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty candidate")
	}
	return text, nil
}

func prompt(kind domain.Kind) string {
	if kind == domain.KindCertificate {
		return "Write a short description (2-3 sentences) of the certificate described by the following document, " +
			"suitable for a personal portfolio. Reply with the description only.\n\n"
	}
	return "Write a short description (2-3 sentences) of the software project that contains the following file, " +
		"suitable for a personal portfolio. Reply with the description only.\n\n"
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(secret), "REDACTED")
	return strings.ReplaceAll(s, secret, "REDACTED")
}

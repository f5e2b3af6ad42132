// Package synthesis turns uploaded file content into a suggested description.
package synthesis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/portfolio-site/portfolio-backend/config"
	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

// FallbackText is returned whenever a description cannot be produced.
const FallbackText = "Failed to generate description. Please enter manually."

// Synthesizer never fails: problems surface as FallbackText.
type Synthesizer interface {
	Synthesize(ctx context.Context, kind domain.Kind, content string) string
}

// New picks the strategy named in cfg.
func New(cfg *config.SynthesisConfig, log *zap.Logger) (Synthesizer, error) {
	switch cfg.Strategy {
	case config.SynthesisHeuristic, "":
		return Heuristic{}, nil
	case config.SynthesisGemini:
		return NewGemini(cfg.GeminiURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RatePerMin, log), nil
	default:
		return nil, fmt.Errorf("unknown synthesis strategy %q", cfg.Strategy)
	}
}

func emptyText(kind domain.Kind) string {
	if kind == domain.KindCertificate {
		return "This certificate does not have a description yet."
	}
	return "This project doesn't have a description yet."
}

func summaryPrefix(kind domain.Kind) string {
	if kind == domain.KindCertificate {
		return "Certificate related to "
	}
	return "Project based on "
}

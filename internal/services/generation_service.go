package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"promptly/internal/apperrors"
	"promptly/internal/metrics"
	"promptly/internal/providers"
)

// GenerationService validates prompts and forwards them to a provider.
type GenerationService struct {
	provider providers.TextGenerator
	metrics  *metrics.Metrics
}

// NewGenerationService creates a new GenerationService. m may be nil.
func NewGenerationService(provider providers.TextGenerator, m *metrics.Metrics) *GenerationService {
	return &GenerationService{
		provider: provider,
		metrics:  m,
	}
}

// Generate calls the provider once and returns its output unchanged.
func (s *GenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		s.metrics.RecordGeneration(metrics.GenerationInvalidPrompt, 0)
		return "", apperrors.NewValidationError("prompt", "Prompt cannot be empty")
	}

	start := time.Now()
	text, err := s.provider.GenerateText(ctx, prompt)
	if err != nil {
		s.metrics.RecordGeneration(metrics.GenerationProviderError, time.Since(start))
		return "", fmt.Errorf("%w: %w", apperrors.ErrProvider, err)
	}

	s.metrics.RecordGeneration(metrics.GenerationSuccess, time.Since(start))
	return text, nil
}

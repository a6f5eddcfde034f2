// Package providers contains the text-generation backends. Each backend
// implements TextGenerator and nothing else.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"promptly/internal/config"
)

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// New builds the backend selected by cfg.Name.
func New(cfg config.ProviderConfig) (TextGenerator, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Name {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, client), nil
	case config.ProviderOllama:
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, client), nil
	case config.ProviderStatic:
		return NewStaticProvider(cfg.StaticResponse), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Name)
	}
}

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 60 * time.Second}
}

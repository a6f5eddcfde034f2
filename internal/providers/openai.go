package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider calls the chat completions endpoint of an OpenAI-compatible API.
type OpenAIProvider struct {
	Model  string
	client openai.Client
}

// NewOpenAIProvider constructs a provider for the given endpoint, key and model.
// Retries are disabled; a failed call surfaces to the caller once.
func NewOpenAIProvider(baseURL, apiKey, model string, client *http.Client) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(defaultClient(client)),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	return &OpenAIProvider{
		Model:  model,
		client: openai.NewClient(opts...),
	}
}

// GenerateText sends prompt as a single user message and returns the first
// choice's content, trimmed.
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", fmt.Errorf("chat completions endpoint returned %d: %s: %w", apiErr.StatusCode, apiErr.Message, err)
		}
		return "", fmt.Errorf("chat completions request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completions response has no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

var _ TextGenerator = (*OpenAIProvider)(nil)

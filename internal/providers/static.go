package providers

import "context"

// StaticProvider answers every prompt with the same text.
type StaticProvider struct {
	Response string
}

func NewStaticProvider(response string) *StaticProvider {
	return &StaticProvider{Response: response}
}

func (p *StaticProvider) GenerateText(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Response, nil
}

var _ TextGenerator = (*StaticProvider)(nil)

package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	DefaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 4096
)

// AnthropicProvider sends the prompt through the Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
	hasKey bool
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	key := strings.TrimSpace(cfg.APIKey)
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(key, opts...),
		model:  model,
		hasKey: key != "",
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.hasKey {
		return "", missingCredential()
	}

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens: defaultAnthropicMaxTokens,
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText && c.Text != nil {
			return *c.Text, nil
		}
	}
	return "", newError(MalformedResponse, nil, "response has no text content")
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return newError(ServiceError, err, "%s", apiErr.Message)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return newError(ServiceError, err, "HTTP %d", reqErr.StatusCode)
	}
	return classify(scrubURLError(err))
}

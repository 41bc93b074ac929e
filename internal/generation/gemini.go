package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// GeminiProvider speaks the generateContent REST contract.
type GeminiProvider struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

type GeminiConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = DefaultGeminiModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &GeminiProvider{
		endpoint: endpoint,
		model:    model,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		client:   client,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) url() string {
	return fmt.Sprintf("%s/%s:generateContent", p.endpoint, p.model)
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", missingCredential()
	}

	jsonBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", newError(MalformedResponse, err, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url(), bytes.NewReader(jsonBody))
	if err != nil {
		return "", newError(NetworkError, err, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", classify(scrubURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(NetworkError, err, "read response: %v", err)
	}

	return parseGeminiResponse(resp.StatusCode, body)
}

func parseGeminiResponse(status int, body []byte) (string, error) {
	ok := status >= 200 && status < 300

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if !ok {
			return "", newError(ServiceError, nil, "HTTP %d", status)
		}
		return "", newError(MalformedResponse, err, "response is not valid JSON")
	}

	if parsed.Error != nil {
		msg := strings.TrimSpace(parsed.Error.Message)
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", status, parsed.Error.Status)
		}
		return "", newError(ServiceError, nil, "%s", msg)
	}
	if !ok {
		return "", newError(ServiceError, nil, "HTTP %d", status)
	}

	if len(parsed.Candidates) == 0 {
		return "", newError(MalformedResponse, nil, "response has no candidates")
	}
	content := parsed.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", newError(MalformedResponse, nil, "first candidate has no text part")
	}
	return *content.Parts[0].Text, nil
}

// scrubURLError drops the request URL from transport errors so endpoint
// query strings never reach user-visible messages.
func scrubURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// Package provider sends prompts to chat-completion APIs.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yega/scaffold/internal/config"
)

// Provider generates one completion per request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single-turn prompt.
type GenerateRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	// Model overrides the provider's configured model.
	Model string
}

// GenerateResponse is the text of a completion and its token usage.
type GenerateResponse struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
}

const (
	DefaultAnthropicURL = "https://api.anthropic.com"
	DefaultOpenAIURL    = "https://api.openai.com"
	DefaultBlackboxURL  = "https://api.blackbox.ai"
)

var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5",
	"openai":    "gpt-4o",
	"blackbox":  "blackboxai",
}

// ErrMissingKey is returned by New when no API key was resolved.
var ErrMissingKey = errors.New("API key required")

// APIError is a non-200 reply from a provider.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (HTTP %d): %s", e.Provider, e.Status, e.Body)
}

// New builds the provider named in r. An empty name selects anthropic.
func New(r *config.Resolved) (Provider, error) {
	if r.APIKey == "" {
		return nil, fmt.Errorf("%w: set api-key with `yega config set api-key ...` or the provider's env var", ErrMissingKey)
	}
	name := strings.ToLower(r.Provider)
	if name == "" {
		name = "anthropic"
	}
	model := r.Model
	if model == "" {
		model = defaultModels[name]
	}
	base := func(def string) string {
		if r.BaseURL != "" {
			return r.BaseURL
		}
		return def
	}

	switch name {
	case "anthropic":
		return &Anthropic{apiKey: r.APIKey, model: model, baseURL: base(DefaultAnthropicURL)}, nil
	case "openai":
		return &OpenAI{
			name:    "openai",
			apiKey:  r.APIKey,
			model:   model,
			baseURL: base(DefaultOpenAIURL),
			path:    "/v1/chat/completions",
		}, nil
	case "blackbox":
		return NewBlackbox(r.APIKey, model, base(DefaultBlackboxURL)), nil
	}
	return nil, fmt.Errorf("unknown provider %q (valid: anthropic, openai, blackbox)", r.Provider)
}

// postJSON sends body to url and decodes a 200 reply into out.
func postJSON(ctx context.Context, provider, url string, header http.Header, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = header
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: provider, Status: resp.StatusCode, Body: string(respData)}
	}
	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

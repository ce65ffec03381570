package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// OpenAI implements Provider over an OpenAI-compatible chat completions
// endpoint. Blackbox is served by the same client with its own path and
// sampling settings.
type OpenAI struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	path    string
	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	legacyMaxTokens bool
	temperature     *float64
}

// NewBlackbox returns a client for the Blackbox AI chat completions API. It
// sends max_tokens and a fixed temperature of 0.3.
func NewBlackbox(apiKey, model, baseURL string) *OpenAI {
	temp := 0.3
	return &OpenAI{
		name:            "blackbox",
		apiKey:          apiKey,
		model:           model,
		baseURL:         baseURL,
		path:            "/chat/completions",
		legacyMaxTokens: true,
		temperature:     &temp,
	}
}

func (o *OpenAI) Name() string {
	if o.name == "" {
		return "openai"
	}
	return o.name
}

type openaiRequest struct {
	Model               string          `json:"model"`
	Messages            []openaiMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	MaxTokens           int             `json:"max_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (o *OpenAI) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	var messages []openaiMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: req.UserMessage})

	body := openaiRequest{
		Model:       model,
		Messages:    messages,
		Temperature: o.temperature,
	}
	if req.MaxTokens > 0 {
		if o.legacyMaxTokens {
			body.MaxTokens = req.MaxTokens
		} else {
			body.MaxCompletionTokens = req.MaxTokens
		}
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	path := o.path
	if path == "" {
		path = "/v1/chat/completions"
	}
	var apiResp openaiResponse
	if err := postJSON(ctx, o.Name(), strings.TrimRight(o.baseURL, "/")+path, header, body, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("%s API error: %s: %s", o.Name(), apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%s API returned no choices", o.Name())
	}

	return &GenerateResponse{
		Content:   apiResp.Choices[0].Message.Content,
		Model:     apiResp.Model,
		TokensIn:  apiResp.Usage.PromptTokens,
		TokensOut: apiResp.Usage.CompletionTokens,
	}, nil
}

package openai

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// Engine talks to the Chat Completions API. The same engine serves any
// OpenAI-compatible provider (DeepSeek) through NewCompatible.
type Engine struct {
	APIKey string
	Model  string

	name   string
	client openaiclient.Client
}

func New(apiKey, model string) *Engine {
	return newEngine("gpt", apiKey, model, "")
}

// NewCompatible builds an engine for an OpenAI-compatible endpoint.
func NewCompatible(name, apiKey, model, baseURL string) *Engine {
	return newEngine(name, apiKey, model, baseURL)
}

func newEngine(name, apiKey, model, baseURL string) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeBaseURL(baseURL); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	return &Engine{
		APIKey: apiKey,
		Model:  strings.TrimSpace(model),
		name:   name,
		client: openaiclient.NewClient(opts...),
	}
}

func (e *Engine) Name() string     { return e.name }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("%s: api key is empty", e.name)
	}
	resp, err := e.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model: openaiclient.ChatModel(e.Model),
		Messages: []openaiclient.ChatCompletionMessageParamUnion{
			openaiclient.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", e.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(e.name + " chat: no choices")
	}
	txt := resp.Choices[0].Message.Content
	if strings.TrimSpace(txt) == "" {
		return "", errors.New(e.name + " chat: empty response")
	}
	return txt, nil
}

// normalizeBaseURL makes sure a custom endpoint ends in /v1, the prefix the
// client expects in front of /chat/completions.
func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

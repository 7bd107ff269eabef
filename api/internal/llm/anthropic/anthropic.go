package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const maxTokens = 2048

type Engine struct {
	APIKey string
	Model  string

	client anthropicclient.Client
}

func New(apiKey, model, baseURL string) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(baseURL); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	return &Engine{
		APIKey: apiKey,
		Model:  strings.TrimSpace(model),
		client: anthropicclient.NewClient(opts...),
	}
}

func (e *Engine) Name() string     { return "claude" }
func (e *Engine) GetModel() string { return e.Model }

// Generate returns the concatenated text blocks of the reply.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("ANTHROPIC_API_KEY is empty")
	}
	msg, err := e.client.Messages.New(ctx, anthropicclient.MessageNewParams{
		Model:     anthropicclient.Model(e.Model),
		MaxTokens: maxTokens,
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(anthropicclient.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var full strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" || block.Text == "" {
			continue
		}
		full.WriteString(block.Text)
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", errors.New("claude messages: empty response")
	}
	return full.String(), nil
}

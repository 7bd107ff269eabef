package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"knowcode/api/internal/highlight"
	"knowcode/api/internal/util"
)

// Generator is a single prompt-in, text-out model call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one explanation. On any upstream failure it already
// holds the fallback pair, so callers never handle an error.
type Result struct {
	Language string `json:"language"`
	Text     string `json:"explanation"`
	Fallback bool   `json:"fallback"`
}

func fallbackResult() Result {
	return Result{Language: FallbackLanguage, Text: FallbackText, Fallback: true}
}

var errEmptyResponse = errors.New("empty model response")

type Explainer struct {
	gen Generator
	log *zap.Logger
}

func New(gen Generator, log *zap.Logger) *Explainer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Explainer{gen: gen, log: log}
}

// Explain detects the language of code and then asks for a two-section
// explanation. The calls are sequential and attempted once each. An empty
// language reply is replaced by a local guess.
func (x *Explainer) Explain(ctx context.Context, code string) Result {
	language, text, err := x.run(ctx, code)
	if err != nil {
		x.log.Warn("explain failed, using fallback", zap.Error(err),
			zap.Int("code_len", len(code)), zap.String("code_head", util.Truncate(code, 80)))
		return fallbackResult()
	}
	return Result{Language: language, Text: text}
}

func (x *Explainer) run(ctx context.Context, code string) (string, string, error) {
	if x.gen == nil {
		return "", "", errors.New("no model configured")
	}

	resp, err := x.gen.Generate(ctx, languagePrompt(code))
	if err != nil {
		return "", "", fmt.Errorf("detect language: %w", err)
	}
	language := strings.TrimSpace(resp)
	if language == "" {
		// no label from the model; guess locally and still ask for the explanation
		language = highlight.DisplayLanguage("", code)
		x.log.Info("empty language reply, using local guess", zap.String("language", language))
	}

	text, err := x.gen.Generate(ctx, explanationPrompt(language, code))
	if err != nil {
		return "", "", fmt.Errorf("explain %s: %w", language, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("explain %s: %w", language, errEmptyResponse)
	}
	return language, text, nil
}

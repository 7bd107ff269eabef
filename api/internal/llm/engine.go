package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnknownEngine = errors.New("unknown llm_name; use gemini | gpt | claude | deepseek")

// Engine is one configured model provider. Generate sends a single user prompt
// and returns the first text part of the reply.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engines holds every provider that has credentials. Nil fields are not configured.
type Engines struct {
	Gemini    Engine
	OpenAI    Engine
	Anthropic Engine
	Deepseek  Engine

	// Default is the llm_name used when a request names none.
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(e.Default)
	}

	var eng Engine
	switch name {
	case "gemini", "google":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	case "claude", "anthropic":
		eng = e.Anthropic
	case "deepseek":
		eng = e.Deepseek
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnknownEngine, llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("llm %q is not configured", name)
	}
	return eng, nil
}

// Available lists the configured engine names in a stable order.
func (e *Engines) Available() []string {
	var out []string
	for _, it := range []struct {
		name string
		eng  Engine
	}{
		{"gemini", e.Gemini},
		{"gpt", e.OpenAI},
		{"claude", e.Anthropic},
		{"deepseek", e.Deepseek},
	} {
		if it.eng != nil {
			out = append(out, it.name)
		}
	}
	return out
}

// Manager remembers the engine each chat picked with /engine.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}

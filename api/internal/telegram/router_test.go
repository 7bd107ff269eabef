package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"knowcode/api/internal/llm"
	"knowcode/api/internal/service"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	for i, m := range b.sent {
		out[i] = m.Text
	}
	return out
}

type namedEngine struct {
	name    string
	replies []string
	calls   int
}

func (e *namedEngine) Name() string     { return e.name }
func (e *namedEngine) GetModel() string { return e.name + "-model" }
func (e *namedEngine) Generate(context.Context, string) (string, error) {
	e.calls++
	return e.replies[(e.calls-1)%len(e.replies)], nil
}

func newRouter(bot *fakeBot) (*Router, *namedEngine, *namedEngine) {
	gem := &namedEngine{name: "gemini", replies: []string{"Python", "**[SYNTAX]**\n* `def` defines\n**[LOGIC]**\nadds"}}
	gpt := &namedEngine{name: "gpt", replies: []string{"Go", "plain answer"}}
	engs := &llm.Engines{Gemini: gem, OpenAI: gpt, Default: "gemini"}
	return &Router{
		Bot:        bot,
		Service:    service.New(engs, nil, 0, nil),
		EngManager: llm.NewManager(gem),
	}, gem, gpt
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestHandleUpdate_Snippet(t *testing.T) {
	bot := &fakeBot{}
	r, gem, _ := newRouter(bot)

	r.HandleUpdate(context.Background(), textUpdate(1, "def add(a, b):\n    return a + b"))

	got := bot.texts()
	if len(got) != 3 {
		t.Fatalf("sent %q", got)
	}
	if got[0] != "<b>Language:</b> Python" || !strings.HasPrefix(got[1], "<b>Syntax</b>") || !strings.HasPrefix(got[2], "<b>Logic</b>") {
		t.Errorf("sent %q", got)
	}
	for _, m := range bot.sent {
		if m.ParseMode != tgbotapi.ModeHTML {
			t.Errorf("parse mode = %q", m.ParseMode)
		}
	}
	if gem.calls != 2 {
		t.Errorf("gemini calls = %d", gem.calls)
	}
}

func TestHandleUpdate_NotCode(t *testing.T) {
	bot := &fakeBot{}
	r, gem, _ := newRouter(bot)

	r.HandleUpdate(context.Background(), textUpdate(1, "hi bot, what can you do"))
	got := bot.texts()
	if len(got) != 1 || got[0] != "This does not look like code." {
		t.Errorf("sent %q", got)
	}
	if gem.calls != 0 {
		t.Error("model called for prose")
	}
}

func TestHandleUpdate_EngineCommand(t *testing.T) {
	bot := &fakeBot{}
	r, _, gpt := newRouter(bot)

	r.HandleUpdate(context.Background(), textUpdate(7, "/engine gpt"))
	if got := r.EngManager.Get(7).Name(); got != "gpt" {
		t.Fatalf("engine = %s", got)
	}
	if got := r.EngManager.Get(8).Name(); got != "gemini" {
		t.Errorf("other chat engine = %s", got)
	}

	r.HandleUpdate(context.Background(), textUpdate(7, "x := 1"))
	if gpt.calls != 2 {
		t.Errorf("gpt calls = %d", gpt.calls)
	}

	r.HandleUpdate(context.Background(), textUpdate(7, "/engine llama"))
	got := bot.texts()
	if last := got[len(got)-1]; !strings.HasPrefix(last, "Unknown engine. Available: gemini | gpt") {
		t.Errorf("last message = %q", last)
	}
	r.HandleUpdate(context.Background(), textUpdate(7, "/engine claude"))
	got = bot.texts()
	if last := got[len(got)-1]; !strings.Contains(last, "not configured") {
		t.Errorf("last message = %q", last)
	}
}

func TestHandleUpdate_EnginePicker(t *testing.T) {
	bot := &fakeBot{}
	r, _, _ := newRouter(bot)

	r.HandleUpdate(context.Background(), textUpdate(3, "/engine"))
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages", len(bot.sent))
	}
	kb, ok := bot.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard = %#v", bot.sent[0].ReplyMarkup)
	}
	data := kb.InlineKeyboard[0][1].CallbackData
	if data == nil || *data != "engine:gpt" {
		t.Fatalf("callback data = %v", data)
	}

	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    *data,
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: 3}},
	}})
	if got := r.EngManager.Get(3).Name(); got != "gpt" {
		t.Errorf("engine after callback = %s", got)
	}
	if len(bot.requests) != 2 {
		t.Errorf("requests = %d, want ack and keyboard edit", len(bot.requests))
	}
}

func TestHandleUpdate_Commands(t *testing.T) {
	bot := &fakeBot{}
	r, _, _ := newRouter(bot)

	r.HandleUpdate(context.Background(), textUpdate(1, "/start"))
	r.HandleUpdate(context.Background(), textUpdate(1, "/health"))
	r.HandleUpdate(context.Background(), textUpdate(1, "/nope"))
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})

	got := bot.texts()
	want := []string{helpText, "✅ OK: gemini (gemini-model)", "Unknown command", "I can only read code sent as text."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestHandleUpdate_Busy(t *testing.T) {
	bot := &fakeBot{}
	r, gem, _ := newRouter(bot)

	if !tryStart(42) {
		t.Fatal("chat 42 unexpectedly busy")
	}
	defer finish(42)

	r.HandleUpdate(context.Background(), textUpdate(42, "x := 1"))
	got := bot.texts()
	if len(got) != 1 || !strings.HasPrefix(got[0], "Still working") {
		t.Errorf("sent %q", got)
	}
	if gem.calls != 0 {
		t.Error("model called while busy")
	}
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knowcode/api/internal/codecheck"
	"knowcode/api/internal/explain"
	"knowcode/api/internal/llm"
	"knowcode/api/internal/service"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Router struct {
	Bot        Sender
	Service    *service.Service
	EngManager *llm.Manager
	Log        *zap.Logger

	// Timeout bounds both model calls for one snippet.
	Timeout time.Duration
}

const helpText = "Send me a code snippet and I will tell you which language it is " +
	"and explain its syntax and logic.\nCommands: /engine, /health"

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	if upd.Message.Text != "" {
		r.handleSnippet(ctx, upd.Message.Chat.ID, upd.Message.Text)
		return
	}
	r.send(upd.Message.Chat.ID, "I can only read code sent as text.")
}

func (r *Router) HandleCommand(m *tgbotapi.Message) {
	cid := m.Chat.ID
	switch m.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "health":
		eng := r.EngManager.Get(cid)
		if eng == nil {
			r.send(cid, "⚠️ no model configured")
			return
		}
		r.send(cid, fmt.Sprintf("✅ OK: %s (%s)", eng.Name(), eng.GetModel()))
	case "engine":
		r.handleEngineCommand(cid, m.CommandArguments())
	default:
		r.send(cid, "Unknown command")
	}
}

// handleEngineCommand switches the chat's model:
//
//	/engine            shows the picker
//	/engine <name>     gemini | gpt | claude | deepseek
func (r *Router) handleEngineCommand(chatID int64, args string) {
	name := strings.ToLower(strings.TrimSpace(args))
	if name == "" {
		cur := "none"
		if eng := r.EngManager.Get(chatID); eng != nil {
			cur = eng.Name()
		}
		msg := tgbotapi.NewMessage(chatID, "Current engine: "+cur+"\nPick another one:")
		msg.ReplyMarkup = makeEngineKeyboard(r.Service.Available())
		r.sendMsg(msg)
		return
	}
	r.switchEngine(chatID, name)
}

func (r *Router) switchEngine(chatID int64, name string) {
	eng, err := r.Service.Engine(name)
	if err != nil {
		if errors.Is(err, llm.ErrUnknownEngine) {
			r.send(chatID, "Unknown engine. Available: "+strings.Join(r.Service.Available(), " | "))
			return
		}
		r.send(chatID, "❌ "+err.Error())
		return
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, fmt.Sprintf("✅ Engine: %s (%s)", eng.Name(), eng.GetModel()))
}

func (r *Router) handleSnippet(ctx context.Context, chatID int64, code string) {
	if err := codecheck.Validate(code); err != nil {
		r.send(chatID, capitalize(err.Error())+".")
		return
	}
	eng := r.EngManager.Get(chatID)
	if eng == nil {
		r.send(chatID, "⚠️ no model configured")
		return
	}
	if !tryStart(chatID) {
		r.send(chatID, "Still working on your previous snippet, one moment.")
		return
	}
	defer finish(chatID)

	r.sendAction(chatID, tgbotapi.ChatTyping)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 70 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := r.Service.ExplainWith(ctx, eng, code)
	doc := explain.BuildDocument(out.Language, out.Text)
	for _, part := range FormatDocument(doc) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		r.sendMsg(msg)
	}
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil && r.Log != nil {
		r.Log.Warn("telegram send failed", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

func (r *Router) sendAction(chatID int64, action string) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, action))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

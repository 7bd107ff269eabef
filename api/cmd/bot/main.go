package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"knowcode/api/internal/app"
	"knowcode/api/internal/config"
	"knowcode/api/internal/llm"
	"knowcode/api/internal/logger"
	"knowcode/api/internal/telegram"
	"knowcode/api/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	if err := cfg.Validate(); err != nil {
		lg.Fatal("invalid config", zap.Error(err))
	}
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		lg.Fatal("missing required env TELEGRAM_BOT_TOKEN")
	}

	// the bot process serves the web app too, so /healthz and the webhook share a port
	application, err := app.New(lg, cfg)
	if err != nil {
		lg.Fatal("failed to initialize app", zap.Error(err))
	}
	defer application.Shutdown()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		lg.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false

	def, err := application.Service().Engine("")
	if err != nil {
		lg.Fatal("default engine", zap.Error(err))
	}
	r := &telegram.Router{
		Bot:        bot,
		Service:    application.Service(),
		EngManager: llm.NewManager(def),
		Log:        lg,
		Timeout:    cfg.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL != "" {
		if err := setupWebhook(ctx, application, bot, r, webhookURL, lg); err != nil {
			lg.Fatal("webhook", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("http listening", zap.String("addr", srv.Addr), zap.Bool("webhook", webhookURL != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	if webhookURL == "" {
		// a webhook left over from a previous deploy blocks getUpdates
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			lg.Warn("delete webhook", zap.Error(err))
		}
		lg.Info("polling for updates")
		telegram.RunPolling(ctx, bot, lg, func(upd tgbotapi.Update) {
			r.HandleUpdate(ctx, upd)
		})
	} else {
		<-ctx.Done()
	}

	lg.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
}

func setupWebhook(ctx context.Context, application *app.App, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, lg *zap.Logger) error {
	// secret webhook path derived from the token
	path := "/webhook/" + util.ShortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	application.Handle(http.MethodPost, path, func(c *gin.Context) {
		upd, err := bot.HandleUpdate(c.Request)
		if err != nil {
			lg.Warn("bad webhook update", zap.Error(err))
			c.Status(http.StatusBadRequest)
			return
		}
		go r.HandleUpdate(ctx, *upd)
		c.Status(http.StatusOK)
	})
	lg.Info("webhook registered", zap.String("path", path))
	return nil
}

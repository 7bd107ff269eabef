package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"knowcode/api/internal/config"
	"knowcode/api/internal/handle"
	"knowcode/api/internal/highlight"
	"knowcode/api/internal/llm"
	"knowcode/api/internal/llm/anthropic"
	"knowcode/api/internal/llm/gemini"
	"knowcode/api/internal/llm/openai"
	"knowcode/api/internal/middleware"
	"knowcode/api/internal/service"
	"knowcode/api/internal/store"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.Config
	router *gin.Engine
	svc    *service.Service
	db     *sql.DB
	rdb    *redis.Client
	logger *zap.Logger
}

// Deps is what the router needs; optional parts may be nil.
type Deps struct {
	Service     *service.Service
	Highlighter *highlight.Highlighter
	Limiter     middleware.Counter
	Ping        func(ctx context.Context) error
	Logger      *zap.Logger
}

// New initializes the application: engines, then the optional cache DB and
// Redis, then routes.
func New(logger *zap.Logger, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	var cache service.Cache
	var ping func(ctx context.Context) error
	if cfg.DatabaseURL != "" {
		db, err := store.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		repo := store.NewExplanationRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database migrate: %w", err)
		}
		logger.Info("explanation cache enabled", zap.String("db", store.SafeDSNSummary(cfg.DatabaseURL)))
		a.db, cache, ping = db, repo, repo.Ping
	}

	var limiter middleware.Counter
	if cfg.RedisURL != "" {
		rdb, err := middleware.ConnectRedis(cfg.RedisURL)
		if err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("rate limiting enabled", zap.Int("per_minute", cfg.RateLimitPerMinute))
		a.rdb, limiter = rdb, middleware.NewRedisCounter(rdb)
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	a.svc = service.New(BuildEngines(cfg), cache, cfg.CacheTTL, logger)
	a.router = NewRouter(cfg, Deps{
		Service:     a.svc,
		Highlighter: highlight.New(cfg.HighlightStyle),
		Limiter:     limiter,
		Ping:        ping,
		Logger:      logger,
	})
	return a, nil
}

// BuildEngines creates an engine for every provider with an api key.
func BuildEngines(cfg *config.Config) *llm.Engines {
	engs := &llm.Engines{Default: config.CanonicalLLM(cfg.DefaultLLM)}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.AnthropicAPIKey != "" {
		engs.Anthropic = anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
	}
	if cfg.DeepseekAPIKey != "" {
		engs.Deepseek = openai.NewCompatible("deepseek", cfg.DeepseekAPIKey, cfg.DeepseekModel, cfg.DeepseekBaseURL)
	}
	return engs
}

// NewRouter registers middleware and routes.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	h := handle.New(d.Service, d.Highlighter, log, handle.Options{
		Timeout: cfg.RequestTimeout,
		Ping:    d.Ping,
	})
	limit := middleware.RateLimit(d.Limiter, cfg.RateLimitPerMinute, log)

	router.GET("/healthz", h.Healthz)
	router.GET("/", h.Page)
	router.POST("/", limit, h.Page)

	v1 := router.Group("/v1")
	v1.POST("/explain", limit, h.Explain)
	v1.POST("/render", h.Render)

	return router
}

// Addr returns the listen address.
func (a *App) Addr() string { return ":" + a.cfg.Port }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

func (a *App) Service() *service.Service { return a.svc }

// Handle registers an extra route, e.g. the Telegram webhook.
func (a *App) Handle(method, path string, h gin.HandlerFunc) {
	a.router.Handle(method, path, h)
}

// Shutdown closes the database and Redis connections.
func (a *App) Shutdown() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("db close", zap.Error(err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("redis close", zap.Error(err))
		}
	}
}

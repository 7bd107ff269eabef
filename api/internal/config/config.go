package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       string `yaml:"port"`
	AppEnv     string `yaml:"app_env"`
	LogLevel   string `yaml:"log_level"`
	DefaultLLM string `yaml:"default_llm"`

	GeminiAPIKey     string `yaml:"gemini_api_key"`
	GeminiModel      string `yaml:"gemini_model"`
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	OpenAIModel      string `yaml:"openai_model"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	AnthropicModel   string `yaml:"anthropic_model"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	DeepseekAPIKey   string `yaml:"deepseek_api_key"`
	DeepseekModel    string `yaml:"deepseek_model"`
	DeepseekBaseURL  string `yaml:"deepseek_base_url"`

	// DatabaseURL enables the explanation cache; CacheTTL 0 keeps entries forever.
	DatabaseURL string        `yaml:"database_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	// RedisURL enables per-IP rate limiting of explain requests.
	RedisURL           string `yaml:"redis_url"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`

	AllowedOrigins []string      `yaml:"allowed_origins"`
	HighlightStyle string        `yaml:"highlight_style"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
}

func defaults() *Config {
	return &Config{
		Port:               "8000",
		AppEnv:             "production",
		LogLevel:           "info",
		DefaultLLM:         "gemini",
		GeminiModel:        "gemini-2.0-flash",
		OpenAIModel:        "gpt-4o-mini",
		AnthropicModel:     "claude-3-5-haiku-latest",
		DeepseekModel:      "deepseek-chat",
		DeepseekBaseURL:    "https://api.deepseek.com",
		RateLimitPerMinute: 20,
		AllowedOrigins:     []string{"*"},
		HighlightStyle:     "vs",
		RequestTimeout:     70 * time.Second,
	}
}

// Load reads .env (if present), then the YAML file named by KNOWCODE_CONFIG
// (if set), then the environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := defaults()
	if path := strings.TrimSpace(os.Getenv("KNOWCODE_CONFIG")); path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.loadEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DefaultLLM = strings.ToLower(getEnv("DEFAULT_LLM", c.DefaultLLM))

	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = getEnv("ANTHROPIC_MODEL", c.AnthropicModel)
	c.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", c.AnthropicBaseURL)
	c.DeepseekAPIKey = getEnv("DEEPSEEK_API_KEY", c.DeepseekAPIKey)
	c.DeepseekModel = getEnv("DEEPSEEK_MODEL", c.DeepseekModel)
	c.DeepseekBaseURL = getEnv("DEEPSEEK_BASE_URL", c.DeepseekBaseURL)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.HighlightStyle = getEnv("HIGHLIGHT_STYLE", c.HighlightStyle)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)

	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	var err error
	if c.CacheTTL, err = getEnvDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute); err != nil {
		return err
	}
	return nil
}

// Validate checks that at least one provider is usable and that the default
// provider is among them.
func (c *Config) Validate() error {
	keys := map[string]string{
		"gemini":   c.GeminiAPIKey,
		"gpt":      c.OpenAIAPIKey,
		"claude":   c.AnthropicAPIKey,
		"deepseek": c.DeepseekAPIKey,
	}

	configured := false
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			configured = true
			break
		}
	}
	if !configured {
		return errors.New("no LLM api key configured; set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or DEEPSEEK_API_KEY")
	}

	name := CanonicalLLM(c.DefaultLLM)
	key, ok := keys[name]
	if !ok {
		return fmt.Errorf("unknown DEFAULT_LLM %q", c.DefaultLLM)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("DEFAULT_LLM %q has no api key", c.DefaultLLM)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0, got %d", c.RateLimitPerMinute)
	}
	return nil
}

// CanonicalLLM maps provider aliases to the names used across the app.
func CanonicalLLM(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "google":
		return "gemini"
	case "openai":
		return "gpt"
	case "anthropic":
		return "claude"
	default:
		return n
	}
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", k, err)
	}
	return n, nil
}

func getEnvDuration(k string, def time.Duration) (time.Duration, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", k, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

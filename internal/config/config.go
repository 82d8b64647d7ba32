package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all environmentally dependent settings for the TasteCanvas API.
type Config struct {
	APIPort        int           `env:"TC_PORT" envDefault:"8080"`
	DefaultTimeout time.Duration `env:"TC_DEFAULT_TIMEOUT" envDefault:"60s"`

	// Cultural graph provider (Qloo)
	QlooBaseURL string  `env:"TC_QLOO_BASE_URL" envDefault:"https://hackathon.api.qloo.com"`
	QlooAPIKey  string  `env:"TC_QLOO_API_KEY"`
	QlooRPS     float64 `env:"TC_QLOO_RPS" envDefault:"10"`

	// Narrative generator
	GeminiAPIKey string `env:"TC_GEMINI_API_KEY"`
	GeminiModel  string `env:"TC_GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	UseLocalLLM  bool   `env:"TC_USE_LOCAL_LLM" envDefault:"false"`
	OllamaHost   string `env:"TC_OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel  string `env:"TC_OLLAMA_MODEL" envDefault:"llama3"`

	// Resolution budget
	ResolveMaxAttempts int `env:"TC_RESOLVE_MAX_ATTEMPTS" envDefault:"5"`

	// Profile result cache
	CacheDBPath string        `env:"TC_CACHE_DB_PATH" envDefault:"tastecanvas.db"`
	CacheTTL    time.Duration `env:"TC_CACHE_TTL" envDefault:"24h"`
}

// Validate ensures that all required configuration is present and valid.
// Missing provider credentials are a fatal startup condition, never retried.
func (c *Config) Validate() error {
	if c.QlooAPIKey == "" {
		return fmt.Errorf("TC_QLOO_API_KEY is required")
	}
	if !c.UseLocalLLM && c.GeminiAPIKey == "" {
		return fmt.Errorf("TC_GEMINI_API_KEY is required when TC_USE_LOCAL_LLM is false")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("TC_PORT must be between 1 and 65535")
	}
	if c.ResolveMaxAttempts < 1 {
		return fmt.Errorf("TC_RESOLVE_MAX_ATTEMPTS must be at least 1")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("TC_CACHE_TTL must be positive")
	}
	return nil
}

// Load reads settings from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

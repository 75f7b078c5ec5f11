package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded once at process start and
// passed by injection; there is no global instance.
type Config struct {
	App    AppConfig
	Server ServerConfig
	AI     AIConfig
	Debate DebateConfig
	Market MarketConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"insightflow"`
	Version  string `envconfig:"APP_VERSION" default:"1.0.0"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port        int      `envconfig:"SERVER_PORT" default:"8000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type AIConfig struct {
	APIKey    string `envconfig:"OPENAI_API_KEY"`
	BaseURL   string `envconfig:"OPENAI_BASE_URL"`
	Model     string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxTokens int    `envconfig:"OPENAI_MAX_TOKENS" default:"4096"`
}

type DebateConfig struct {
	DefaultMaxRounds int `envconfig:"DEFAULT_MAX_ROUNDS" default:"1"`
	NewsCount        int `envconfig:"NEWS_COUNT" default:"10"`
}

type MarketConfig struct {
	TapeTTL     time.Duration `envconfig:"TICKER_TAPE_TTL" default:"5m"`
	TapeWorkers int           `envconfig:"TICKER_TAPE_WORKERS" default:"10"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

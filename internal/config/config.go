package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, populated from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// LLM provider selection and credentials.
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "anthropic"
	ModelName       string `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// Session storage. "memory" keeps sessions in-process, "redis"
	// persists them with a TTL.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Filesystem layout.
	DataDir       string `env:"DATA_DIR" envDefault:"./data"`
	RecordingsDir string `env:"RECORDINGS_DIR" envDefault:"./recordings"`

	// Default scenario file served when a create request names none.
	DefaultScenario string `env:"DEFAULT_SCENARIO" envDefault:"cult_ritual.json"`

	// External inference services.
	TranscriberURL string `env:"TRANSCRIBER_URL" envDefault:"http://localhost:9000"`
	ClassifierURL  string `env:"CLASSIFIER_URL" envDefault:"http://localhost:9001"`

	// Evidence aggregation overrides. Defaults match the sampling
	// policy's own defaults.
	MinSegmentSeconds    float64 `env:"MIN_SEGMENT_SECONDS" envDefault:"0.3"`
	FrameIntervalSeconds float64 `env:"FRAME_INTERVAL_SECONDS" envDefault:"0.1"`
	ConfidenceFloor      float64 `env:"CONFIDENCE_FLOOR" envDefault:"0.1"`
	AdvancedMetrics      bool    `env:"ADVANCED_METRICS" envDefault:"true"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.LLMProvider {
	case "openai", "anthropic":
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
	switch cfg.StorageBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}

	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

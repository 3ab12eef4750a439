package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. LESSONDECK_SERVER_PORT.
const EnvPrefix = "LESSONDECK"

// Default values for optional settings.
const (
	DefaultPort               = 8080
	DefaultLogLevel           = "info"
	DefaultTextModel          = "gemini-2.0-flash"
	DefaultImageModel         = "gemini-2.0-flash-preview-image-generation"
	DefaultMaxRetries         = 3
	DefaultRetryBaseDelayMs   = 2000
	DefaultImageMode          = "per_slide"
	DefaultImageWorkers       = 1
	DefaultProgressIntervalMs = 500
	DefaultProgressStep       = 5
)

// requiredKeys have no default and must be bound explicitly so that
// AutomaticEnv picks them up during Unmarshal.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
	"cache.redis_addr",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadGeneration loads configuration for tools that only run the deck pipeline.
// Only the llm, generation and cache sections are validated.
func LoadGeneration() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	for _, section := range []interface{}{cfg.LLM, cfg.Generation, cfg.Cache} {
		if err := validate.Struct(section); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// LoadAuth loads configuration for tools that only issue tokens.
// Only the auth section is validated.
func LoadAuth() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg.Auth); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func read() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.text_model", DefaultTextModel)
	v.SetDefault("llm.image_model", DefaultImageModel)
	v.SetDefault("llm.max_retries", DefaultMaxRetries)
	v.SetDefault("llm.retry_base_delay_ms", DefaultRetryBaseDelayMs)

	v.SetDefault("generation.image_mode", DefaultImageMode)
	v.SetDefault("generation.image_workers", DefaultImageWorkers)
	v.SetDefault("generation.progress_interval_ms", DefaultProgressIntervalMs)
	v.SetDefault("generation.progress_step", DefaultProgressStep)

	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl_minutes", 24*60)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("task.deck_timeout_minutes", 10)

	v.SetDefault("export.font_regular", "")
	v.SetDefault("export.font_bold", "")
}

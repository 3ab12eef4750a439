package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Task       TaskConfig       `mapstructure:"task"`
	Export     ExportConfig     `mapstructure:"export"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	// MigrateOnStart applies embedded migrations before serving.
	MigrateOnStart bool `mapstructure:"migrate_on_start"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	// TextModel answers content, game-idea and visual-prompt requests.
	TextModel string `mapstructure:"text_model" validate:"required"`
	// ImageModel must support the IMAGE response modality.
	ImageModel string `mapstructure:"image_model" validate:"required"`
	// MaxRetries is the total number of attempts made on rate-limit errors.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=1,lte=10"`
	// RetryBaseDelayMs is the delay before the first retry; each retry doubles it.
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" validate:"gt=0"`
}

// GenerationConfig controls the deck pipeline.
type GenerationConfig struct {
	// ImageMode is "per_slide" (one request per slide) or "combined".
	ImageMode string `mapstructure:"image_mode" validate:"required,oneof=per_slide combined"`
	// ImageWorkers bounds concurrent per-slide image requests. 1 keeps them sequential.
	ImageWorkers int `mapstructure:"image_workers" validate:"gte=1,lte=6"`
	// ProgressIntervalMs is the tick of the simulated progress counter.
	ProgressIntervalMs int `mapstructure:"progress_interval_ms" validate:"gt=0"`
	// ProgressStep is added on every tick.
	ProgressStep int `mapstructure:"progress_step" validate:"gt=0,lt=100"`
}

// CacheConfig configures the optional Redis image cache.
type CacheConfig struct {
	// RedisAddr enables the cache when non-empty.
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db"    validate:"gte=0"`
	TTLMinutes int    `mapstructure:"ttl_minutes" validate:"gte=0"`
}

// TaskConfig configures the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize           int `mapstructure:"queue_size" validate:"gte=1"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gte=1"`
	DeckTimeoutMinutes  int `mapstructure:"deck_timeout_minutes" validate:"gte=1"`
}

// ExportConfig selects the fonts used for slide snapshots and PDFs.
// Empty paths use the bundled Go fonts.
type ExportConfig struct {
	FontRegular string `mapstructure:"font_regular"`
	FontBold    string `mapstructure:"font_bold"`
}

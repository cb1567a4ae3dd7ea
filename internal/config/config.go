package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"omitempty,gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" validate:"required,gt=0"`
}

// WorkerConfig contains settings for the background evaluation worker and
// the request-intake cooldown it is paired with.
type WorkerConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" validate:"required,gt=0"`
	BatchSize       int `mapstructure:"batch_size"        validate:"required,gt=0"`

	// CooldownSec is the minimum time an activity waits between accepted
	// evaluation requests.
	CooldownSec int `mapstructure:"cooldown_sec" validate:"required,gt=0"`

	// StuckAgeMinutes is how long a request may sit in processing before the
	// startup sweep fails it. Covers rows orphaned by a crash.
	StuckAgeMinutes int `mapstructure:"stuck_age_minutes" validate:"required,gt=0"`

	// PollHintSec is returned to clients as next_poll_after_sec on enqueue.
	PollHintSec int `mapstructure:"poll_hint_sec" validate:"required,gt=0"`
}

package config

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Timezone is the IANA zone used to decide where a learner's day starts.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL         string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains the settings needed to validate bearer tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
}

// LLMConfig contains the Gemini integration settings. An empty API key
// disables the AI-backed import endpoints.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// Enabled reports whether an API key was configured.
func (c LLMConfig) Enabled() bool {
	return c.GeminiAPIKey != ""
}

// TaskConfig contains settings for the background persistence runner.
type TaskConfig struct {
	WorkerCount          int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize            int `mapstructure:"queue_size" validate:"required,gt=0"`
	MaxAttempts          int `mapstructure:"max_attempts" validate:"required,gt=0"`
	RetryIntervalMinutes int `mapstructure:"retry_interval_minutes" validate:"required,gt=0"`
	StuckTaskAgeMinutes  int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

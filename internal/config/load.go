package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "VOCAB"

// keys that have no default but must still be visible to viper's env lookup.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "vocabflow.db")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.model_name", "gemini-3-flash-preview")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.max_attempts", 5)
	v.SetDefault("task.retry_interval_minutes", 1)
	v.SetDefault("task.stuck_task_age_minutes", 10)
}

// Load configuration from defaults, an optional config.yaml in the working
// directory and environment variables. Environment variables take precedence
// over values from the config file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

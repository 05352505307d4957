package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the process-wide settings read from the environment.
// DatabaseDSN has no default on purpose: the service must not come up
// without an explicit storage backend.
type Config struct {
	AppPort         string `mapstructure:"APP_PORT" validate:"required"`
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	RabbitMQURL     string `mapstructure:"RABBITMQ_URL"`
	CORSAllowOrigin string `mapstructure:"CORS_ALLOW_ORIGIN" validate:"required"`
}

// Load reads configuration from environment variables and validates it
// against the required-field schema. Any violation is returned as an
// error so the caller can fail before a listener starts.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CORS_ALLOW_ORIGIN", "http://localhost:3000")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("invalid configuration: missing required setting %s", verrs[0].StructField())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

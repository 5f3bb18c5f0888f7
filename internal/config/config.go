package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration, populated from environment
// variables. JWT_SECRET and DATABASE_URL have no defaults on purpose: the
// process must not start without them.
type Config struct {
	Port          string `env:"PORT" envDefault:"3000"`
	DatabaseURL   string `env:"DATABASE_URL,notEmpty"`
	JWTSecret     string `env:"JWT_SECRET,notEmpty"`
	TokenTTLHours int    `env:"TOKEN_TTL_HOURS" envDefault:"168"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	AuditBuffer        int `env:"AUDIT_BUFFER" envDefault:"256"`
	EventRetentionDays int `env:"EVENT_RETENTION_DAYS" envDefault:"90"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.TokenTTLHours <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	return &cfg, nil
}

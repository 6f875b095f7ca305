package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"FinanceTracker"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Storage struct {
		Backend    Backend `envconfig:"BACKEND" default:"sqlite"`
		SQLitePath string  `envconfig:"SQLITE_PATH" default:"financetracker.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"financetracker"`
	}

	Auth struct {
		Secret           string        `envconfig:"AUTH_SECRET"`
		TokenTTL         time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
		ResetTTL         time.Duration `envconfig:"AUTH_RESET_TTL" default:"1h"`
		DegradedProfiles bool          `envconfig:"AUTH_DEGRADED_PROFILES" default:"true"`
	}

	// AMQP is optional; without a URL mails are only logged.
	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"financetracker.mail"`
		Queue    string `envconfig:"AMQP_QUEUE" default:"financetracker.mail.outbox"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	TUI struct {
		LogFile string `envconfig:"TUI_LOG_FILE" default:"financetracker-tui.log"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate checks rules that span several settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND %q", c.Storage.Backend))
	}

	if len(c.Auth.Secret) < 16 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 16 characters"))
	}

	if c.Auth.TokenTTL <= 0 || c.Auth.ResetTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL and AUTH_RESET_TTL must be positive"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

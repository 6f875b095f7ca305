package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/config"
)

const secret = "0123456789abcdef0123"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", secret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "FinanceTracker", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTTL)
	assert.True(t, cfg.Auth.DegradedProfiles)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.AMQP.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", secret)
	t.Setenv("BACKEND", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "ana")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("AUTH_DEGRADED_PROFILES", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://app.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://ana:pw@db:5432/ledger?sslmode=disable", cfg.ConnectionString())
	assert.False(t, cfg.Auth.DegradedProfiles)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(*config.Config) {},
		},
		{
			name:    "MissingSecret",
			mutate:  func(c *config.Config) { c.Auth.Secret = "" },
			wantErr: "AUTH_SECRET",
		},
		{
			name:    "UnknownBackend",
			mutate:  func(c *config.Config) { c.Storage.Backend = "mongo" },
			wantErr: `unknown BACKEND "mongo"`,
		},
		{
			name:    "SQLiteWithoutPath",
			mutate:  func(c *config.Config) { c.Storage.SQLitePath = " " },
			wantErr: "SQLITE_PATH",
		},
		{
			name:    "BadLogFormat",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.Storage.Backend = config.BackendSQLite
			cfg.Storage.SQLitePath = "test.db"
			cfg.Auth.Secret = secret
			cfg.Auth.TokenTTL = time.Hour
			cfg.Auth.ResetTTL = time.Hour
			cfg.Log.Format = "text"

			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("s", 32)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DATABASE_DSN", "file:taskflow.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "sqlite3", cfg.DBDriver)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 720*time.Hour, cfg.RememberTTL)
	require.Equal(t, 5, cfg.LoginRateLimit)
	require.Equal(t, time.Minute, cfg.LoginRateWindow)
	require.Empty(t, cfg.AllowedOrigins)
	require.False(t, cfg.TrustProxy)
	require.Equal(t, "file:taskflow.db", cfg.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "tracker")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "tasks")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LOGIN_RATE_LIMIT", "10")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.ServerPort)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, 10, cfg.LoginRateLimit)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.True(t, cfg.TrustProxy)
	require.Equal(t, "host=db user=tracker password=pw dbname=tasks port=5432 sslmode=disable", cfg.DSN())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7000\"\nlog_format: text\ndatabase_dsn: \":memory:\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.ServerPort)
	require.Equal(t, "json", cfg.LogFormat, "environment wins over the file")
	require.Equal(t, ":memory:", cfg.DatabaseDSN)
}

func TestValidate(t *testing.T) {
	base := Config{
		DBDriver: "sqlite3", DatabaseDSN: ":memory:", JWTSecret: secret,
		TokenTTL: time.Hour, RememberTTL: time.Hour, LoginRateLimit: 1, LoginRateWindow: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, wantErr: "DATABASE_DSN"},
		{name: "postgres without user", mutate: func(c *Config) {
			c.DBDriver, c.DatabaseDSN = "postgres", ""
			c.PostgresPassword, c.PostgresDB = "pw", "db"
		}, wantErr: "POSTGRES_USER"},
		{name: "zero rate limit", mutate: func(c *Config) { c.LoginRateLimit = 0 }, wantErr: "LOGIN_RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

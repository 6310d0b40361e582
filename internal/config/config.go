// Package config loads service settings from the environment, an optional
// .env file and an optional YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSecretLen = 32

type Config struct {
	ServerPort          string        `mapstructure:"server_port"`
	DBDriver            string        `mapstructure:"db_driver"`
	DatabaseDSN         string        `mapstructure:"database_dsn"`
	PostgresHost        string        `mapstructure:"postgres_host"`
	PostgresPort        string        `mapstructure:"postgres_port"`
	PostgresUser        string        `mapstructure:"postgres_user"`
	PostgresPassword    string        `mapstructure:"postgres_password"`
	PostgresDB          string        `mapstructure:"postgres_db"`
	JWTSecret           string        `mapstructure:"jwt_secret"`
	TokenTTL            time.Duration `mapstructure:"token_ttl"`
	RememberTTL         time.Duration `mapstructure:"remember_ttl"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`
	Env                 string        `mapstructure:"env"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
	LoginRateLimit      int           `mapstructure:"login_rate_limit"`
	LoginRateWindow     time.Duration `mapstructure:"login_rate_window"`
	TrustProxy          bool          `mapstructure:"trust_proxy"`
	AllowedOrigins      []string      `mapstructure:"-"`
}

var defaults = map[string]any{
	"server_port":           "8080",
	"db_driver":             "sqlite3",
	"database_dsn":          "",
	"postgres_host":         "localhost",
	"postgres_port":         "5432",
	"postgres_user":         "",
	"postgres_password":     "",
	"postgres_db":           "",
	"jwt_secret":            "",
	"token_ttl":             "24h",
	"remember_ttl":          "720h",
	"log_level":             "info",
	"log_format":            "json",
	"env":                   "dev",
	"shutdown_grace_period": "5s",
	"login_rate_limit":      5,
	"login_rate_window":     "1m",
	"trust_proxy":           false,
	"allowed_origins":       "",
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the process
// environment. Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLen)
	}
	switch c.DBDriver {
	case "sqlite3":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN must be set for sqlite3")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			for env, val := range map[string]string{
				"POSTGRES_USER":     c.PostgresUser,
				"POSTGRES_PASSWORD": c.PostgresPassword,
				"POSTGRES_DB":       c.PostgresDB,
			} {
				if val == "" {
					return fmt.Errorf("environment variable %s must be set", env)
				}
			}
		}
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported (use sqlite3 or postgres)", c.DBDriver)
	}
	if c.TokenTTL <= 0 || c.RememberTTL <= 0 {
		return errors.New("TOKEN_TTL and REMEMBER_TTL must be positive")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	return nil
}

// DSN returns DATABASE_DSN, or builds a postgres DSN from the POSTGRES_* settings.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

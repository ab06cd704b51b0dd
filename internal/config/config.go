package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string // application environment (e.g. "development", "production")
	Port        string // HTTP port to listen on
	LogLevel    string // zap level: debug, info, warn, error
	DBDriver    string // "mysql" or "sqlite3"
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	DBPath      string // SQLite database file
	AMQPURL     string // RabbitMQ URL; events are discarded when empty
	MetricsPath string // path serving Prometheus metrics
}

// Load reads an optional .env file and then the environment.  Missing
// required variables are reported together in a single error.
func Load() (Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	r := &reader{}
	cfg := Config{
		Env:         envStr("APP_ENV", "development"),
		Port:        envStr("APP_PORT", "5000"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		DBDriver:    envStr("DB_DRIVER", "mysql"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		AMQPURL:     amqpURL(),
		MetricsPath: envStr("METRICS_PATH", "/metrics"),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = r.must("DB_USER")
		cfg.DBHost = r.must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = r.must("DB_NAME")
	case "sqlite3":
		cfg.DBPath = envStr("DB_PATH", "fyyur.db")
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if len(r.missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(r.missing, ", "))
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// reader collects the names of required variables that are unset.
type reader struct {
	missing []string
}

// must retrieves the value of a required environment variable.
func (r *reader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.missing = append(r.missing, key)
	}
	return v
}

func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port      string
	Transport string

	// Identity
	AuthMode       string
	JWTSecret      string
	JWTExpiresIn   time.Duration
	GitHubClientID string

	// Backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// Postgres
	DatabaseURL  string
	PGMinConns   int
	PGMaxConns   int
	PGRequireSSL bool

	// Taxonomy
	CategoriesPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:      getEnv("PORT", "8081"),
		Transport: getEnv("TRANSPORT", "stdio"),

		AuthMode:       getEnv("AUTH_MODE", "selfserve"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiresIn:   getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		GitHubClientID: getEnv("GITHUB_CLIENT_ID", ""),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expensed.db"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		PGMinConns:   getEnvInt("PG_MIN_CONNS", 1),
		PGMaxConns:   getEnvInt("PG_MAX_CONNS", 20),
		PGRequireSSL: getEnvBool("PG_REQUIRE_SSL", true),

		CategoriesPath: getEnv("CATEGORIES_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expensed"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate transport
	if c.Transport != "stdio" && c.Transport != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport '%s': must be 'stdio' or 'http'", c.Transport))
	}

	// Validate port when serving HTTP
	if c.Transport == "http" {
		if port, err := strconv.Atoi(c.Port); err != nil {
			errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
		}
	}

	// Validate auth mode
	if c.AuthMode != "selfserve" && c.AuthMode != "token" {
		errors = append(errors, fmt.Sprintf("invalid auth mode '%s': must be 'selfserve' or 'token'", c.AuthMode))
	}

	// Token auth needs a bearer token to verify, which only the HTTP
	// transport can carry.
	if c.AuthMode == "token" {
		if c.Transport == "stdio" {
			errors = append(errors, "auth mode 'token' requires the http transport")
		}
		if c.JWTSecret == "" {
			errors = append(errors, "JWT_SECRET is required when auth mode is 'token'")
		}
	}

	// Validate data backend
	validBackends := []string{"sqlite", "postgres"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate Postgres configuration if backend is postgres. A malformed
	// DSN is not checked here: the store captures it and reports in-band.
	if c.DataBackend == "postgres" {
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		}
		if c.PGMinConns < 1 {
			errors = append(errors, fmt.Sprintf("invalid PG_MIN_CONNS %d: must be at least 1", c.PGMinConns))
		}
		if c.PGMaxConns < c.PGMinConns {
			errors = append(errors, fmt.Sprintf("invalid PG_MAX_CONNS %d: must be at least PG_MIN_CONNS (%d)", c.PGMaxConns, c.PGMinConns))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate categories override if provided
	if c.CategoriesPath != "" {
		if _, err := os.Stat(c.CategoriesPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("categories file does not exist: %s", c.CategoriesPath))
		}
	}

	if c.JWTExpiresIn < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT expiry %v: must be at least 1 minute", c.JWTExpiresIn))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

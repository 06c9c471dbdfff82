// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"showcase/internal/core"
	applog "showcase/internal/log"
)

const (
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

type Config struct {
	// HTTP server
	Port               string
	RateLimitPerMinute int

	LogLevel string

	// Activity journal
	JournalBackend string
	SQLiteDBPath   string
	JournalSize    int
	// how long the worker keeps events
	JournalRetention time.Duration

	// AMQP; publishing is disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Currency rates
	RatesBaseURL         string
	RatesRefreshInterval time.Duration
	RatesWatch           []string

	// Sessions and demos
	SessionTTL     time.Duration
	SessionMax     int
	ChatReplyDelay time.Duration
	LedgerBudget   string
	SeedFile       string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		JournalBackend:   getEnv("JOURNAL_BACKEND", JournalMemory),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/showcase.db"),
		JournalSize:      getEnvInt("JOURNAL_SIZE", 500),
		JournalRetention: getEnvDuration("JOURNAL_RETENTION", 7*24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "showcase"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "showcase_activity"),

		RatesBaseURL:         getEnv("RATES_BASE_URL", "https://api.exchangerate-api.com/v4"),
		RatesRefreshInterval: getEnvDuration("RATES_REFRESH_INTERVAL", 60*time.Second),
		RatesWatch:           getEnvList("RATES_WATCH", []string{"USD"}),

		SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMax:     getEnvInt("SESSION_MAX", 1000),
		ChatReplyDelay: getEnvDuration("CHAT_REPLY_DELAY", 2*time.Second),
		LedgerBudget:   getEnv("LEDGER_BUDGET", ""),
		SeedFile:       getEnv("SEED_FILE", ""),
	}
}

// AMQPEnabled reports whether activity events are published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// Budget parses LedgerBudget. Empty means keep the seeded budget.
func (c *Config) Budget() (core.Money, error) {
	if strings.TrimSpace(c.LedgerBudget) == "" {
		return core.Money{}, nil
	}
	return core.ParseMoney(c.LedgerBudget)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch c.JournalBackend {
	case JournalMemory:
	case JournalSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite journal")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid journal backend '%s': must be one of [%s %s]", c.JournalBackend, JournalMemory, JournalSQLite))
	}
	if c.JournalRetention < 0 {
		errors = append(errors, fmt.Sprintf("invalid journal retention %v: must not be negative", c.JournalRetention))
	}
	if c.JournalSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid journal size %d: must be at least 1", c.JournalSize))
	}

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

	if u, err := url.Parse(c.RatesBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid rates base URL '%s': must be an absolute http(s) URL", c.RatesBaseURL))
	}
	if c.RatesRefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rates refresh interval %v: must be at least 1 second", c.RatesRefreshInterval))
	}
	for _, code := range c.RatesWatch {
		if len(code) != 3 {
			errors = append(errors, fmt.Sprintf("invalid watched currency '%s': must be a 3-letter code", code))
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.ChatReplyDelay < 0 || c.ChatReplyDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid chat reply delay %v: must be between 0 and 1 minute", c.ChatReplyDelay))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if _, err := c.Budget(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid ledger budget '%s': %v", c.LedgerBudget, err))
	}
	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file not readable: %s", c.SeedFile))
		}
	}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks and upper-casing.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

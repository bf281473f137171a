package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Journal  JournalConfig
	LogLevel string
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

// GitHubConfig controls the REST gateway. Delays are in milliseconds and the
// request timeout in seconds, matching the environment variables.
type GitHubConfig struct {
	APIURL         string
	RequestTimeout int
	MaxRetries     int
	RetryBaseDelay int
	RetryMaxDelay  int
	MaxConcurrency int
	MaxListItems   int
}

type JournalConfig struct {
	RetentionHours       int
	PruneIntervalMinutes int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists; plain environment variables work too
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// FromEnv builds a Config from the current environment without validating it
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./codenexus.db"),
		},
		GitHub: GitHubConfig{
			APIURL:         getEnv("GITHUB_API_URL", "https://api.github.com/"),
			RequestTimeout: getEnvAsInt("GITHUB_REQUEST_TIMEOUT", 10),
			MaxRetries:     getEnvAsInt("GITHUB_MAX_RETRIES", 3),
			RetryBaseDelay: getEnvAsInt("GITHUB_RETRY_BASE_DELAY_MS", 200),
			RetryMaxDelay:  getEnvAsInt("GITHUB_RETRY_MAX_DELAY_MS", 2000),
			MaxConcurrency: getEnvAsInt("GITHUB_MAX_CONCURRENCY", 8),
			MaxListItems:   getEnvAsInt("GITHUB_MAX_LIST_ITEMS", 500),
		},
		Journal: JournalConfig{
			RetentionHours:       getEnvAsInt("JOURNAL_RETENTION_HOURS", 720),
			PruneIntervalMinutes: getEnvAsInt("JOURNAL_PRUNE_INTERVAL_MINUTES", 60),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if u, err := url.Parse(c.GitHub.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("GITHUB_API_URL %q is not an absolute URL", c.GitHub.APIURL))
	}
	if c.GitHub.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("GITHUB_REQUEST_TIMEOUT must be positive, got %d", c.GitHub.RequestTimeout))
	}
	if c.GitHub.MaxRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("GITHUB_MAX_RETRIES must not be negative, got %d", c.GitHub.MaxRetries))
	}
	if c.GitHub.RetryBaseDelay <= 0 {
		result = multierror.Append(result, fmt.Errorf("GITHUB_RETRY_BASE_DELAY_MS must be positive, got %d", c.GitHub.RetryBaseDelay))
	}
	if c.GitHub.RetryMaxDelay < c.GitHub.RetryBaseDelay {
		result = multierror.Append(result, fmt.Errorf("GITHUB_RETRY_MAX_DELAY_MS (%d) must not be below the base delay (%d)", c.GitHub.RetryMaxDelay, c.GitHub.RetryBaseDelay))
	}
	if c.GitHub.MaxConcurrency <= 0 {
		result = multierror.Append(result, fmt.Errorf("GITHUB_MAX_CONCURRENCY must be positive, got %d", c.GitHub.MaxConcurrency))
	}
	if c.Journal.RetentionHours <= 0 {
		result = multierror.Append(result, fmt.Errorf("JOURNAL_RETENTION_HOURS must be positive, got %d", c.Journal.RetentionHours))
	}
	if c.Journal.PruneIntervalMinutes <= 0 {
		result = multierror.Append(result, fmt.Errorf("JOURNAL_PRUNE_INTERVAL_MINUTES must be positive, got %d", c.Journal.PruneIntervalMinutes))
	}

	return result.ErrorOrNil()
}

// RequestTimeoutDuration returns the per-attempt deadline
func (g GitHubConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(g.RequestTimeout) * time.Second
}

// RetryBaseDelayDuration returns the first backoff delay
func (g GitHubConfig) RetryBaseDelayDuration() time.Duration {
	return time.Duration(g.RetryBaseDelay) * time.Millisecond
}

// RetryMaxDelayDuration returns the backoff cap
func (g GitHubConfig) RetryMaxDelayDuration() time.Duration {
	return time.Duration(g.RetryMaxDelay) * time.Millisecond
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Retention returns how long settled journal entries are kept
func (j JournalConfig) Retention() time.Duration {
	return time.Duration(j.RetentionHours) * time.Hour
}

// PruneInterval returns how often the journal is pruned
func (j JournalConfig) PruneInterval() time.Duration {
	return time.Duration(j.PruneIntervalMinutes) * time.Minute
}

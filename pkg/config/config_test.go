package config

import (
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GITHUB_API_URL", "GITHUB_REQUEST_TIMEOUT", "GITHUB_MAX_RETRIES",
		"GITHUB_RETRY_BASE_DELAY_MS", "GITHUB_RETRY_MAX_DELAY_MS", "GITHUB_MAX_CONCURRENCY",
		"GITHUB_MAX_LIST_ITEMS", "JOURNAL_RETENTION_HOURS", "JOURNAL_PRUNE_INTERVAL_MINUTES",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.github.com/", cfg.GitHub.APIURL)
	assert.Equal(t, 10*time.Second, cfg.GitHub.RequestTimeoutDuration())
	assert.Equal(t, 3, cfg.GitHub.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.GitHub.RetryBaseDelayDuration())
	assert.Equal(t, 2*time.Second, cfg.GitHub.RetryMaxDelayDuration())
	assert.Equal(t, 8, cfg.GitHub.MaxConcurrency)
	assert.Equal(t, 500, cfg.GitHub.MaxListItems)
	assert.Equal(t, 30*24*time.Hour, cfg.Journal.Retention())
	assert.Equal(t, time.Hour, cfg.Journal.PruneInterval())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_API_URL", "https://github.example.com/api/v3/")
	t.Setenv("GITHUB_MAX_RETRIES", "5")
	t.Setenv("GITHUB_MAX_CONCURRENCY", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, "https://github.example.com/api/v3/", cfg.GitHub.APIURL)
	assert.Equal(t, 5, cfg.GitHub.MaxRetries)
	assert.Equal(t, 8, cfg.GitHub.MaxConcurrency, "unparseable values fall back to the default")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := FromEnv()
	cfg.GitHub.APIURL = "not a url"
	cfg.GitHub.RequestTimeout = 0
	cfg.GitHub.MaxRetries = -1
	cfg.Journal.PruneIntervalMinutes = 0

	err := cfg.Validate()
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 4)
	assert.Contains(t, err.Error(), "GITHUB_API_URL")
	assert.Contains(t, err.Error(), "JOURNAL_PRUNE_INTERVAL_MINUTES")
}

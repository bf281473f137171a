package services

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitState(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("Unknown quota allows requests", func(t *testing.T) {
		state := NewRateLimitState(clock)

		ok, _ := state.Reserve()
		assert.True(t, ok)
		assert.False(t, state.Snapshot().Known)
	})

	t.Run("Reserve spends the known quota", func(t *testing.T) {
		state := NewRateLimitState(clock)
		reset := now.Add(time.Hour)
		state.Update(2, reset)

		ok, _ := state.Reserve()
		assert.True(t, ok)
		ok, _ = state.Reserve()
		assert.True(t, ok)

		ok, resetAt := state.Reserve()
		assert.False(t, ok)
		assert.Equal(t, reset, resetAt)
	})

	t.Run("Release returns an unused unit", func(t *testing.T) {
		state := NewRateLimitState(clock)
		reset := now.Add(time.Hour)
		state.Update(1, reset)

		ok, window := state.Reserve()
		require.True(t, ok)
		assert.Equal(t, reset, window)
		assert.Equal(t, 0, state.Snapshot().Remaining)

		state.Release(window)
		assert.Equal(t, 1, state.Snapshot().Remaining)
	})

	t.Run("Release after the window moved on is ignored", func(t *testing.T) {
		state := NewRateLimitState(clock)
		state.Update(1, now.Add(time.Minute))

		_, window := state.Reserve()
		state.Update(5000, now.Add(time.Hour))
		state.Release(window)
		assert.Equal(t, 5000, state.Snapshot().Remaining)

		state.Release(time.Time{})
		assert.Equal(t, 5000, state.Snapshot().Remaining)
	})

	t.Run("Passed reset allows requests again", func(t *testing.T) {
		state := NewRateLimitState(clock)
		state.Update(0, now.Add(-time.Second))

		ok, _ := state.Reserve()
		assert.True(t, ok)
	})

	t.Run("Stale responses never raise the quota", func(t *testing.T) {
		state := NewRateLimitState(clock)
		reset := now.Add(time.Hour)

		state.Update(10, reset)
		state.Update(50, reset)
		assert.Equal(t, 10, state.Snapshot().Remaining)

		state.Update(4999, now.Add(30*time.Minute))
		assert.Equal(t, 10, state.Snapshot().Remaining)
		assert.Equal(t, reset, state.Snapshot().ResetAt)
	})

	t.Run("A new window replaces the old one", func(t *testing.T) {
		state := NewRateLimitState(clock)
		state.Update(0, now.Add(time.Minute))
		state.Update(5000, now.Add(time.Hour))

		snapshot := state.Snapshot()
		assert.Equal(t, 5000, snapshot.Remaining)
		assert.Equal(t, now.Add(time.Hour), snapshot.ResetAt)
	})

	t.Run("Exhaust blocks until the given time", func(t *testing.T) {
		state := NewRateLimitState(clock)
		state.Update(100, now.Add(time.Hour))
		state.Exhaust(now.Add(2 * time.Hour))

		ok, resetAt := state.Reserve()
		assert.False(t, ok)
		assert.Equal(t, now.Add(2*time.Hour), resetAt)
	})

	t.Run("Concurrent reservations never overspend", func(t *testing.T) {
		state := NewRateLimitState(clock)
		state.Update(3, now.Add(time.Hour))

		var granted atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := state.Reserve(); ok {
					granted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(3), granted.Load())
	})
}

func TestParseRateHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("X-RateLimit-Remaining", "42")
	header.Set("X-RateLimit-Reset", "1700000000")

	remaining, reset, ok := parseRateHeaders(header)
	assert.True(t, ok)
	assert.Equal(t, 42, remaining)
	assert.Equal(t, time.Unix(1700000000, 0), reset)

	header.Set("X-RateLimit-Reset", "soon")
	_, _, ok = parseRateHeaders(header)
	assert.False(t, ok)

	_, _, ok = parseRateHeaders(http.Header{})
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	header := http.Header{}
	_, ok := parseRetryAfter(header)
	assert.False(t, ok)

	header.Set("Retry-After", "30")
	delay, ok := parseRetryAfter(header)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, delay)

	header.Set("Retry-After", "-1")
	_, ok = parseRetryAfter(header)
	assert.False(t, ok)
}

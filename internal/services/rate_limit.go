package services

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitState tracks the API quota reported by response headers. It is
// shared by every call made through one GitHubClient.
//
// Reserve and Update run under one mutex: Reserve spends a unit of the known
// remaining quota before a request is sent, so two concurrent calls can never
// both spend the last unit; Update only moves the reset time forward.
type RateLimitState struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	known     bool
	now       func() time.Time
}

// RateLimitSnapshot is a point-in-time copy of RateLimitState
type RateLimitSnapshot struct {
	Known     bool      `json:"known" yaml:"known"`
	Remaining int       `json:"remaining" yaml:"remaining"`
	ResetAt   time.Time `json:"reset_at" yaml:"reset_at"`
}

// NewRateLimitState creates an empty state. now defaults to time.Now.
func NewRateLimitState(now func() time.Time) *RateLimitState {
	if now == nil {
		now = time.Now
	}
	return &RateLimitState{now: now}
}

// Reserve claims one request from the known quota and returns the reset time
// of the window it was taken from, or the zero time when the quota is unknown.
// When the quota is exhausted and the window has not reset, it returns false
// and the reset time.
func (s *RateLimitState) Reserve() (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.known || !s.now().Before(s.reset) {
		return true, time.Time{}
	}
	if s.remaining <= 0 {
		return false, s.reset
	}
	s.remaining--
	return true, s.reset
}

// Release returns a unit taken by Reserve for a request GitHub never
// answered. It is a no-op once the window has moved on.
func (s *RateLimitState) Release(window time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if window.IsZero() || !s.known || !s.reset.Equal(window) {
		return
	}
	s.remaining++
}

// Update folds a response's quota into the state. A later reset starts a new
// window; the same reset keeps the lowest remaining count seen; an earlier
// reset comes from a stale response and is ignored.
func (s *RateLimitState) Update(remaining int, reset time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.known || reset.After(s.reset):
		s.remaining = remaining
		s.reset = reset
		s.known = true
	case reset.Equal(s.reset):
		if remaining < s.remaining {
			s.remaining = remaining
		}
	}
}

// Exhaust marks the quota as spent until reset, for responses that report a
// rate limit without a remaining count (Retry-After only)
func (s *RateLimitState) Exhaust(reset time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.known || !reset.Before(s.reset) {
		s.remaining = 0
		s.reset = reset
		s.known = true
	}
}

// Snapshot returns the current state
func (s *RateLimitState) Snapshot() RateLimitSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return RateLimitSnapshot{
		Known:     s.known,
		Remaining: s.remaining,
		ResetAt:   s.reset,
	}
}

const (
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
	headerRetryAfter    = "Retry-After"
)

// parseRateHeaders reads the remaining count and reset epoch from a response.
// ok is false when either header is missing or unparseable.
func parseRateHeaders(header http.Header) (remaining int, reset time.Time, ok bool) {
	remainingStr := header.Get(headerRateRemaining)
	resetStr := header.Get(headerRateReset)
	if remainingStr == "" || resetStr == "" {
		return 0, time.Time{}, false
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return 0, time.Time{}, false
	}
	resetUnix, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, false
	}

	return remaining, time.Unix(resetUnix, 0), true
}

// parseRetryAfter reads a Retry-After header given in seconds
func parseRetryAfter(header http.Header) (time.Duration, bool) {
	value := header.Get(headerRetryAfter)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

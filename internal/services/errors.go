package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies every failure the GitHub client can surface
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindNotFound          ErrorKind = "not_found"
	KindRateLimited       ErrorKind = "rate_limited"
	KindConflict          ErrorKind = "conflict"
	KindAmbiguous         ErrorKind = "ambiguous"
	KindUnavailable       ErrorKind = "unavailable"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ClientError is the typed error returned by GitHubClient operations
type ClientError struct {
	Kind    ErrorKind
	Op      string
	Message string
	// ResetAt is set for KindRateLimited when the reset time is known
	ResetAt time.Time
	Err     error
}

func (e *ClientError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ClientError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a ClientError anywhere in err's chain, or the
// empty kind when err did not come from the client
func KindOf(err error) ErrorKind {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// RetryAt returns the rate limit reset time carried by err, if any
func RetryAt(err error) (time.Time, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Kind == KindRateLimited && !clientErr.ResetAt.IsZero() {
		return clientErr.ResetAt, true
	}
	return time.Time{}, false
}

func newClientError(op string, kind ErrorKind, message string, cause error) *ClientError {
	return &ClientError{
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     cause,
	}
}

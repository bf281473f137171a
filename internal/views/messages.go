package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/codenexus/internal/services"
)

// GenericErrorMessage is shown for errors outside the client's taxonomy
const GenericErrorMessage = "Something went wrong. Please try again."

var kindMessages = map[services.ErrorKind]string{
	services.KindInvalidInput:      "That input is not valid. Check the username or repository name and try again.",
	services.KindUnauthenticated:   "GitHub rejected the token. Check that it is valid and has the repo scope.",
	services.KindNotFound:          "GitHub has no such user or repository.",
	services.KindRateLimited:       "The GitHub rate limit is exhausted. Wait for it to reset before trying again.",
	services.KindConflict:          "A repository with that name already exists on your account.",
	services.KindAmbiguous:         "GitHub did not confirm the result. Check your repositories before trying again.",
	services.KindUnavailable:       "GitHub is not responding right now. Try again in a few minutes.",
	services.KindMalformedResponse: "GitHub sent a response that could not be read. Try again later.",
}

// MessageFor returns the message shown to a person for an error kind
func MessageFor(kind services.ErrorKind) string {
	if message, ok := kindMessages[kind]; ok {
		return message
	}
	return GenericErrorMessage
}

// ErrorMessage returns the message for err, including the reset time of a
// rate limit when it is known
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "The request was cancelled."
	}

	kind := services.KindOf(err)
	if resetAt, ok := services.RetryAt(err); ok {
		return fmt.Sprintf("The GitHub rate limit is exhausted until %s. Try again after that.",
			resetAt.UTC().Format(time.Kitchen+" MST"))
	}
	return MessageFor(kind)
}

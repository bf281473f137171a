package models

import (
	"fmt"
	"regexp"
)

// MaxUsernameLength is GitHub's limit for user and organization logins
const MaxUsernameLength = 39

// Alphanumerics and hyphens, starting and ending with an alphanumeric.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

// UserProfile is a read-only snapshot of a GitHub account taken from a single
// API response. A new value is built for every lookup.
type UserProfile struct {
	Login           string `json:"login" yaml:"login"`
	DisplayName     string `json:"name" yaml:"name"`
	PublicRepoCount int    `json:"public_repos" yaml:"public_repos"`
	FollowerCount   int    `json:"followers" yaml:"followers"`
	FollowingCount  int    `json:"following" yaml:"following"`
}

// ValidateUsername checks a login against GitHub's username grammar
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username %q is longer than %d characters", username, MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username %q may only contain letters, digits and inner hyphens", username)
	}
	return nil
}

package models

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxRepoNameLength is GitHub's limit for repository names
const MaxRepoNameLength = 100

var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// CreateRepoRequest holds the parameters for creating a repository under the
// authenticated user
type CreateRepoRequest struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"private"`
}

// Validate checks the request locally so that bad input never costs a request
func (r CreateRepoRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("repository name is required")
	}
	if utf8.RuneCountInString(r.Name) > MaxRepoNameLength {
		return fmt.Errorf("repository name is longer than %d characters", MaxRepoNameLength)
	}
	if !repoNamePattern.MatchString(r.Name) {
		return fmt.Errorf("repository name %q may only contain letters, digits, '.', '_' and '-'", r.Name)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// CreationStatus represents the outcome of a repository creation attempt
type CreationStatus string

const (
	CreationStatusPending   CreationStatus = "pending"
	CreationStatusCreated   CreationStatus = "created"
	CreationStatusFailed    CreationStatus = "failed"
	CreationStatusAmbiguous CreationStatus = "ambiguous"
)

// RepoCreation is one journal entry for a repository creation attempt. It
// never holds the credential used for the attempt.
type RepoCreation struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	IsPrivate bool           `json:"private" yaml:"private"`
	Status    CreationStatus `json:"status" yaml:"status"`
	ErrorKind *string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	GithubID  *int64         `json:"github_id,omitempty" yaml:"github_id,omitempty"`
	HTMLURL   *string        `json:"html_url,omitempty" yaml:"html_url,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}

// NewRepoCreation creates a pending journal entry with a generated UUID
func NewRepoCreation(request CreateRepoRequest) *RepoCreation {
	now := time.Now().UTC()
	return &RepoCreation{
		ID:        uuid.New().String(),
		Name:      request.Name,
		IsPrivate: request.IsPrivate,
		Status:    CreationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkCreated records the repository GitHub created
func (c *RepoCreation) MarkCreated(repo RepositorySummary) {
	id := repo.ID
	url := repo.HTMLURL
	c.Status = CreationStatusCreated
	c.GithubID = &id
	c.HTMLURL = &url
	c.ErrorKind = nil
	c.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a failure that is known not to have created anything
func (c *RepoCreation) MarkFailed(kind string) {
	c.Status = CreationStatusFailed
	c.ErrorKind = &kind
	c.UpdatedAt = time.Now().UTC()
}

// MarkAmbiguous records a failure where the outcome on GitHub is unknown
func (c *RepoCreation) MarkAmbiguous(kind string) {
	c.Status = CreationStatusAmbiguous
	c.ErrorKind = &kind
	c.UpdatedAt = time.Now().UTC()
}

// IsAmbiguous checks if the attempt still needs reconciliation
func (c *RepoCreation) IsAmbiguous() bool {
	return c.Status == CreationStatusAmbiguous
}

// NeedsReconciliation reports whether the outcome on GitHub is unknown: the
// entry is ambiguous, or it stayed pending longer than a call can take
func (c *RepoCreation) NeedsReconciliation(pendingTimeout time.Duration) bool {
	if c.IsAmbiguous() {
		return true
	}
	return c.Status == CreationStatusPending && time.Since(c.CreatedAt) > pendingTimeout
}

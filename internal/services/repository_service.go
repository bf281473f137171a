package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/internal/repositories"
	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrCreationNotFound is returned when a journal entry does not exist
var ErrCreationNotFound = errors.New("repository creation not found")

// RepositoryService creates repositories through the GitHub client and keeps
// a journal of every attempt so ambiguous outcomes can be settled later
type RepositoryService struct {
	client        *GitHubClient
	creationsRepo *repositories.RepoCreationRepository
}

func NewRepositoryService(client *GitHubClient, creationsRepo *repositories.RepoCreationRepository) *RepositoryService {
	return &RepositoryService{
		client:        client,
		creationsRepo: creationsRepo,
	}
}

// CreateRepository creates a repository and journals the outcome. Requests
// that fail local checks are rejected before anything is journaled.
func (s *RepositoryService) CreateRepository(ctx context.Context, request models.CreateRepoRequest, credential string) (models.RepositorySummary, *models.RepoCreation, error) {
	const op = "create_repo"
	if strings.TrimSpace(credential) == "" {
		return models.RepositorySummary{}, nil, newClientError(op, KindUnauthenticated, "a token is required to create repositories", nil)
	}
	if err := request.Validate(); err != nil {
		return models.RepositorySummary{}, nil, newClientError(op, KindInvalidInput, err.Error(), nil)
	}

	creation := models.NewRepoCreation(request)
	if err := s.creationsRepo.Create(creation); err != nil {
		return models.RepositorySummary{}, nil, fmt.Errorf("failed to journal repository creation: %w", err)
	}

	repo, err := s.client.CreateRepo(ctx, request, credential)
	switch {
	case err == nil:
		creation.MarkCreated(repo)
	case IsKind(err, KindAmbiguous), IsKind(err, KindMalformedResponse):
		creation.MarkAmbiguous(string(KindOf(err)))
	case KindOf(err) != "":
		creation.MarkFailed(string(KindOf(err)))
	default:
		// Cancelled by the caller; the request may have gone out
		creation.MarkAmbiguous("cancelled")
	}

	if updateErr := s.creationsRepo.Update(creation); updateErr != nil {
		logger.WithFields(logrus.Fields{
			"creation_id": creation.ID,
			"status":      creation.Status,
		}).WithError(updateErr).Error("Failed to record repository creation outcome")
	}

	return repo, creation, err
}

// Reconcile settles an ambiguous creation by asking GitHub whether the
// repository exists under the credential's account
func (s *RepositoryService) Reconcile(ctx context.Context, creationID, credential string) (*models.RepoCreation, error) {
	creation, err := s.GetCreation(creationID)
	if err != nil {
		return nil, err
	}
	if !creation.NeedsReconciliation(s.client.callTimeout()) {
		return creation, nil
	}

	owner, err := s.client.GetAuthenticatedUser(ctx, credential)
	if err != nil {
		return nil, err
	}

	repo, err := s.client.GetRepo(ctx, owner.Login, creation.Name, credential)
	switch {
	case err == nil:
		creation.MarkCreated(repo)
	case IsKind(err, KindNotFound):
		creation.MarkFailed(string(KindNotFound))
	default:
		return nil, err
	}

	if err := s.creationsRepo.Update(creation); err != nil {
		return nil, fmt.Errorf("failed to update repository creation: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"creation_id": creation.ID,
		"status":      creation.Status,
	}).Info("Reconciled repository creation")

	return creation, nil
}

// GetCreation retrieves a journal entry by ID
func (s *RepositoryService) GetCreation(id string) (*models.RepoCreation, error) {
	creation, err := s.creationsRepo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCreationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository creation: %w", err)
	}
	return creation, nil
}

// ListCreations retrieves the most recent journal entries
func (s *RepositoryService) ListCreations(limit int) ([]*models.RepoCreation, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.creationsRepo.GetRecent(limit)
}

// PruneCreations deletes settled journal entries older than the retention window
func (s *RepositoryService) PruneCreations(retention time.Duration) (int64, error) {
	return s.creationsRepo.DeleteOlderThan(time.Now().Add(-retention))
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/alimgiray/codenexus/internal/middleware"
	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GitHubHandler serves the JSON API
type GitHubHandler struct {
	client            *services.GitHubClient
	repositoryService *services.RepositoryService
	exportService     *services.ExportService
}

func NewGitHubHandler(client *services.GitHubClient, repositoryService *services.RepositoryService, exportService *services.ExportService) *GitHubHandler {
	return &GitHubHandler{
		client:            client,
		repositoryService: repositoryService,
		exportService:     exportService,
	}
}

// GetUser returns a user's profile
func (h *GitHubHandler) GetUser(c *gin.Context) {
	profile, err := h.client.GetUser(c.Request.Context(), c.Param("username"), middleware.GetCredential(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListRepos returns a user's repositories in listing order
func (h *GitHubHandler) ListRepos(c *gin.Context) {
	opts := services.ListReposOptions{}
	if raw := c.Query("max"); raw != "" {
		maxItems, err := strconv.Atoi(raw)
		if err != nil || maxItems <= 0 {
			invalidInput(c, "max must be a positive number")
			return
		}
		opts.MaxItems = maxItems
	}

	repos, err := h.client.ListRepos(c.Request.Context(), c.Param("username"), middleware.GetCredential(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repositories": repos,
		"count":        len(repos),
	})
}

// ExportRepositories returns the profile and repositories as an xlsx workbook
func (h *GitHubHandler) ExportRepositories(c *gin.Context) {
	username := c.Param("username")
	credential := middleware.GetCredential(c)

	var profile models.UserProfile
	var repos []models.RepositorySummary

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		profile, err = h.client.GetUser(ctx, username, credential)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = h.client.ListRepos(ctx, username, credential, services.ListReposOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}

	f, err := h.exportService.RepositoriesWorkbook(profile, repos)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-repositories.xlsx"`, profile.Login))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.WithError(err).WithField("username", username).Error("Failed to write workbook")
	}
}

// CreateRepository creates a repository for the token's owner
func (h *GitHubHandler) CreateRepository(c *gin.Context) {
	var request models.CreateRepoRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		invalidInput(c, "request body must be JSON with a name and an optional private flag")
		return
	}

	repo, creation, err := h.repositoryService.CreateRepository(c.Request.Context(), request, middleware.GetCredential(c))
	if err != nil {
		if creation != nil {
			c.Header("X-Creation-ID", creation.ID)
		}
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"creation_id": creation.ID,
		"repository":  repo.Name,
		"private":     repo.IsPrivate,
	}).Info("Repository created")

	c.JSON(http.StatusCreated, gin.H{
		"repository": repo,
		"creation":   creation,
	})
}

// ListCreations returns the most recent journal entries
func (h *GitHubHandler) ListCreations(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			invalidInput(c, "limit must be a positive number")
			return
		}
		limit = parsed
	}

	creations, err := h.repositoryService.ListCreations(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"creations": creations})
}

// GetCreation returns one journal entry
func (h *GitHubHandler) GetCreation(c *gin.Context) {
	creation, err := h.repositoryService.GetCreation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, creation)
}

// ReconcileCreation settles an ambiguous journal entry
func (h *GitHubHandler) ReconcileCreation(c *gin.Context) {
	creation, err := h.repositoryService.Reconcile(c.Request.Context(), c.Param("id"), middleware.GetCredential(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, creation)
}

// RateLimit returns the last known rate limit state
func (h *GitHubHandler) RateLimit(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.RateLimit())
}

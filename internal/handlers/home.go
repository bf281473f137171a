package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/alimgiray/codenexus/internal/middleware"
	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/internal/views"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type HomeHandler struct {
	client            *services.GitHubClient
	repositoryService *services.RepositoryService
}

func NewHomeHandler(client *services.GitHubClient, repositoryService *services.RepositoryService) *HomeHandler {
	return &HomeHandler{
		client:            client,
		repositoryService: repositoryService,
	}
}

// Index handles the home page
func (h *HomeHandler) Index(c *gin.Context) {
	h.render(c, views.PageState{})
}

// Lookup shows a user's profile and repositories
func (h *HomeHandler) Lookup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	state := h.lookup(c.Request.Context(), views.PageState{}, username, middleware.GetCredential(c))
	h.render(c, state)
}

// CreateRepository creates a repository from the form and, when a username
// was looked up before, refreshes that lookup
func (h *HomeHandler) CreateRepository(c *gin.Context) {
	credential := middleware.GetCredential(c)
	request := models.CreateRepoRequest{
		Name:      strings.TrimSpace(c.PostForm("name")),
		IsPrivate: c.PostForm("private") == "true" || c.PostForm("private") == "on",
	}

	state := views.PageState{}
	if username := strings.TrimSpace(c.PostForm("username")); username != "" {
		state = views.PageState{Username: username}
	}

	repo, creation, err := h.repositoryService.CreateRepository(c.Request.Context(), request, credential)
	creationID := ""
	if creation != nil {
		creationID = creation.ID
	}
	if err != nil {
		state = views.Reduce(state, views.CreateFailed{Err: err, CreationID: creationID})
		h.render(c, state)
		return
	}

	if state.Username != "" {
		state = h.lookup(c.Request.Context(), state, state.Username, credential)
	}
	h.render(c, views.Reduce(state, views.RepoCreated{Repo: repo, CreationID: creationID}))
}

// lookup fetches the profile and the repositories concurrently and folds
// each result into the page state as it arrives
func (h *HomeHandler) lookup(ctx context.Context, state views.PageState, username, credential string) views.PageState {
	state = views.Reduce(state, views.LookupStarted{Username: username})

	var mu sync.Mutex
	apply := func(action views.Action) {
		mu.Lock()
		defer mu.Unlock()
		state = views.Reduce(state, action)
	}

	var g errgroup.Group
	g.Go(func() error {
		profile, err := h.client.GetUser(ctx, username, credential)
		if err != nil {
			apply(views.ProfileFailed{Username: username, Err: err})
			return nil
		}
		apply(views.ProfileLoaded{Username: username, Profile: profile})
		return nil
	})
	g.Go(func() error {
		repos, err := h.client.ListRepos(ctx, username, credential, services.ListReposOptions{})
		if err != nil {
			apply(views.ReposFailed{Username: username, Err: err})
			return nil
		}
		apply(views.ReposLoaded{Username: username, Repos: repos})
		return nil
	})
	_ = g.Wait()

	return state
}

func (h *HomeHandler) render(c *gin.Context, state views.PageState) {
	c.HTML(http.StatusOK, "index", gin.H{
		"Title": "Home",
		"State": state,
	})
}

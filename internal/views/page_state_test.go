package views

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceLookup(t *testing.T) {
	state := Reduce(PageState{}, LookupStarted{Username: "octocat"})
	assert.Equal(t, "octocat", state.Username)
	assert.True(t, state.Loading())

	state = Reduce(state, ReposLoaded{Username: "octocat", Repos: []models.RepositorySummary{
		{ID: 2, Name: "zeta"},
		{ID: 1, Name: "alpha"},
	}})
	assert.True(t, state.Loading(), "profile is still outstanding")
	assert.True(t, state.ReposLoaded)
	assert.Equal(t, "zeta", state.Repositories[0].Name, "listing order is kept")

	state = Reduce(state, ProfileLoaded{Username: "octocat", Profile: models.UserProfile{Login: "octocat", FollowerCount: 3}})
	assert.False(t, state.Loading())
	require.NotNil(t, state.Profile)
	assert.Equal(t, 3, state.Profile.FollowerCount)
	assert.Len(t, state.Widgets, 4)
	assert.Empty(t, state.Notices)
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	repos := []models.RepositorySummary{{ID: 1, Name: "a"}}
	before := Reduce(Reduce(PageState{}, LookupStarted{Username: "octocat"}), ReposLoaded{Username: "octocat", Repos: repos})

	repos[0].Name = "changed"
	assert.Equal(t, "a", before.Repositories[0].Name)

	after := Reduce(before, ReposFailed{Username: "octocat", Err: errors.New("boom")})
	assert.Len(t, before.Repositories, 1)
	assert.Empty(t, before.Notices)
	assert.Nil(t, after.Repositories)
	assert.Len(t, after.Notices, 1)
}

func TestReduceIgnoresStaleResults(t *testing.T) {
	state := Reduce(PageState{}, LookupStarted{Username: "first"})
	state = Reduce(state, LookupStarted{Username: "second"})

	next := Reduce(state, ProfileLoaded{Username: "first", Profile: models.UserProfile{Login: "first"}})
	assert.Nil(t, next.Profile)
	assert.True(t, next.ProfileLoading)

	next = Reduce(state, ReposFailed{Username: "first", Err: errors.New("boom")})
	assert.Empty(t, next.Notices)
}

func TestReduceFailures(t *testing.T) {
	state := Reduce(PageState{}, LookupStarted{Username: "ghost"})
	state = Reduce(state, ProfileFailed{Username: "ghost", Err: &services.ClientError{Kind: services.KindNotFound}})
	state = Reduce(state, ReposFailed{Username: "ghost", Err: &services.ClientError{Kind: services.KindNotFound}})

	assert.False(t, state.Loading())
	require.Len(t, state.Notices, 1, "the same message is shown once")
	assert.Equal(t, NoticeError, state.Notices[0].Level)
	assert.Equal(t, MessageFor(services.KindNotFound), state.Notices[0].Text)

	state = Reduce(PageState{}, LookupStarted{Username: "octocat"})
	state = Reduce(state, ProfileFailed{Username: "octocat", Err: &services.ClientError{Kind: services.KindNotFound}})
	state = Reduce(state, ReposFailed{Username: "octocat", Err: &services.ClientError{Kind: services.KindUnavailable}})
	require.Len(t, state.Notices, 2)
	assert.Equal(t, MessageFor(services.KindUnavailable), state.Notices[1].Text)
}

func TestReduceCreation(t *testing.T) {
	state := Reduce(PageState{}, RepoCreated{
		Repo:       models.RepositorySummary{ID: 42, Name: "x", HTMLURL: "https://github.com/u/x"},
		CreationID: "abc",
	})
	require.NotNil(t, state.Created)
	assert.Equal(t, "abc", state.CreationID)
	require.Len(t, state.Notices, 1)
	assert.Equal(t, NoticeSuccess, state.Notices[0].Level)
	assert.Contains(t, state.Notices[0].Text, "x")

	state = Reduce(state, CreateFailed{Err: &services.ClientError{Kind: services.KindConflict}, CreationID: "def"})
	assert.Nil(t, state.Created)
	assert.Equal(t, "def", state.CreationID)
	assert.Equal(t, MessageFor(services.KindConflict), state.Notices[1].Text)
}

func TestMessageFor(t *testing.T) {
	kinds := []services.ErrorKind{
		services.KindInvalidInput,
		services.KindUnauthenticated,
		services.KindNotFound,
		services.KindRateLimited,
		services.KindConflict,
		services.KindAmbiguous,
		services.KindUnavailable,
		services.KindMalformedResponse,
	}

	seen := make(map[string]services.ErrorKind)
	for _, kind := range kinds {
		message := MessageFor(kind)
		assert.NotEqual(t, GenericErrorMessage, message, "kind %s", kind)
		if other, ok := seen[message]; ok {
			t.Errorf("kinds %s and %s share a message", kind, other)
		}
		seen[message] = kind
	}

	assert.Equal(t, GenericErrorMessage, MessageFor(""))
	assert.Equal(t, GenericErrorMessage, ErrorMessage(errors.New("plain")))
}

func TestErrorMessageRateLimit(t *testing.T) {
	resetAt := time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC)
	err := fmt.Errorf("wrapped: %w", &services.ClientError{Kind: services.KindRateLimited, ResetAt: resetAt})

	assert.Contains(t, ErrorMessage(err), "3:04PM UTC")
	assert.Equal(t, MessageFor(services.KindRateLimited), ErrorMessage(&services.ClientError{Kind: services.KindRateLimited}))
}

func TestStatsWidgets(t *testing.T) {
	assert.Nil(t, StatsWidgets(""))

	widgets := StatsWidgets("a b&c")
	require.Len(t, widgets, 4)
	for _, widget := range widgets {
		assert.Contains(t, widget.URL, "a+b%26c")
		assert.NotContains(t, widget.URL, "a b&c")
	}
	assert.Equal(t, "https://github-readme-streak-stats.herokuapp.com/?user=a+b%26c", widgets[3].URL)
}

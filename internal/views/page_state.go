package views

import (
	"slices"
	"strings"

	"github.com/alimgiray/codenexus/internal/models"
)

// NoticeLevel is the severity of a notice shown on the page
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeSuccess NoticeLevel = "success"
)

type Notice struct {
	Level NoticeLevel
	Text  string
}

// PageState is the view model of the lookup page. Reduce never modifies the
// state it is given; it always returns a new value.
type PageState struct {
	Username       string
	Profile        *models.UserProfile
	Repositories   []models.RepositorySummary
	ReposLoaded    bool
	ProfileLoading bool
	ReposLoading   bool
	Created        *models.RepositorySummary
	CreationID     string
	Notices        []Notice
	Widgets        []Widget
}

// Action is a page event applied by Reduce
type Action interface {
	isAction()
}

type LookupStarted struct {
	Username string
}

type ProfileLoaded struct {
	Username string
	Profile  models.UserProfile
}

type ProfileFailed struct {
	Username string
	Err      error
}

type ReposLoaded struct {
	Username string
	Repos    []models.RepositorySummary
}

type ReposFailed struct {
	Username string
	Err      error
}

type RepoCreated struct {
	Repo       models.RepositorySummary
	CreationID string
}

type CreateFailed struct {
	Err        error
	CreationID string
}

func (LookupStarted) isAction() {}
func (ProfileLoaded) isAction() {}
func (ProfileFailed) isAction() {}
func (ReposLoaded) isAction() {}
func (ReposFailed) isAction() {}
func (RepoCreated) isAction() {}
func (CreateFailed) isAction() {}

// Reduce returns the state that follows action. Results for a username other
// than the one being looked up are stale and leave the state unchanged.
func Reduce(state PageState, action Action) PageState {
	next := state.clone()

	switch a := action.(type) {
	case LookupStarted:
		return PageState{
			Username:       a.Username,
			ProfileLoading: true,
			ReposLoading:   true,
		}

	case ProfileLoaded:
		if !next.current(a.Username) {
			return state
		}
		profile := a.Profile
		next.Profile = &profile
		next.ProfileLoading = false
		next.Widgets = StatsWidgets(profile.Login)

	case ProfileFailed:
		if !next.current(a.Username) {
			return state
		}
		next.Profile = nil
		next.ProfileLoading = false
		next.notify(Notice{Level: NoticeError, Text: ErrorMessage(a.Err)})

	case ReposLoaded:
		if !next.current(a.Username) {
			return state
		}
		next.Repositories = append([]models.RepositorySummary(nil), a.Repos...)
		next.ReposLoaded = true
		next.ReposLoading = false

	case ReposFailed:
		if !next.current(a.Username) {
			return state
		}
		next.Repositories = nil
		next.ReposLoading = false
		next.notify(Notice{Level: NoticeError, Text: ErrorMessage(a.Err)})

	case RepoCreated:
		repo := a.Repo
		next.Created = &repo
		next.CreationID = a.CreationID
		next.notify(Notice{
			Level: NoticeSuccess,
			Text:  "Repository " + repo.Name + " created successfully.",
		})

	case CreateFailed:
		next.Created = nil
		next.CreationID = a.CreationID
		next.notify(Notice{Level: NoticeError, Text: ErrorMessage(a.Err)})
	}

	return next
}

// Loading reports whether any lookup is still outstanding
func (s PageState) Loading() bool {
	return s.ProfileLoading || s.ReposLoading
}

func (s PageState) current(username string) bool {
	return strings.EqualFold(s.Username, username)
}

// notify appends a notice unless the same one is already shown
func (s *PageState) notify(notice Notice) {
	if slices.Contains(s.Notices, notice) {
		return
	}
	s.Notices = append(s.Notices, notice)
}

func (s PageState) clone() PageState {
	next := s
	if s.Profile != nil {
		profile := *s.Profile
		next.Profile = &profile
	}
	if s.Created != nil {
		created := *s.Created
		next.Created = &created
	}
	next.Repositories = append([]models.RepositorySummary(nil), s.Repositories...)
	next.Notices = append([]Notice(nil), s.Notices...)
	next.Widgets = append([]Widget(nil), s.Widgets...)
	return next
}

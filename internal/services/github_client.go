package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/pkg/config"
	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"
)

const (
	defaultAPIURL         = "https://api.github.com/"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxConcurrency = 8
	defaultMaxListItems   = 500
	reposPerPage          = 100
)

// GitHubClientConfig configures a GitHubClient. Zero values fall back to the
// public API, a 10s attempt deadline, DefaultRetryPolicy, 8 concurrent
// attempts and a 500 item listing cap.
type GitHubClientConfig struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Retry          *RetryPolicy
	MaxConcurrency int
	MaxListItems   int
	RateLimit      *RateLimitState
}

// GitHubClient talks to the GitHub REST API. It validates input locally,
// retries transient failures, honors the shared rate limit and returns
// *ClientError values for every failure it classifies.
type GitHubClient struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestTimeout time.Duration
	retry          RetryPolicy
	slots          *semaphore.Weighted
	maxListItems   int
	rateLimit      *RateLimitState
}

// ListReposOptions bounds a repository listing. MaxItems 0 applies the
// client's configured cap; a negative MaxItems lists everything.
type ListReposOptions struct {
	MaxItems int
}

func NewGitHubClient(cfg GitHubClientConfig) (*GitHubClient, error) {
	rawURL := cfg.BaseURL
	if rawURL == "" {
		rawURL = defaultAPIURL
	}
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	maxListItems := cfg.MaxListItems
	if maxListItems == 0 {
		maxListItems = defaultMaxListItems
	}

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = NewRateLimitState(nil)
	}

	return &GitHubClient{
		baseURL:        baseURL,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		retry:          retry,
		slots:          semaphore.NewWeighted(int64(maxConcurrency)),
		maxListItems:   maxListItems,
		rateLimit:      rateLimit,
	}, nil
}

// NewGitHubClientFromConfig builds a client from the application config
func NewGitHubClientFromConfig(cfg config.GitHubConfig) (*GitHubClient, error) {
	return NewGitHubClient(GitHubClientConfig{
		BaseURL:        cfg.APIURL,
		RequestTimeout: cfg.RequestTimeoutDuration(),
		Retry: &RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelayDuration(),
			Factor:     2,
			MaxDelay:   cfg.RetryMaxDelayDuration(),
		},
		MaxConcurrency: cfg.MaxConcurrency,
		MaxListItems:   cfg.MaxListItems,
	})
}

// RateLimit returns the current shared rate limit state
func (c *GitHubClient) RateLimit() RateLimitSnapshot {
	return c.rateLimit.Snapshot()
}

// GetUser fetches the public profile of username
func (c *GitHubClient) GetUser(ctx context.Context, username, credential string) (models.UserProfile, error) {
	const op = "get_user"
	if err := models.ValidateUsername(username); err != nil {
		return models.UserProfile{}, newClientError(op, KindInvalidInput, err.Error(), nil)
	}

	var user *github.User
	gh := c.createGitHubClient(credential)
	_, err := c.execute(ctx, op, false, gh, func(ctx context.Context) (*github.Response, error) {
		u, resp, err := gh.Users.Get(ctx, username)
		user = u
		return resp, err
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	return profileFromAPI(op, user)
}

// GetAuthenticatedUser fetches the profile the credential belongs to
func (c *GitHubClient) GetAuthenticatedUser(ctx context.Context, credential string) (models.UserProfile, error) {
	const op = "get_authenticated_user"
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return models.UserProfile{}, newClientError(op, KindUnauthenticated, "a token is required", nil)
	}

	var user *github.User
	gh := c.createGitHubClient(credential)
	_, err := c.execute(ctx, op, false, gh, func(ctx context.Context) (*github.Response, error) {
		u, resp, err := gh.Users.Get(ctx, "")
		user = u
		return resp, err
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	return profileFromAPI(op, user)
}

// ListRepos lists username's repositories in the order the API returns them,
// following pagination links until the last page or the item limit
func (c *GitHubClient) ListRepos(ctx context.Context, username, credential string, opts ListReposOptions) ([]models.RepositorySummary, error) {
	const op = "list_repos"
	if err := models.ValidateUsername(username); err != nil {
		return nil, newClientError(op, KindInvalidInput, err.Error(), nil)
	}

	limit := opts.MaxItems
	if limit == 0 {
		limit = c.maxListItems
	}

	perPage := reposPerPage
	if limit > 0 && limit < perPage {
		perPage = limit
	}

	listOpts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	gh := c.createGitHubClient(credential)
	repos := make([]models.RepositorySummary, 0)
	for {
		var page []*github.Repository
		resp, err := c.execute(ctx, op, false, gh, func(ctx context.Context) (*github.Response, error) {
			p, resp, err := gh.Repositories.List(ctx, username, listOpts)
			page = p
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, repo := range page {
			summary, err := summaryFromAPI(op, repo)
			if err != nil {
				return nil, err
			}
			repos = append(repos, summary)
			if limit > 0 && len(repos) >= limit {
				return repos, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return repos, nil
}

// GetRepo fetches one repository by owner and name
func (c *GitHubClient) GetRepo(ctx context.Context, owner, name, credential string) (models.RepositorySummary, error) {
	const op = "get_repo"
	if err := models.ValidateUsername(owner); err != nil {
		return models.RepositorySummary{}, newClientError(op, KindInvalidInput, err.Error(), nil)
	}
	if err := (models.CreateRepoRequest{Name: name}).Validate(); err != nil {
		return models.RepositorySummary{}, newClientError(op, KindInvalidInput, err.Error(), nil)
	}

	var repo *github.Repository
	gh := c.createGitHubClient(credential)
	_, err := c.execute(ctx, op, false, gh, func(ctx context.Context) (*github.Response, error) {
		r, resp, err := gh.Repositories.Get(ctx, owner, name)
		repo = r
		return resp, err
	})
	if err != nil {
		return models.RepositorySummary{}, err
	}

	return summaryFromAPI(op, repo)
}

// CreateRepo creates a repository for the authenticated user. The request is
// only retried when it provably never reached GitHub; otherwise a failure
// without a definite answer is reported as KindAmbiguous.
func (c *GitHubClient) CreateRepo(ctx context.Context, request models.CreateRepoRequest, credential string) (models.RepositorySummary, error) {
	const op = "create_repo"
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return models.RepositorySummary{}, newClientError(op, KindUnauthenticated, "a token is required to create repositories", nil)
	}
	if err := request.Validate(); err != nil {
		return models.RepositorySummary{}, newClientError(op, KindInvalidInput, err.Error(), nil)
	}

	body := &github.Repository{
		Name:    github.String(request.Name),
		Private: github.Bool(request.IsPrivate),
	}

	var created *github.Repository
	gh := c.createGitHubClient(credential)
	_, err := c.execute(ctx, op, true, gh, func(ctx context.Context) (*github.Response, error) {
		r, resp, err := gh.Repositories.Create(ctx, "", body)
		created = r
		return resp, err
	})
	if err != nil {
		return models.RepositorySummary{}, err
	}

	return summaryFromAPI(op, created)
}

// createGitHubClient creates a GitHub client, authenticated when a credential is given
func (c *GitHubClient) createGitHubClient(credential string) *github.Client {
	httpClient := c.httpClient
	if credential = strings.TrimSpace(credential); credential != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: credential, TokenType: "token"},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = c.baseURL
	return client
}

// callTimeout is the longest a single call can run, every attempt and
// backoff included
func (c *GitHubClient) callTimeout() time.Duration {
	attempts := time.Duration(c.retry.MaxRetries + 1)
	return attempts*c.requestTimeout + time.Duration(c.retry.MaxRetries)*c.retry.MaxDelay
}

type apiCall func(ctx context.Context) (*github.Response, error)

// attemptResult is the outcome of one network attempt
type attemptResult struct {
	resp       *github.Response
	err        error
	retryable  bool
	retryAfter time.Duration
}

// execute runs call with the rate limit gate, the concurrency bound, a
// per-attempt deadline and the retry policy
func (c *GitHubClient) execute(ctx context.Context, op string, write bool, gh *github.Client, call apiCall) (*github.Response, error) {
	entry := logger.WithFields(logrus.Fields{"op": op})

	var last attemptResult
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.Delay(attempt - 1)
			if last.retryAfter > delay {
				delay = min(last.retryAfter, c.retry.MaxDelay)
			}
			entry.WithFields(logrus.Fields{
				"attempt": attempt,
				"state":   "retrying",
				"delay":   delay.String(),
			}).WithError(last.err).Debug("Retrying GitHub request")

			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		last = c.attempt(ctx, op, write, call)
		if last.err == nil {
			return last.resp, nil
		}
		if !last.retryable {
			return last.resp, last.err
		}
	}

	entry.WithError(last.err).Warnf("GitHub request failed after %d attempts", c.retry.MaxRetries+1)
	return nil, newClientError(op, KindUnavailable,
		fmt.Sprintf("GitHub did not respond successfully after %d attempts", c.retry.MaxRetries+1), last.err)
}

func (c *GitHubClient) attempt(ctx context.Context, op string, write bool, call apiCall) attemptResult {
	ok, window := c.rateLimit.Reserve()
	if !ok {
		return attemptResult{err: &ClientError{
			Op:      op,
			Kind:    KindRateLimited,
			Message: "rate limit exhausted until " + window.Format(time.RFC3339),
			ResetAt: window,
		}}
	}

	// Without rate headers GitHub never counted this attempt
	counted := false
	defer func() {
		if !counted {
			c.rateLimit.Release(window)
		}
	}()

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return attemptResult{err: err}
	}
	defer c.slots.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	// A request that was never completely written cannot have been applied
	var sent atomic.Bool
	attemptCtx = httptrace.WithClientTrace(attemptCtx, &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				sent.Store(true)
			}
		},
	})

	resp, err := call(attemptCtx)

	hasResponse := resp != nil && resp.Response != nil && resp.Header != nil
	if hasResponse {
		if remaining, reset, ok := parseRateHeaders(resp.Header); ok {
			c.rateLimit.Update(remaining, reset)
			counted = true
		}
	}

	if err == nil {
		return attemptResult{resp: resp}
	}

	// The caller gave up; nothing from this attempt is applied
	if ctx.Err() != nil {
		return attemptResult{err: ctx.Err()}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return attemptResult{resp: resp, err: c.rateLimited(op, rateErr.Rate.Reset.Time, err)}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now().Add(time.Minute)
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return attemptResult{resp: resp, err: c.rateLimited(op, resetAt, err)}
	}

	if hasResponse && attemptCtx.Err() == nil && !isTransportError(err) {
		return c.classifyResponse(op, write, resp, err)
	}

	// No complete response: connection failure or attempt deadline
	if write && sent.Load() {
		return attemptResult{err: newClientError(op, KindAmbiguous,
			"the request was sent but no response arrived; check whether the repository exists before retrying", err)}
	}
	return attemptResult{err: err, retryable: true}
}

// isTransportError reports whether err came from the connection rather than
// from GitHub's answer, for example a body cut short or a deadline hit mid-body
func isTransportError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.As(err, &netErr)
}

// classifyResponse maps a non-2xx (or undecodable 2xx) response to an error
func (c *GitHubClient) classifyResponse(op string, write bool, resp *github.Response, err error) attemptResult {
	status := resp.StatusCode

	if status >= 200 && status < 300 {
		return attemptResult{resp: resp, err: newClientError(op, KindMalformedResponse, "GitHub returned a body that could not be decoded", err)}
	}

	retryAfter, hasRetryAfter := parseRetryAfter(resp.Header)

	switch {
	case status == http.StatusUnauthorized:
		return attemptResult{resp: resp, err: newClientError(op, KindUnauthenticated, "GitHub rejected the token", err)}

	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		remaining, reset, ok := parseRateHeaders(resp.Header)
		switch {
		case ok && remaining == 0:
			return attemptResult{resp: resp, err: c.rateLimited(op, reset, err)}
		case hasRetryAfter:
			return attemptResult{resp: resp, err: c.rateLimited(op, time.Now().Add(retryAfter), err)}
		case status == http.StatusTooManyRequests:
			return attemptResult{resp: resp, err: c.rateLimited(op, time.Time{}, err)}
		}
		return attemptResult{resp: resp, err: newClientError(op, KindUnauthenticated, "the token is missing, invalid or lacks the required scope", err)}

	case status == http.StatusNotFound || status == http.StatusGone:
		return attemptResult{resp: resp, err: newClientError(op, KindNotFound, "GitHub has no such resource", err)}

	case status == http.StatusConflict:
		return attemptResult{resp: resp, err: newClientError(op, KindConflict, "GitHub reported a conflict", err)}

	case status == http.StatusUnprocessableEntity:
		if write {
			return attemptResult{resp: resp, err: newClientError(op, KindConflict, "GitHub refused the repository, the name may already exist", err)}
		}
		return attemptResult{resp: resp, err: newClientError(op, KindInvalidInput, "GitHub rejected the request parameters", err)}

	case status >= 500:
		if !write {
			return attemptResult{resp: resp, err: err, retryable: true, retryAfter: retryAfter}
		}
		// Only a 503 that tells us when to come back says the request was not processed
		if status == http.StatusServiceUnavailable && hasRetryAfter {
			return attemptResult{resp: resp, err: err, retryable: true, retryAfter: retryAfter}
		}
		return attemptResult{resp: resp, err: newClientError(op, KindAmbiguous,
			fmt.Sprintf("GitHub answered %d; the repository may or may not exist", status), err)}
	}

	return attemptResult{resp: resp, err: newClientError(op, KindInvalidInput, fmt.Sprintf("GitHub rejected the request with status %d", status), err)}
}

func (c *GitHubClient) rateLimited(op string, resetAt time.Time, cause error) *ClientError {
	if !resetAt.IsZero() {
		c.rateLimit.Exhaust(resetAt)
	}
	logger.WithFields(logrus.Fields{"op": op, "reset_at": resetAt}).Warn("GitHub rate limit exhausted")

	message := "rate limit exhausted"
	if !resetAt.IsZero() {
		message += " until " + resetAt.Format(time.RFC3339)
	}
	return &ClientError{
		Op:      op,
		Kind:    KindRateLimited,
		Message: message,
		ResetAt: resetAt,
		Err:     cause,
	}
}

func profileFromAPI(op string, user *github.User) (models.UserProfile, error) {
	if user == nil || user.Login == nil {
		return models.UserProfile{}, newClientError(op, KindMalformedResponse, "user response is missing login", nil)
	}
	return models.UserProfile{
		Login:           user.GetLogin(),
		DisplayName:     user.GetName(),
		PublicRepoCount: user.GetPublicRepos(),
		FollowerCount:   user.GetFollowers(),
		FollowingCount:  user.GetFollowing(),
	}, nil
}

func summaryFromAPI(op string, repo *github.Repository) (models.RepositorySummary, error) {
	if repo == nil || repo.ID == nil || repo.Name == nil || repo.HTMLURL == nil {
		return models.RepositorySummary{}, newClientError(op, KindMalformedResponse, "repository response is missing id, name or html_url", nil)
	}
	return models.RepositorySummary{
		ID:        repo.GetID(),
		Name:      repo.GetName(),
		HTMLURL:   repo.GetHTMLURL(),
		IsPrivate: repo.GetPrivate(),
	}, nil
}

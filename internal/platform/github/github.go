package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alanmeadows/coabot/internal/platform"
)

// notificationPageSize is the page size used when listing notifications.
const notificationPageSize = 50

// Backend implements platform.Platform for GitHub.
type Backend struct {
	client     *gh.Client
	gqlOnce    sync.Once
	gqlClient  *githubv4.Client
	graphqlURL string // empty for github.com
	token      string
}

// NewBackend creates a GitHub backend authenticated with token.
// baseURL selects a GitHub Enterprise instance; leave empty for github.com.
// Uses go-github-ratelimit middleware for automatic rate limit handling.
func NewBackend(token, baseURL string) (*Backend, error) {
	rateLimiter := github_ratelimit.NewClient(nil)
	client := gh.NewClient(rateLimiter).WithAuthToken(token)

	b := &Backend{client: client, token: token}
	if baseURL != "" {
		var err error
		b.client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %q: %w", baseURL, err)
		}
		b.graphqlURL = strings.TrimSuffix(baseURL, "/") + "/api/graphql"
	}
	return b, nil
}

// Viewer returns the login of the authenticated user via the GraphQL API.
func (b *Backend) Viewer(ctx context.Context) (string, error) {
	var query struct {
		Viewer struct {
			Login githubv4.String
		}
	}
	if err := b.getGraphQLClient(ctx).Query(ctx, &query, nil); err != nil {
		if strings.Contains(err.Error(), "401") {
			return "", &platform.Error{Op: "viewer", StatusCode: http.StatusUnauthorized, Err: fmt.Errorf("%w: %v", platform.ErrUnauthorized, err)}
		}
		return "", &platform.Error{Op: "viewer", Retryable: true, Err: err}
	}
	return string(query.Viewer.Login), nil
}

// ListNotifications returns all notifications, read and unread, across all pages.
func (b *Backend) ListNotifications(ctx context.Context) ([]platform.Notification, error) {
	opts := &gh.NotificationListOptions{
		All:         true,
		ListOptions: gh.ListOptions{PerPage: notificationPageSize},
	}

	var out []platform.Notification
	for {
		page, resp, err := b.client.Activity.ListNotifications(ctx, opts)
		if err != nil {
			return nil, classify("list-notifications", resp, err)
		}
		for _, n := range page {
			out = append(out, mapNotification(n))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// MarkThreadRead marks a notification thread as read.
func (b *Backend) MarkThreadRead(ctx context.Context, threadID string) error {
	resp, err := b.client.Activity.MarkThreadRead(ctx, threadID)
	if err != nil {
		return classify("mark-thread-read", resp, err)
	}
	return nil
}

// DeleteThreadSubscription removes the subscription to a notification thread.
func (b *Backend) DeleteThreadSubscription(ctx context.Context, threadID string) error {
	resp, err := b.client.Activity.DeleteThreadSubscription(ctx, threadID)
	if err != nil {
		return classify("delete-thread-subscription", resp, err)
	}
	return nil
}

// GetIssue retrieves an issue by number.
func (b *Backend) GetIssue(ctx context.Context, repo platform.RepoRef, number int) (*platform.Issue, error) {
	issue, resp, err := b.client.Issues.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, classify("get-issue", resp, err)
	}
	return &platform.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		State:  issue.GetState(),
		URL:    issue.GetHTMLURL(),
	}, nil
}

// CreateIssueComment posts a comment on an issue.
func (b *Backend) CreateIssueComment(ctx context.Context, repo platform.RepoRef, number int, body string) error {
	_, resp, err := b.client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return classify("create-issue-comment", resp, err)
	}
	return nil
}

// GetRepository retrieves repository metadata.
func (b *Backend) GetRepository(ctx context.Context, repo platform.RepoRef) (*platform.Repository, error) {
	r, resp, err := b.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, classify("get-repository", resp, err)
	}
	return mapRepository(r), nil
}

// CreateFork forks repo under the authenticated user.
// GitHub creates forks asynchronously and answers 202; that is treated as success.
func (b *Backend) CreateFork(ctx context.Context, repo platform.RepoRef) (*platform.Repository, error) {
	fork, resp, err := b.client.Repositories.CreateFork(ctx, repo.Owner, repo.Name, &gh.RepositoryCreateForkOptions{})
	if err != nil {
		var accepted *gh.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, classify("create-fork", resp, err)
		}
		slog.Debug("fork scheduled", "repo", repo.FullName())
	}
	if fork == nil || fork.GetName() == "" {
		return nil, &platform.Error{Op: "create-fork", Retryable: true, Err: fmt.Errorf("empty fork response for %s", repo.FullName())}
	}
	return mapRepository(fork), nil
}

// CreateFile commits a new file to a branch.
func (b *Backend) CreateFile(ctx context.Context, repo platform.RepoRef, file platform.FileChange) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(file.Message),
		Content: file.Content,
	}
	if file.Branch != "" {
		opts.Branch = gh.Ptr(file.Branch)
	}
	_, resp, err := b.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, file.Path, opts)
	if err != nil {
		return classify("create-file", resp, err)
	}
	return nil
}

// FindPullRequest returns the first open pull request on repo from head
// ("owner:branch"), or nil when none is open.
func (b *Backend) FindPullRequest(ctx context.Context, repo platform.RepoRef, head string) (*platform.PullRequest, error) {
	prs, resp, err := b.client.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
		State:       "open",
		Head:        head,
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, classify("list-pull-requests", resp, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return &platform.PullRequest{
		Number:  prs[0].GetNumber(),
		HTMLURL: prs[0].GetHTMLURL(),
	}, nil
}

// CreatePullRequest opens a pull request. A duplicate head is reported as
// platform.ErrPullRequestExists.
func (b *Backend) CreatePullRequest(ctx context.Context, repo platform.RepoRef, req platform.PullRequestRequest) (*platform.PullRequest, error) {
	newPR := &gh.NewPullRequest{
		Title: gh.Ptr(req.Title),
		Head:  gh.Ptr(req.Head),
		Base:  gh.Ptr(req.Base),
	}
	if req.Body != "" {
		newPR.Body = gh.Ptr(req.Body)
	}
	pr, resp, err := b.client.PullRequests.Create(ctx, repo.Owner, repo.Name, newPR)
	if err != nil {
		return nil, classify("create-pull-request", resp, err)
	}
	return &platform.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}

// DeleteRepository deletes a repository.
func (b *Backend) DeleteRepository(ctx context.Context, repo platform.RepoRef) error {
	resp, err := b.client.Repositories.Delete(ctx, repo.Owner, repo.Name)
	if err != nil {
		return classify("delete-repository", resp, err)
	}
	return nil
}

// --- Internal helpers ---

// getGraphQLClient returns (and lazily creates) the GitHub GraphQL client.
func (b *Backend) getGraphQLClient(ctx context.Context) *githubv4.Client {
	b.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.token})
		httpClient := oauth2.NewClient(ctx, ts)
		if b.graphqlURL != "" {
			b.gqlClient = githubv4.NewEnterpriseClient(b.graphqlURL, httpClient)
		} else {
			b.gqlClient = githubv4.NewClient(httpClient)
		}
	})
	return b.gqlClient
}

func mapNotification(n *gh.Notification) platform.Notification {
	return platform.Notification{
		ThreadID: n.GetID(),
		Reason:   n.GetReason(),
		Unread:   n.GetUnread(),
		Repository: platform.RepoRef{
			Owner: n.GetRepository().GetOwner().GetLogin(),
			Name:  n.GetRepository().GetName(),
		},
		SubjectURL:   n.GetSubject().GetURL(),
		SubjectTitle: n.GetSubject().GetTitle(),
		SubjectType:  n.GetSubject().GetType(),
		UpdatedAt:    n.GetUpdatedAt().Time,
	}
}

func mapRepository(r *gh.Repository) *platform.Repository {
	return &platform.Repository{
		Ref: platform.RepoRef{
			Owner: r.GetOwner().GetLogin(),
			Name:  r.GetName(),
		},
		DefaultBranch: r.GetDefaultBranch(),
		HTMLURL:       r.GetHTMLURL(),
		Fork:          r.GetFork(),
	}
}

// classify converts a go-github error into a *platform.Error.
func classify(op string, resp *gh.Response, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return &platform.Error{Op: op, StatusCode: http.StatusForbidden, Retryable: true, Err: err}
	}

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	if status == 0 {
		// Transport failure; the request may never have reached GitHub.
		return &platform.Error{Op: op, Retryable: true, Err: err}
	}

	switch {
	case status == http.StatusUnauthorized:
		return &platform.Error{Op: op, StatusCode: status, Err: fmt.Errorf("%w: %v", platform.ErrUnauthorized, err)}
	case status == http.StatusUnprocessableEntity && op == "create-pull-request" && isDuplicatePR(errResp):
		return &platform.Error{Op: op, StatusCode: status, Err: fmt.Errorf("%w: %v", platform.ErrPullRequestExists, err)}
	}

	return &platform.Error{Op: op, StatusCode: status, Retryable: isRetryableStatus(status), Err: err}
}

// isRetryableStatus reports statuses that can clear on their own. 404, 409 and
// 422 show up while a freshly created fork is still being populated.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// isDuplicatePR detects GitHub's "A pull request already exists for owner:branch." validation error.
func isDuplicatePR(errResp *gh.ErrorResponse) bool {
	if errResp == nil {
		return false
	}
	if strings.Contains(strings.ToLower(errResp.Message), "already exists") {
		return true
	}
	for _, e := range errResp.Errors {
		if strings.Contains(strings.ToLower(e.Message), "pull request already exists") {
			return true
		}
	}
	return false
}

// Verify Backend implements Platform at compile time.
var _ platform.Platform = (*Backend)(nil)

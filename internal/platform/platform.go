package platform

import (
	"context"
	"errors"
	"fmt"
	"time"
)

//go:generate mockgen -destination=mocks/mock_platform.go -package=mocks github.com/alanmeadows/coabot/internal/platform Platform

// ReasonMention is the notification reason set when the bot's login is @-mentioned.
const ReasonMention = "mention"

var (
	// ErrUnauthorized is returned when the platform rejects the credentials.
	// Nothing else can succeed once this is seen.
	ErrUnauthorized = errors.New("platform credentials rejected")

	// ErrPullRequestExists reports that a pull request for the same head is
	// already open.
	ErrPullRequestExists = errors.New("pull request already exists")
)

// Platform is the subset of the hosting platform API the bot consumes.
type Platform interface {
	// Viewer returns the login of the authenticated identity.
	Viewer(ctx context.Context) (string, error)

	// ListNotifications returns every notification (read and unread) for the
	// authenticated identity, in the order the platform returns them.
	ListNotifications(ctx context.Context) ([]Notification, error)

	// MarkThreadRead marks a notification thread as read.
	MarkThreadRead(ctx context.Context, threadID string) error

	// DeleteThreadSubscription unsubscribes from a notification thread.
	DeleteThreadSubscription(ctx context.Context, threadID string) error

	// GetIssue retrieves an issue or pull request thread by number.
	GetIssue(ctx context.Context, repo RepoRef, number int) (*Issue, error)

	// CreateIssueComment posts a comment on an issue.
	CreateIssueComment(ctx context.Context, repo RepoRef, number int, body string) error

	// GetRepository retrieves repository metadata.
	GetRepository(ctx context.Context, repo RepoRef) (*Repository, error)

	// CreateFork forks repo under the authenticated identity.
	CreateFork(ctx context.Context, repo RepoRef) (*Repository, error)

	// CreateFile commits a new file to branch of repo.
	CreateFile(ctx context.Context, repo RepoRef, file FileChange) error

	// FindPullRequest returns the open pull request on repo whose head is
	// "owner:branch", or nil when there is none.
	FindPullRequest(ctx context.Context, repo RepoRef, head string) (*PullRequest, error)

	// CreatePullRequest opens a pull request against repo.
	CreatePullRequest(ctx context.Context, repo RepoRef, req PullRequestRequest) (*PullRequest, error)

	// DeleteRepository deletes repo. Used to discard forks.
	DeleteRepository(ctx context.Context, repo RepoRef) error
}

// RepoRef identifies a repository by owner login and name.
type RepoRef struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// String implements fmt.Stringer.
func (r RepoRef) String() string {
	return r.FullName()
}

// Notification is one notification thread.
type Notification struct {
	// ThreadID is the notification thread identifier.
	ThreadID string
	// Reason is why the notification was delivered (e.g. "mention").
	Reason string
	// Unread is true until the thread is marked read.
	Unread bool
	// Repository is the repository the notification originated from.
	Repository RepoRef
	// SubjectURL is the API URL of the subject; its last path segment is the issue number.
	SubjectURL string
	// SubjectTitle is the title of the issue or pull request.
	SubjectTitle string
	// SubjectType is "Issue", "PullRequest", etc.
	SubjectType string
	// UpdatedAt is when the thread last changed.
	UpdatedAt time.Time
}

// Actionable reports whether the notification is an unread mention.
func (n Notification) Actionable() bool {
	return n.Reason == ReasonMention && n.Unread
}

// Issue is the minimal issue metadata the bot needs.
type Issue struct {
	Number int
	Title  string
	State  string
	URL    string
}

// Repository is repository metadata.
type Repository struct {
	Ref           RepoRef
	DefaultBranch string
	HTMLURL       string
	Fork          bool
}

// FileChange describes a single new file commit.
type FileChange struct {
	Path    string
	Message string
	Content []byte
	Branch  string
}

// PullRequestRequest holds the fields needed to open a pull request.
type PullRequestRequest struct {
	Title string
	Body  string
	// Head is "owner:branch" of the fork.
	Head string
	// Base is the branch on the target repository.
	Base string
}

// PullRequest is an open pull request.
type PullRequest struct {
	Number  int
	HTMLURL string
}

// Error is a failed platform call.
type Error struct {
	// Op names the API call, e.g. "create-fork".
	Op string
	// StatusCode is the HTTP status, 0 for transport errors.
	StatusCode int
	// Retryable marks errors worth another attempt (5xx, 422 races, transport).
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a platform error classified as retryable.
// Errors that are not platform errors are treated as retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}

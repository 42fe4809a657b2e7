package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/alanmeadows/coabot/internal/platform"
)

// CommentError reports a comment the platform refused.
type CommentError struct {
	ThreadID string
	Err      error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("posting comment for thread %s: %v", e.ThreadID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// Reporter posts status comments on the issue a notification points at.
type Reporter struct {
	client platform.Platform
}

// New creates a Reporter.
func New(client platform.Platform) *Reporter {
	return &Reporter{client: client}
}

// PostComment posts message on the issue referenced by n's subject URL.
// Failures are returned as *CommentError and are not retried.
func (r *Reporter) PostComment(ctx context.Context, n platform.Notification, message string) error {
	num, err := ParseIssueNumber(n.SubjectURL)
	if err != nil {
		return &CommentError{ThreadID: n.ThreadID, Err: err}
	}

	issue, err := r.client.GetIssue(ctx, n.Repository, num)
	if err != nil {
		return &CommentError{ThreadID: n.ThreadID, Err: err}
	}

	if err := r.client.CreateIssueComment(ctx, n.Repository, issue.Number, message); err != nil {
		return &CommentError{ThreadID: n.ThreadID, Err: err}
	}
	slog.Debug("comment posted", "repo", n.Repository.FullName(), "issue", issue.Number)
	return nil
}

// ParseIssueNumber returns the issue number encoded as the final path
// segment of a subject URL.
func ParseIssueNumber(subjectURL string) (int, error) {
	if subjectURL == "" {
		return 0, fmt.Errorf("notification has no subject URL")
	}
	u, err := url.Parse(subjectURL)
	if err != nil {
		return 0, fmt.Errorf("invalid subject URL %q: %w", subjectURL, err)
	}
	path := strings.TrimSuffix(u.Path, "/")
	last := path[strings.LastIndex(path, "/")+1:]
	num, err := strconv.Atoi(last)
	if err != nil || num <= 0 {
		return 0, fmt.Errorf("subject URL %q does not end in an issue number", subjectURL)
	}
	return num, nil
}

package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanmeadows/coabot/internal/platform"
	"github.com/alanmeadows/coabot/internal/reporter"
	"github.com/alanmeadows/coabot/internal/workspace"
)

// Kind tags a publish outcome.
type Kind int

const (
	// KindUnknown is the zero value and never returned.
	KindUnknown Kind = iota
	// KindCreated means a pull request was opened.
	KindCreated
	// KindAlreadyExists means the platform reported a pull request for the same head.
	KindAlreadyExists
	// KindExhausted means every allowed attempt failed.
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindAlreadyExists:
		return "already_exists"
	case KindExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Outcome is the result of Publish.
type Outcome struct {
	Kind Kind
	// PR is the opened pull request for KindCreated, and the open one when
	// KindAlreadyExists found it before committing.
	PR *platform.PullRequest
	// Attempts counts publish attempts made, including the first.
	Attempts int
	// Err is the last error seen, nil for KindCreated.
	Err error
}

// Commenter posts status comments. *reporter.Reporter implements it.
type Commenter interface {
	PostComment(ctx context.Context, n platform.Notification, message string) error
}

// Options configures a Publisher.
type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries    int
	Filename      string
	CommitMessage string
	PRTitle       string
	PRBody        string
	// BaseBranch overrides the target's default branch when set.
	BaseBranch string
	// RetryDelay is the wait before the first retry. Retry n waits n times
	// as long. Zero retries immediately.
	RetryDelay time.Duration
}

// Publisher forks the target repository, commits the artifact to the fork and
// opens a pull request upstream.
type Publisher struct {
	client    platform.Platform
	commenter Commenter
	opts      Options
}

// New creates a Publisher.
func New(client platform.Platform, commenter Commenter, opts Options) *Publisher {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	return &Publisher{client: client, commenter: commenter, opts: opts}
}

// Publish opens the artifact pull request for n's repository, retrying up to
// MaxRetries times. Each failed attempt's fork is deleted before the next one,
// and after the last one, so at most one fork is alive at any time and none
// survive an exhausted run. A fork that backs an open pull request, or whose
// pull requests could not be looked up, is never deleted.
func (p *Publisher) Publish(ctx context.Context, n platform.Notification, art *workspace.Artifact) Outcome {
	target := n.Repository
	log := slog.With("repo", target.FullName(), "thread", n.ThreadID)

	var repo *platform.Repository
	for attempt := 1; ; attempt++ {
		var fork *platform.Repository
		var pr *platform.PullRequest
		var err error

		if repo == nil {
			repo, err = p.client.GetRepository(ctx, target)
			if err != nil {
				repo = nil
				err = fmt.Errorf("resolving target: %w", err)
			}
		}
		if err == nil {
			fork, pr, err = p.attempt(ctx, repo, art)
		}
		if err == nil {
			log.Info("pull request opened", "url", pr.HTMLURL, "attempt", attempt)
			return Outcome{Kind: KindCreated, PR: pr, Attempts: attempt}
		}

		if errors.Is(err, platform.ErrPullRequestExists) {
			log.Info("pull request already exists", "attempt", attempt)
			return Outcome{Kind: KindAlreadyExists, PR: pr, Attempts: attempt, Err: err}
		}
		if errors.Is(err, platform.ErrUnauthorized) || ctx.Err() != nil {
			return Outcome{Kind: KindExhausted, Attempts: attempt, Err: err}
		}

		retry := attempt <= p.opts.MaxRetries && platform.IsRetryable(err)
		log.Warn("publish attempt failed", "attempt", attempt, "retry", retry, "error", err)

		if retry {
			p.comment(ctx, n, reporter.Retrying(attempt, p.opts.MaxRetries))
		}
		if fork != nil {
			if delErr := p.client.DeleteRepository(ctx, fork.Ref); delErr != nil {
				log.Warn("failed to delete fork", "fork", fork.Ref.FullName(), "error", delErr)
			}
		}
		if !retry {
			p.comment(ctx, n, reporter.Exhausted(attempt))
			return Outcome{Kind: KindExhausted, Attempts: attempt, Err: err}
		}
		if err := p.backoff(ctx, attempt); err != nil {
			return Outcome{Kind: KindExhausted, Attempts: attempt, Err: err}
		}
	}
}

// backoff waits RetryDelay*attempt, returning early with ctx's error.
func (p *Publisher) backoff(ctx context.Context, attempt int) error {
	delay := p.opts.RetryDelay * time.Duration(attempt)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// attempt runs one fork → commit → pull request pass. The fork is returned
// whenever the caller may discard it on failure. A fork that already backs an
// open pull request from an earlier run yields ErrPullRequestExists along with
// that pull request, before anything is committed to it.
func (p *Publisher) attempt(ctx context.Context, repo *platform.Repository, art *workspace.Artifact) (*platform.Repository, *platform.PullRequest, error) {
	fork, err := p.client.CreateFork(ctx, repo.Ref)
	if err != nil {
		return nil, nil, fmt.Errorf("forking %s: %w", repo.Ref.FullName(), err)
	}

	branch := fork.DefaultBranch
	if branch == "" {
		branch = repo.DefaultBranch
	}
	head := fork.Ref.Owner + ":" + branch

	existing, err := p.client.FindPullRequest(ctx, repo.Ref, head)
	if err != nil {
		// Unknown whether a pull request depends on the fork, so keep it.
		return nil, nil, fmt.Errorf("looking up open pull requests from %s: %w", head, err)
	}
	if existing != nil {
		return fork, existing, fmt.Errorf("%w: %s", platform.ErrPullRequestExists, existing.HTMLURL)
	}

	filename := p.opts.Filename
	if filename == "" {
		filename = art.Filename
	}

	err = p.client.CreateFile(ctx, fork.Ref, platform.FileChange{
		Path:    filename,
		Message: p.opts.CommitMessage,
		Content: []byte(art.Content),
		Branch:  branch,
	})
	if err != nil {
		return fork, nil, fmt.Errorf("committing %s to %s: %w", filename, fork.Ref.FullName(), err)
	}

	base := p.opts.BaseBranch
	if base == "" {
		base = repo.DefaultBranch
	}
	pr, err := p.client.CreatePullRequest(ctx, repo.Ref, platform.PullRequestRequest{
		Title: p.opts.PRTitle,
		Body:  p.opts.PRBody,
		Head:  head,
		Base:  base,
	})
	if err != nil {
		return fork, nil, fmt.Errorf("opening pull request: %w", err)
	}
	return fork, pr, nil
}

// comment posts a status message; failures are logged and otherwise ignored.
func (p *Publisher) comment(ctx context.Context, n platform.Notification, msg string) {
	if err := p.commenter.PostComment(ctx, n, msg); err != nil {
		slog.Warn("failed to post status comment", "thread", n.ThreadID, "error", err)
	}
}

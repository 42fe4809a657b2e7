package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alanmeadows/coabot/internal/history"
	"github.com/alanmeadows/coabot/internal/notify"
	"github.com/alanmeadows/coabot/internal/platform"
	"github.com/alanmeadows/coabot/internal/publisher"
	"github.com/alanmeadows/coabot/internal/reporter"
	"github.com/alanmeadows/coabot/internal/workspace"
)

// ArtifactBuilder produces the configuration file for a repository.
type ArtifactBuilder interface {
	BuildArtifact(ctx context.Context, repo platform.RepoRef) (*workspace.Artifact, error)
}

// Commenter posts status comments on the mentioning issue.
type Commenter interface {
	PostComment(ctx context.Context, n platform.Notification, message string) error
}

// Publisher opens the pull request carrying an artifact.
type Publisher interface {
	Publish(ctx context.Context, n platform.Notification, art *workspace.Artifact) publisher.Outcome
}

// Recorder persists a run record per processed notification.
type Recorder interface {
	Save(rec history.Record) (string, error)
}

// Notifier forwards outcomes to an external channel.
type Notifier interface {
	Notify(ctx context.Context, ev notify.Event) error
}

// Deps are the collaborators a Bot drives. History and Notifier are optional.
type Deps struct {
	Platform  platform.Platform
	Builder   ArtifactBuilder
	Reporter  Commenter
	Publisher Publisher
	History   Recorder
	Notifier  Notifier
}

// Options tunes the poll loop.
type Options struct {
	PollInterval time.Duration
	// Reason selects which notifications are processed. Defaults to "mention".
	Reason string
}

// Stats summarises the loop's activity since start.
type Stats struct {
	Cycles    int       `json:"cycles"`
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	LastCycle time.Time `json:"last_cycle,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Bot polls the notification feed and runs the coafile pipeline for every
// unread mention, one notification at a time.
type Bot struct {
	deps    Deps
	opts    Options
	trigger chan struct{}

	mu    sync.Mutex
	stats Stats
}

// New creates a Bot.
func New(deps Deps, opts Options) *Bot {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Reason == "" {
		opts.Reason = platform.ReasonMention
	}
	return &Bot{deps: deps, opts: opts, trigger: make(chan struct{}, 1)}
}

// Stats returns a snapshot of the loop counters.
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Trigger asks the loop to poll now instead of waiting for the next tick.
func (b *Bot) Trigger() {
	select {
	case b.trigger <- struct{}{}:
		slog.Debug("poll trigger sent")
	default:
	}
}

// Run polls immediately and then every poll interval until ctx is cancelled.
// It returns nil on cancellation and the error when the platform rejects the
// bot's credentials.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("starting notification loop", "interval", b.opts.PollInterval, "reason", b.opts.Reason)

	if err := b.tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification loop stopped")
			return nil
		case <-ticker.C:
			if err := b.tick(ctx); err != nil {
				return err
			}
		case <-b.trigger:
			slog.Info("immediate poll triggered")
			if err := b.tick(ctx); err != nil {
				return err
			}
			ticker.Reset(b.opts.PollInterval)
		}
	}
}

// tick runs one cycle and filters out the errors the loop survives.
func (b *Bot) tick(ctx context.Context) error {
	err := b.RunCycle(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, platform.ErrUnauthorized):
		slog.Error("platform rejected credentials, stopping", "error", err)
		return err
	case ctx.Err() != nil:
		return nil
	}
	slog.Warn("poll cycle failed", "error", err)
	return nil
}

// RunCycle fetches the notification feed once and processes every matching
// notification in fetch order.
func (b *Bot) RunCycle(ctx context.Context) error {
	b.mu.Lock()
	b.stats.Cycles++
	b.stats.LastCycle = time.Now().UTC()
	b.mu.Unlock()

	notifications, err := b.deps.Platform.ListNotifications(ctx)
	if err != nil {
		b.setLastError(err)
		return fmt.Errorf("fetching notifications: %w", err)
	}
	slog.Debug("fetched notifications", "count", len(notifications))

	for _, n := range notifications {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Reason != b.opts.Reason || !n.Unread {
			continue
		}

		if err := b.markHandled(ctx, n); err != nil {
			if errors.Is(err, platform.ErrUnauthorized) {
				return err
			}
			slog.Warn("skipping notification that could not be marked handled",
				"thread", n.ThreadID, "repo", n.Repository.FullName(), "error", err)
			b.setLastError(err)
			continue
		}

		if err := b.processNotification(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// markHandled marks the thread read and unsubscribes from it, so the same
// mention is never picked up twice.
func (b *Bot) markHandled(ctx context.Context, n platform.Notification) error {
	if err := b.deps.Platform.MarkThreadRead(ctx, n.ThreadID); err != nil {
		return fmt.Errorf("marking thread %s read: %w", n.ThreadID, err)
	}
	if err := b.deps.Platform.DeleteThreadSubscription(ctx, n.ThreadID); err != nil {
		return fmt.Errorf("unsubscribing from thread %s: %w", n.ThreadID, err)
	}
	return nil
}

// processNotification runs greeting → artifact → preview → publish → outcome.
// Only credential rejection and cancellation escape; every other failure is
// reported on the issue and recorded.
func (b *Bot) processNotification(ctx context.Context, n platform.Notification) error {
	log := slog.With("thread", n.ThreadID, "repo", n.Repository.FullName())
	log.Info("processing mention", "subject", n.SubjectTitle)

	rec := history.Record{
		ThreadID:  n.ThreadID,
		Repo:      n.Repository.FullName(),
		StartedAt: time.Now().UTC(),
	}
	if num, err := reporter.ParseIssueNumber(n.SubjectURL); err == nil {
		rec.Issue = num
	}
	ev := notify.Event{Repo: rec.Repo, Issue: rec.Issue, Title: n.SubjectTitle}

	b.comment(ctx, n, reporter.Greeting())

	art, err := b.deps.Builder.BuildArtifact(ctx, n.Repository)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("artifact generation failed", "error", err)
		b.comment(ctx, n, reporter.WorkspaceFailed(err))

		rec.Outcome = history.OutcomeWorkspaceFailed
		rec.Error = err.Error()
		ev.Kind = notify.EventWorkspaceFailed
		ev.Error = rec.Error
		b.finish(ctx, rec, ev)
		return nil
	}

	b.comment(ctx, n, reporter.Preview(art.Content))

	out := b.deps.Publisher.Publish(ctx, n, art)
	rec.Attempts = out.Attempts
	ev.Attempts = out.Attempts

	switch out.Kind {
	case publisher.KindCreated:
		b.comment(ctx, n, reporter.Success(out.PR.HTMLURL))
		rec.Outcome = history.OutcomeCreated
		rec.PRURL = out.PR.HTMLURL
		ev.Kind = notify.EventPRCreated
		ev.URL = out.PR.HTMLURL
	case publisher.KindAlreadyExists:
		b.comment(ctx, n, reporter.AlreadyExists())
		rec.Outcome = history.OutcomeAlreadyExists
		ev.Kind = notify.EventPRExists
		if out.PR != nil {
			rec.PRURL = out.PR.HTMLURL
			ev.URL = out.PR.HTMLURL
		}
	default:
		rec.Outcome = history.OutcomeExhausted
		if out.Err != nil {
			rec.Error = out.Err.Error()
		}
		ev.Kind = notify.EventPublishFailed
		ev.Error = rec.Error
	}

	b.finish(ctx, rec, ev)

	if out.Kind == publisher.KindExhausted {
		if errors.Is(out.Err, platform.ErrUnauthorized) {
			return out.Err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (b *Bot) comment(ctx context.Context, n platform.Notification, msg string) {
	if err := b.deps.Reporter.PostComment(ctx, n, msg); err != nil {
		slog.Warn("failed to post comment", "thread", n.ThreadID, "error", err)
	}
}

// finish updates counters, writes the run record and sends the outcome notification.
func (b *Bot) finish(ctx context.Context, rec history.Record, ev notify.Event) {
	rec.FinishedAt = time.Now().UTC()

	b.mu.Lock()
	b.stats.Processed++
	switch rec.Outcome {
	case history.OutcomeCreated, history.OutcomeAlreadyExists:
		b.stats.Succeeded++
	default:
		b.stats.Failed++
		b.stats.LastError = rec.Error
	}
	b.mu.Unlock()

	slog.Info("notification processed", "thread", rec.ThreadID, "repo", rec.Repo,
		"outcome", rec.Outcome, "attempts", rec.Attempts, "duration", rec.Duration().Round(time.Millisecond))

	if b.deps.History != nil {
		if _, err := b.deps.History.Save(rec); err != nil {
			slog.Warn("failed to record history", "thread", rec.ThreadID, "error", err)
		}
	}
	if b.deps.Notifier != nil {
		if err := b.deps.Notifier.Notify(ctx, ev); err != nil {
			slog.Warn("failed to send notification", "event", string(ev.Kind), "error", err)
		}
	}
}

func (b *Bot) setLastError(err error) {
	b.mu.Lock()
	b.stats.LastError = err.Error()
	b.mu.Unlock()
}

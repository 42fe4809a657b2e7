package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanmeadows/coabot/internal/bot"
	"github.com/alanmeadows/coabot/internal/config"
	"github.com/alanmeadows/coabot/internal/history"
	"github.com/alanmeadows/coabot/internal/notify"
	"github.com/alanmeadows/coabot/internal/platform/github"
	"github.com/alanmeadows/coabot/internal/publisher"
	"github.com/alanmeadows/coabot/internal/reporter"
	"github.com/alanmeadows/coabot/internal/workspace"
)

// newLedger returns the history ledger, or nil when history is disabled.
func newLedger(cfg *config.Config) *history.Ledger {
	if !cfg.History.IsEnabled() {
		return nil
	}
	dir := config.ExpandHome(cfg.History.Dir)
	if dir == "" {
		dir = history.DefaultDir()
	}
	return history.NewLedger(dir)
}

// newBot validates cfg, authenticates against the platform and assembles the
// pipeline. The returned ledger is nil when history is disabled.
func newBot(ctx context.Context, cfg *config.Config) (*bot.Bot, *history.Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tempDir, err := cfg.Bot.ResolveTempDir()
	if err != nil {
		return nil, nil, &config.ConfigurationError{Field: "bot.temp_dir", Reason: err.Error()}
	}

	client, err := github.NewBackend(cfg.GitHub.Token, cfg.GitHub.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	login, err := client.Viewer(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticating with GitHub: %w", err)
	}
	slog.Info("authenticated", "login", login)

	builder := workspace.NewBuilder(workspace.Options{
		BaseDir:    tempDir,
		CloneHost:  cfg.GitHub.CloneHost,
		Git:        cfg.Tools.Git,
		CloneDepth: cfg.Tools.CloneDepth,
		Bootstrap:  cfg.Tools.Bootstrap,
		Filename:   cfg.Artifact.Filename,
	}, workspace.ExecRunner{Timeout: cfg.Tools.ParseCommandTimeout()})

	rep := reporter.New(client)
	pub := publisher.New(client, rep, publisher.Options{
		MaxRetries:    cfg.Bot.MaxRetries,
		RetryDelay:    cfg.Bot.ParseRetryDelay(),
		Filename:      cfg.Artifact.Filename,
		CommitMessage: cfg.Artifact.CommitMessage,
		PRTitle:       cfg.Artifact.PRTitle,
		PRBody:        cfg.Artifact.PRBody,
		BaseBranch:    cfg.Artifact.BaseBranch,
	})

	deps := bot.Deps{
		Platform:  client,
		Builder:   builder,
		Reporter:  rep,
		Publisher: pub,
	}
	ledger := newLedger(cfg)
	if ledger != nil {
		deps.History = ledger
	}
	if teams := notify.NewTeams(cfg.Notifications); teams != nil {
		deps.Notifier = teams
	}

	b := bot.New(deps, bot.Options{
		PollInterval: cfg.Bot.ParsePollInterval(),
		Reason:       cfg.Bot.Reason,
	})
	return b, ledger, nil
}

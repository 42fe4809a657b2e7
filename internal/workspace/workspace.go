package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alanmeadows/coabot/internal/platform"
)

// checkoutDir is the clone directory name inside each workspace.
const checkoutDir = "repo"

// Stage names the step of artifact generation that failed.
type Stage string

const (
	StageMkdir     Stage = "mkdir"
	StageClone     Stage = "clone"
	StageBootstrap Stage = "bootstrap"
	StageRead      Stage = "read"
)

// WorkspaceError reports a failed clone, bootstrap run, or missing artifact.
type WorkspaceError struct {
	Repo  platform.RepoRef
	Stage Stage
	Err   error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s for %s: %v", e.Stage, e.Repo.FullName(), e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// Artifact is the generated configuration file.
type Artifact struct {
	Filename string
	Content  string
}

// Options configures a Builder.
type Options struct {
	// BaseDir holds the per-call temp directories. Created if missing.
	BaseDir string
	// CloneHost prefixes owner/name, e.g. "https://github.com".
	CloneHost  string
	Git        string
	CloneDepth int
	// Bootstrap is the analysis command and its arguments (including the non-interactive flag).
	Bootstrap []string
	// Filename is the artifact the bootstrap command writes into the checkout.
	Filename string
}

// Builder clones repositories into throwaway workspaces and runs the
// bootstrap tool to produce an Artifact.
type Builder struct {
	opts   Options
	runner Runner
}

// NewBuilder creates a Builder. runner is usually ExecRunner.
func NewBuilder(opts Options, runner Runner) *Builder {
	if opts.Git == "" {
		opts.Git = "git"
	}
	if opts.CloneHost == "" {
		opts.CloneHost = "https://github.com"
	}
	return &Builder{opts: opts, runner: runner}
}

// CloneURL returns the HTTPS clone URL for repo.
func (b *Builder) CloneURL(repo platform.RepoRef) string {
	return strings.TrimSuffix(b.opts.CloneHost, "/") + "/" + repo.FullName() + ".git"
}

// BuildArtifact clones repo, runs the bootstrap tool in the checkout and returns
// the generated file. The workspace is removed before returning, on every path.
func (b *Builder) BuildArtifact(ctx context.Context, repo platform.RepoRef) (*Artifact, error) {
	if err := os.MkdirAll(b.opts.BaseDir, 0755); err != nil {
		return nil, &WorkspaceError{Repo: repo, Stage: StageMkdir, Err: err}
	}
	dir, err := os.MkdirTemp(b.opts.BaseDir, "coabot-*")
	if err != nil {
		return nil, &WorkspaceError{Repo: repo, Stage: StageMkdir, Err: err}
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove workspace", "dir", dir, "error", err)
		}
	}()

	log := slog.With("repo", repo.FullName(), "workspace", dir)

	cloneArgs := []string{"clone"}
	if b.opts.CloneDepth > 0 {
		cloneArgs = append(cloneArgs, "--depth="+strconv.Itoa(b.opts.CloneDepth))
	}
	cloneArgs = append(cloneArgs, b.CloneURL(repo), checkoutDir)

	log.Info("cloning repository")
	if _, err := b.runner.Run(ctx, Command{Name: b.opts.Git, Args: cloneArgs, Dir: dir}); err != nil {
		return nil, &WorkspaceError{Repo: repo, Stage: StageClone, Err: err}
	}

	checkout := filepath.Join(dir, checkoutDir)
	if len(b.opts.Bootstrap) == 0 {
		return nil, &WorkspaceError{Repo: repo, Stage: StageBootstrap, Err: errors.New("no bootstrap command configured")}
	}
	bootstrap := Command{Name: b.opts.Bootstrap[0], Args: b.opts.Bootstrap[1:], Dir: checkout}

	log.Info("running bootstrap", "cmd", bootstrap.String())
	res, err := b.runner.Run(ctx, bootstrap)
	if err != nil {
		return nil, &WorkspaceError{Repo: repo, Stage: StageBootstrap, Err: err}
	}
	if res != nil {
		log.Debug("bootstrap finished", "duration", res.Duration)
	}

	data, err := os.ReadFile(filepath.Join(checkout, b.opts.Filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%s was not generated", b.opts.Filename)
		}
		return nil, &WorkspaceError{Repo: repo, Stage: StageRead, Err: err}
	}

	return &Artifact{Filename: b.opts.Filename, Content: string(data)}, nil
}

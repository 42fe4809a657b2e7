package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alanmeadows/coabot/internal/store"
)

// Outcome values recorded for a processed notification.
const (
	OutcomeCreated         = "created"
	OutcomeAlreadyExists   = "already_exists"
	OutcomeExhausted       = "exhausted"
	OutcomeWorkspaceFailed = "workspace_failed"
)

// Record is one processed notification.
type Record struct {
	ThreadID   string    `yaml:"thread_id" json:"thread_id"`
	Repo       string    `yaml:"repo" json:"repo"`
	Issue      int       `yaml:"issue,omitempty" json:"issue,omitempty"`
	Outcome    string    `yaml:"outcome" json:"outcome"`
	PRURL      string    `yaml:"pr_url,omitempty" json:"pr_url,omitempty"`
	Attempts   int       `yaml:"attempts,omitempty" json:"attempts,omitempty"`
	Error      string    `yaml:"error,omitempty" json:"error,omitempty"`
	StartedAt  time.Time `yaml:"started_at" json:"started_at"`
	FinishedAt time.Time `yaml:"finished_at" json:"finished_at"`
}

// Duration is the wall time spent on the notification.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Ledger stores records as markdown documents, one per processed notification.
type Ledger struct {
	dir string
}

// NewLedger returns a Ledger rooted at dir.
func NewLedger(dir string) *Ledger {
	return &Ledger{dir: dir}
}

// DefaultDir returns the history directory under $XDG_DATA_HOME (or ~/.local/share).
func DefaultDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return filepath.Join(os.TempDir(), "coabot", "history")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "coabot", "history")
}

// Dir returns the ledger directory.
func (l *Ledger) Dir() string {
	return l.dir
}

// Save writes rec and returns the document path.
func (l *Ledger) Save(rec Record) (string, error) {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	path := filepath.Join(l.dir, documentName(rec))

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("creating history directory: %w", err)
	}
	err := store.WithLock(l.lockPath(), store.DefaultLockTimeout, func() error {
		return store.Write(path, rec, renderBody(rec))
	})
	if err != nil {
		return "", fmt.Errorf("saving history record for thread %s: %w", rec.ThreadID, err)
	}
	return path, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
// Unreadable documents are skipped.
func (l *Ledger) List(limit int) ([]Record, error) {
	if !store.Exists(l.dir) {
		return nil, nil
	}

	var paths []string
	err := store.WithReadLock(l.lockPath(), store.DefaultLockTimeout, func() error {
		var err error
		paths, err = store.List(l.dir)
		return err
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(paths))
	for _, p := range paths {
		var rec Record
		if _, err := store.Read(p, &rec); err != nil {
			slog.Warn("skipping unreadable history record", "path", p, "error", err)
			continue
		}
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return b.FinishedAt.Compare(a.FinishedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *Ledger) lockPath() string {
	return filepath.Join(l.dir, ".ledger")
}

// documentName orders files chronologically and keeps them unique per thread.
func documentName(rec Record) string {
	thread := strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator || r == ' ' {
			return '-'
		}
		return r
	}, rec.ThreadID)
	if thread == "" {
		thread = "unknown"
	}
	return rec.FinishedAt.UTC().Format("20060102T150405.000Z") + "-" + thread + store.DocumentExt
}

func renderBody(rec Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s", rec.Repo)
	if rec.Issue > 0 {
		fmt.Fprintf(&b, "#%d", rec.Issue)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Outcome: %s\n", rec.Outcome)
	if rec.PRURL != "" {
		fmt.Fprintf(&b, "\nPull request: %s\n", rec.PRURL)
	}
	if rec.Error != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", rec.Error)
	}
	return b.String()
}

package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup installs a charmbracelet/log backed slog default writing to stderr.
// Terminals get colored text; anything else (daemon log files, journald) gets JSON.
func Setup(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose, isTerminal(os.Stderr)))
}

// New builds a logger writing to w. Exposed so tests can capture output.
func New(w io.Writer, verbose, text bool) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "coabot",
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		handler.SetLevel(charmlog.InfoLevel)
	}

	if !text {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	return slog.New(handler)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// maxOutputTail caps how much command output is kept in error messages.
const maxOutputTail = 2000

// Command is an external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory.
	Dir string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a completed command.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes external commands. A non-zero exit is reported as a
// *ExitError alongside the Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command exits non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, tail(e.Output, maxOutputTail))
}

// ExecRunner runs commands with os/exec, capturing combined output.
type ExecRunner struct {
	// Timeout bounds each command when positive.
	Timeout time.Duration
}

// Run executes cmd and waits for it to finish.
func (r ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	slog.Debug("running command", "cmd", cmd.String(), "dir", cmd.Dir)
	start := time.Now()
	err := c.Run()
	res := &Result{Output: out.String(), Duration: time.Since(start)}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", cmd.String(), ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, &ExitError{Command: cmd.String(), ExitCode: res.ExitCode, Output: res.Output}
		}
		return res, fmt.Errorf("starting %s: %w", cmd.String(), err)
	}
	return res, nil
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

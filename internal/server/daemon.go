package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alanmeadows/coabot/internal/config"
	"github.com/alanmeadows/coabot/internal/store"
)

// LogFileName is the daemon log written under the configured log directory.
const LogFileName = "coabot.log"

// ServeFunc runs the daemon's work until ctx is cancelled.
type ServeFunc func(ctx context.Context) error

// StartOptions controls how the daemon is launched.
type StartOptions struct {
	LogDir     string
	Foreground bool
	// ConfigPath and Verbose are forwarded to the forked child.
	ConfigPath string
	Verbose    bool
}

// DataDir returns $XDG_DATA_HOME/coabot, falling back to ~/.local/share/coabot.
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return filepath.Join(os.TempDir(), "coabot")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "coabot")
}

// PIDFilePath returns the path to the daemon PID file.
func PIDFilePath() string {
	return filepath.Join(DataDir(), "coabot.pid")
}

// StartDaemon starts the bot daemon. With Foreground set, serve runs inline
// until SIGINT/SIGTERM; otherwise the binary re-executes itself detached.
func StartDaemon(opts StartOptions, serve ServeFunc) error {
	pidFile := PIDFilePath()
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	return store.WithLock(pidFile, store.DefaultLockTimeout, func() error {
		if running, pid, _, _ := DaemonStatus(); running {
			return fmt.Errorf("daemon already running (PID %d)", pid)
		}
		if opts.Foreground {
			return runForeground(serve)
		}
		return forkDaemon(opts)
	})
}

// forkArgs builds the child's command line.
func forkArgs(opts StartOptions) []string {
	args := []string{"server", "start", "--foreground"}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

func forkDaemon(opts StartOptions) error {
	logDir := config.ExpandHome(opts.LogDir)
	if logDir == "" {
		logDir = filepath.Join(DataDir(), "logs")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile := filepath.Join(logDir, LogFileName)

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	cmd := exec.Command(os.Args[0], forkArgs(opts)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdout = f
	cmd.Stderr = f

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}
	pid := cmd.Process.Pid

	// The child writes its own PID file; never Wait on it here.
	_ = cmd.Process.Release()

	fmt.Printf("daemon started (PID: %d)\n", pid)
	fmt.Printf("log file: %s\n", logFile)
	return nil
}

func runForeground(serve ServeFunc) error {
	if err := writePIDFile(os.Getpid()); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return serve(ctx)
}

// StopDaemon sends SIGTERM to the running daemon and waits for it to exit,
// escalating to SIGKILL after 30 seconds.
func StopDaemon() error {
	running, pid, _, err := DaemonStatus()
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process: %w", err)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			removePIDFile()
			return nil
		}
		return fmt.Errorf("sending SIGTERM: %w", err)
	}

	// A bootstrap run may be in flight; give it time to be cancelled.
	deadline := time.After(30 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			_ = proc.Signal(syscall.SIGKILL)
			removePIDFile()
			return fmt.Errorf("daemon did not stop gracefully, sent SIGKILL")
		case <-ticker.C:
			if err := proc.Signal(syscall.Signal(0)); err != nil {
				removePIDFile()
				return nil
			}
		}
	}
}

// DaemonStatus reports whether the daemon is running, its PID, and its uptime.
// A stale PID file is removed.
func DaemonStatus() (bool, int, time.Duration, error) {
	pidFile := PIDFilePath()
	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, 0, nil
		}
		return false, 0, 0, fmt.Errorf("reading PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, 0, fmt.Errorf("invalid PID file: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile()
		return false, 0, 0, nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		slog.Debug("removing stale PID file", "pid", pid)
		removePIDFile()
		return false, 0, 0, nil
	}

	info, err := os.Stat(pidFile)
	if err != nil {
		return true, pid, 0, nil
	}
	return true, pid, time.Since(info.ModTime()), nil
}

func writePIDFile(pid int) error {
	pidFile := PIDFilePath()
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("creating PID directory: %w", err)
	}
	tmp := pidFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, pidFile)
}

func removePIDFile() {
	_ = os.Remove(PIDFilePath())
}

// renderUnit returns the systemd user unit running the daemon in the foreground.
func renderUnit(execPath, home, workDir string) string {
	return fmt.Sprintf(`[Unit]
Description=coabot notification bot
After=network-online.target

[Service]
Type=simple
WorkingDirectory=%s
ExecStart=%s server start --foreground
Restart=on-failure
RestartSec=10s
TimeoutStopSec=45
Environment=HOME=%s

[Install]
WantedBy=default.target
`, workDir, execPath, home)
}

// InstallSystemdService writes ~/.config/systemd/user/coabot.service and enables it.
// The current directory becomes the service's working directory so relative
// temp and config paths resolve the same way they do interactively.
func InstallSystemdService() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home dir: %w", err)
	}
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable path: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	unitDir := filepath.Join(home, ".config", "systemd", "user")
	if err := os.MkdirAll(unitDir, 0755); err != nil {
		return fmt.Errorf("creating systemd directory: %w", err)
	}
	unitPath := filepath.Join(unitDir, "coabot.service")
	if err := os.WriteFile(unitPath, []byte(renderUnit(execPath, home, workDir)), 0644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}

	for _, args := range [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", "coabot"},
	} {
		if out, err := exec.Command("systemctl", args...).CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
		}
	}

	fmt.Printf("installed coabot.service at %s\n", unitPath)
	fmt.Println("service enabled, start with: systemctl --user start coabot")
	return nil
}

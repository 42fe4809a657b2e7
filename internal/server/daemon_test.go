package server

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFilePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/var/lib/bots")
	assert.Equal(t, filepath.Join("/var/lib/bots", "coabot", "coabot.pid"), PIDFilePath())
}

func TestDaemonStatus_NotRunning(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	running, pid, _, err := DaemonStatus()
	require.NoError(t, err)
	assert.False(t, running)
	assert.Zero(t, pid)
}

func TestDaemonStatus_Running(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	require.NoError(t, writePIDFile(os.Getpid()))

	running, pid, _, err := DaemonStatus()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestDaemonStatus_StalePID(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skip("true not available")
	}
	require.NoError(t, writePIDFile(cmd.Process.Pid))

	running, _, _, err := DaemonStatus()
	require.NoError(t, err)
	assert.False(t, running)
	_, statErr := os.Stat(PIDFilePath())
	assert.True(t, os.IsNotExist(statErr), "stale PID file is removed")
}

func TestDaemonStatus_InvalidPIDFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(PIDFilePath()), 0755))
	require.NoError(t, os.WriteFile(PIDFilePath(), []byte("not-a-pid"), 0644))

	_, _, _, err := DaemonStatus()
	assert.Error(t, err)
}

func TestStartDaemon_AlreadyRunning(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	require.NoError(t, writePIDFile(os.Getpid()))

	err := StartDaemon(StartOptions{Foreground: true}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(os.Getpid()))
}

func TestStopDaemon_NotRunning(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	assert.Error(t, StopDaemon())
}

func TestForkArgs(t *testing.T) {
	assert.Equal(t, []string{"server", "start", "--foreground"}, forkArgs(StartOptions{}))
	assert.Equal(t,
		[]string{"server", "start", "--foreground", "--config", "/etc/coabot.jsonc", "--verbose"},
		forkArgs(StartOptions{ConfigPath: "/etc/coabot.jsonc", Verbose: true}))
}

func TestRenderUnit(t *testing.T) {
	unit := renderUnit("/usr/local/bin/coabot", "/home/bot", "/srv/coabot")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/coabot server start --foreground")
	assert.Contains(t, unit, "WorkingDirectory=/srv/coabot")
	assert.Contains(t, unit, "Environment=HOME=/home/bot")
	assert.Contains(t, unit, "[Install]")
}

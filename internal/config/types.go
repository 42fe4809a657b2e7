package config

import (
	"path/filepath"
	"time"
)

// Config is the top-level coabot configuration.
type Config struct {
	GitHub        GitHubConfig        `json:"github"`
	Bot           BotConfig           `json:"bot"`
	Artifact      ArtifactConfig      `json:"artifact"`
	Tools         ToolsConfig         `json:"tools"`
	Server        ServerConfig        `json:"server"`
	History       HistoryConfig       `json:"history"`
	Notifications NotificationsConfig `json:"notifications"`
}

// GitHubConfig holds hosting platform settings.
type GitHubConfig struct {
	Token string `json:"token,omitempty"`
	// BaseURL selects a GitHub Enterprise API; empty means github.com.
	BaseURL string `json:"base_url,omitempty"`
	// CloneHost is prefixed to owner/name to build HTTPS clone URLs.
	CloneHost string `json:"clone_host"`
}

// BotConfig controls the notification poll loop.
type BotConfig struct {
	PollInterval string `json:"poll_interval"`
	// TempDir is the base directory for per-notification workspaces.
	// Relative paths resolve against the working directory.
	TempDir    string `json:"temp_dir"`
	MaxRetries int    `json:"max_retries"`
	// RetryDelay is the wait before the first publish retry; later retries
	// wait proportionally longer.
	RetryDelay string `json:"retry_delay"`
	// Reason is the notification reason that triggers processing.
	Reason string `json:"reason"`
}

// ParsePollInterval returns the poll interval as a time.Duration.
func (b BotConfig) ParsePollInterval() time.Duration {
	d, err := time.ParseDuration(b.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ParseRetryDelay returns the base publish retry delay. "0s" disables waiting.
func (b BotConfig) ParseRetryDelay() time.Duration {
	d, err := time.ParseDuration(b.RetryDelay)
	if err != nil || d < 0 {
		return 5 * time.Second
	}
	return d
}

// ResolveTempDir returns TempDir as an absolute path.
func (b BotConfig) ResolveTempDir() (string, error) {
	dir := b.TempDir
	if dir == "" {
		dir = "tmp"
	}
	return filepath.Abs(ExpandHome(dir))
}

// ArtifactConfig describes the generated file and the pull request carrying it.
type ArtifactConfig struct {
	Filename      string `json:"filename"`
	CommitMessage string `json:"commit_message"`
	PRTitle       string `json:"pr_title"`
	PRBody        string `json:"pr_body,omitempty"`
	// BaseBranch overrides the target repository's default branch.
	BaseBranch string `json:"base_branch,omitempty"`
}

// ToolsConfig names the external commands the workspace builder runs.
type ToolsConfig struct {
	Git        string `json:"git"`
	CloneDepth int    `json:"clone_depth"`
	// Bootstrap is the analysis bootstrap command followed by its arguments.
	Bootstrap []string `json:"bootstrap"`
	// CommandTimeout bounds each external command; empty disables the bound.
	CommandTimeout string `json:"command_timeout,omitempty"`
}

// ParseCommandTimeout returns the command timeout, or 0 when unset or invalid.
func (t ToolsConfig) ParseCommandTimeout() time.Duration {
	if t.CommandTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(t.CommandTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	// Port serves the status API while the daemon runs; 0 disables it.
	Port   int    `json:"port"`
	LogDir string `json:"log_dir"`
}

// HistoryConfig controls the run history ledger.
type HistoryConfig struct {
	Enabled *bool  `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
}

// IsEnabled returns whether run records are written. Defaults to true.
func (h HistoryConfig) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// NotificationsConfig holds outbound notification settings.
type NotificationsConfig struct {
	TeamsWebhookURL string   `json:"teams_webhook_url"`
	Events          []string `json:"events"`
}

// boolPtr returns a pointer to the given bool value.
func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with the bot's stock behaviour.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{
			CloneHost: "https://github.com",
		},
		Bot: BotConfig{
			PollInterval: "5s",
			TempDir:      "tmp",
			MaxRetries:   3,
			RetryDelay:   "5s",
			Reason:       "mention",
		},
		Artifact: ArtifactConfig{
			Filename:      ".coafile",
			CommitMessage: "coafile: Add coafile",
			PRTitle:       "Add coafile",
		},
		Tools: ToolsConfig{
			Git:        "git",
			CloneDepth: 100,
			Bootstrap:  []string{"coala-quickstart", "--ci"},
		},
		Server: ServerConfig{
			Port:   4099,
			LogDir: "~/.local/share/coabot/logs",
		},
		History: HistoryConfig{
			Enabled: boolPtr(true),
		},
	}
}

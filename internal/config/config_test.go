package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Bot.ParsePollInterval() != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.Bot.ParsePollInterval())
	}
	if cfg.Bot.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.Bot.MaxRetries)
	}
	if cfg.Bot.Reason != "mention" {
		t.Errorf("expected reason mention, got %s", cfg.Bot.Reason)
	}
	if cfg.Artifact.Filename != ".coafile" {
		t.Errorf("expected artifact .coafile, got %s", cfg.Artifact.Filename)
	}
	if cfg.Artifact.CommitMessage != "coafile: Add coafile" {
		t.Errorf("unexpected commit message %q", cfg.Artifact.CommitMessage)
	}
	if cfg.Artifact.PRTitle != "Add coafile" {
		t.Errorf("unexpected PR title %q", cfg.Artifact.PRTitle)
	}
	if cfg.Tools.CloneDepth != 100 {
		t.Errorf("expected clone depth 100, got %d", cfg.Tools.CloneDepth)
	}
	if len(cfg.Tools.Bootstrap) != 2 || cfg.Tools.Bootstrap[0] != "coala-quickstart" || cfg.Tools.Bootstrap[1] != "--ci" {
		t.Errorf("unexpected bootstrap command %v", cfg.Tools.Bootstrap)
	}
	if cfg.Tools.ParseCommandTimeout() != 0 {
		t.Errorf("expected no command timeout by default, got %v", cfg.Tools.ParseCommandTimeout())
	}
	if !cfg.History.IsEnabled() {
		t.Error("expected history enabled by default")
	}
}

func TestResolveTempDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	got, err := BotConfig{TempDir: "tmp"}.ResolveTempDir()
	if err != nil {
		t.Fatalf("ResolveTempDir failed: %v", err)
	}
	if got != filepath.Join(wd, "tmp") {
		t.Errorf("expected %s, got %s", filepath.Join(wd, "tmp"), got)
	}

	got, err = BotConfig{}.ResolveTempDir()
	if err != nil {
		t.Fatalf("ResolveTempDir failed: %v", err)
	}
	if got != filepath.Join(wd, "tmp") {
		t.Errorf("expected empty temp_dir to default to ./tmp, got %s", got)
	}

	abs := t.TempDir()
	got, _ = BotConfig{TempDir: abs}.ResolveTempDir()
	if got != abs {
		t.Errorf("expected absolute dir unchanged, got %s", got)
	}
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonc")

	content := []byte(`{
  // poll faster while debugging
  "bot": {
    "poll_interval": "30s"
  },
  "tools": {
    "clone_depth": 1
  }
}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := loadJSONC(path)
	if err != nil {
		t.Fatalf("loadJSONC failed: %v", err)
	}

	bot, ok := m["bot"].(map[string]any)
	if !ok {
		t.Fatal("expected bot to be a map")
	}
	if bot["poll_interval"] != "30s" {
		t.Errorf("expected poll_interval=30s, got %v", bot["poll_interval"])
	}
	tools, ok := m["tools"].(map[string]any)
	if !ok {
		t.Fatal("expected tools to be a map")
	}
	if tools["clone_depth"] != float64(1) {
		t.Errorf("expected clone_depth=1, got %v", tools["clone_depth"])
	}
}

func TestLoadJSONC_FileNotFound(t *testing.T) {
	_, err := loadJSONC("/nonexistent/path/config.jsonc")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadJSONC_MalformedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonc")

	if err := os.WriteFile(path, []byte(`{"bot": {"poll_interval": "5s"`), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := loadJSONC(path)
	if err == nil {
		t.Error("expected error for malformed JSONC")
	}
}

func TestMergeDeepPreservesNestedFields(t *testing.T) {
	cfg := DefaultConfig()

	src := map[string]any{
		"bot": map[string]any{
			"max_retries": json.Number("5"),
		},
	}
	if err := mergeIntoConfig(&cfg, src); err != nil {
		t.Fatalf("mergeIntoConfig failed: %v", err)
	}

	if cfg.Bot.MaxRetries != 5 {
		t.Errorf("expected max_retries=5, got %d", cfg.Bot.MaxRetries)
	}
	if cfg.Bot.PollInterval != "5s" {
		t.Errorf("expected poll_interval preserved as 5s, got %s", cfg.Bot.PollInterval)
	}
	if cfg.Artifact.Filename != ".coafile" {
		t.Errorf("expected artifact.filename preserved, got %s", cfg.Artifact.Filename)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("GITHUB_API_TOKEN", "api-token")
	t.Setenv("GITHUB_TOKEN", "fallback-token")
	t.Setenv("COABOT_TEMP_DIR", "/var/tmp/coabot")
	t.Setenv("COABOT_TEAMS_WEBHOOK_URL", "https://hooks.example.com/x")

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token != "api-token" {
		t.Errorf("expected GITHUB_API_TOKEN to win, got %s", cfg.GitHub.Token)
	}
	if cfg.Bot.TempDir != "/var/tmp/coabot" {
		t.Errorf("expected temp dir override, got %s", cfg.Bot.TempDir)
	}
	if cfg.Notifications.TeamsWebhookURL != "https://hooks.example.com/x" {
		t.Errorf("expected webhook override, got %s", cfg.Notifications.TeamsWebhookURL)
	}
}

func TestApplyEnvOverrides_GitHubTokenFallback(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("GITHUB_API_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "fallback-token")

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token != "fallback-token" {
		t.Errorf("expected GITHUB_TOKEN fallback, got %s", cfg.GitHub.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing token", func(c *Config) { c.GitHub.Token = "" }, "github.token"},
		{"negative retries", func(c *Config) { c.Bot.MaxRetries = -1 }, "bot.max_retries"},
		{"nested filename", func(c *Config) { c.Artifact.Filename = "conf/.coafile" }, "artifact.filename"},
		{"empty bootstrap", func(c *Config) { c.Tools.Bootstrap = nil }, "tools.bootstrap"},
		{"empty git", func(c *Config) { c.Tools.Git = "" }, "tools.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.GitHub.Token = "tok"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			ce, ok := err.(*ConfigurationError)
			if !ok {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ce.Field)
			}
			if !IsConfigurationError(err) {
				t.Error("IsConfigurationError should match")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.GitHub.Token = "tok"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestBotConfigParsePollInterval_Invalid(t *testing.T) {
	b := BotConfig{PollInterval: "not-a-duration"}
	if b.ParsePollInterval() != 5*time.Second {
		t.Error("expected fallback to 5s for invalid duration")
	}
	b = BotConfig{PollInterval: "-1s"}
	if b.ParsePollInterval() != 5*time.Second {
		t.Error("expected fallback to 5s for negative duration")
	}
}

func TestBotConfigParseRetryDelay(t *testing.T) {
	if d := DefaultConfig().Bot.ParseRetryDelay(); d != 5*time.Second {
		t.Errorf("expected default retry delay 5s, got %s", d)
	}
	if d := (BotConfig{RetryDelay: "0s"}).ParseRetryDelay(); d != 0 {
		t.Errorf("expected 0s to disable waiting, got %s", d)
	}
	if d := (BotConfig{RetryDelay: "soon"}).ParseRetryDelay(); d != 5*time.Second {
		t.Errorf("expected fallback to 5s for invalid duration, got %s", d)
	}
}

func TestLoadMergesUserAndOverride(t *testing.T) {
	userConfigDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userConfigDir)
	t.Setenv("GITHUB_API_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("COABOT_TEMP_DIR", "")
	t.Setenv("COABOT_TEAMS_WEBHOOK_URL", "")

	botDir := filepath.Join(userConfigDir, "coabot")
	if err := os.MkdirAll(botDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	userConfig := []byte(`{"bot":{"poll_interval":"1m","max_retries":1},"github":{"token":"user-token"}}`)
	if err := os.WriteFile(filepath.Join(botDir, "coabot.jsonc"), userConfig, 0644); err != nil {
		t.Fatalf("failed to write user config: %v", err)
	}

	overridePath := filepath.Join(t.TempDir(), "override.jsonc")
	overrideConfig := []byte(`{"bot":{"poll_interval":"10s"}}`)
	if err := os.WriteFile(overridePath, overrideConfig, 0644); err != nil {
		t.Fatalf("failed to write override config: %v", err)
	}

	cfg, err := Load(overridePath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bot.PollInterval != "10s" {
		t.Errorf("expected bot.poll_interval=10s, got %s", cfg.Bot.PollInterval)
	}
	if cfg.Bot.MaxRetries != 1 {
		t.Errorf("expected bot.max_retries=1 from user config, got %d", cfg.Bot.MaxRetries)
	}
	if cfg.GitHub.Token != "user-token" {
		t.Errorf("expected token from user config, got %s", cfg.GitHub.Token)
	}
	if cfg.Artifact.Filename != ".coafile" {
		t.Errorf("expected default artifact filename, got %s", cfg.Artifact.Filename)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/data/coabot"); got != filepath.Join(home, "data", "coabot") {
		t.Errorf("expected path under home, got %s", got)
	}
	if got := ExpandHome("~"); got != home {
		t.Errorf("expected home, got %s", got)
	}
	if got := ExpandHome("/var/lib/coabot"); got != "/var/lib/coabot" {
		t.Errorf("expected absolute path unchanged, got %s", got)
	}
}

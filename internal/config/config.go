package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// ConfigurationError reports a missing or invalid setting that prevents startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load reads and merges configuration from user-level and working-directory JSONC files.
// Resolution order: defaults → user config (~/.config/coabot/coabot.jsonc) →
// working-directory config (.coabot/coabot.jsonc) → explicit path (if non-empty) → environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load user-level config
	userDir, err := os.UserConfigDir()
	if err == nil {
		userPath := filepath.Join(userDir, "coabot", "coabot.jsonc")
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	// Load working-directory config
	if localMap, err := loadJSONC(LocalConfigPath()); err == nil {
		if err := mergeIntoConfig(&cfg, localMap); err != nil {
			return nil, fmt.Errorf("merging local config: %w", err)
		}
	}

	// An explicit path must exist.
	if path != "" {
		m, err := loadJSONC(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		if err := mergeIntoConfig(&cfg, m); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", path, err)
		}
	}

	// Environment variable overrides
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// LocalConfigPath returns the working-directory config file path.
func LocalConfigPath() string {
	return filepath.Join(".coabot", "coabot.jsonc")
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GitHub.Token) == "" {
		return &ConfigurationError{Field: "github.token", Reason: "set GITHUB_API_TOKEN"}
	}
	if c.Bot.MaxRetries < 0 {
		return &ConfigurationError{Field: "bot.max_retries", Reason: "must not be negative"}
	}
	if c.Artifact.Filename == "" || filepath.Base(c.Artifact.Filename) != c.Artifact.Filename {
		return &ConfigurationError{Field: "artifact.filename", Reason: "must be a plain file name"}
	}
	if len(c.Tools.Bootstrap) == 0 || c.Tools.Bootstrap[0] == "" {
		return &ConfigurationError{Field: "tools.bootstrap", Reason: "command is required"}
	}
	if c.Tools.Git == "" {
		return &ConfigurationError{Field: "tools.git", Reason: "command is required"}
	}
	return nil
}

// IsConfigurationError reports whether err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map over it,
// then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	// Deep merge: src overrides dst
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_API_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if dir := os.Getenv("COABOT_TEMP_DIR"); dir != "" {
		cfg.Bot.TempDir = dir
	}
	if url := os.Getenv("COABOT_TEAMS_WEBHOOK_URL"); url != "" {
		cfg.Notifications.TeamsWebhookURL = url
	}
}

// ExpandHome replaces a leading "~/" in a path with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

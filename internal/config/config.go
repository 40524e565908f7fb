// Package config handles configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/eachlabs/pager/internal/pager"
)

// Config represents the pager configuration.
type Config struct {
	Slack  SlackConfig  `toml:"slack"`
	Pager  PagerConfig  `toml:"pager"`
	Browse BrowseConfig `toml:"browse"`
}

// SlackConfig holds Slack connection settings.
type SlackConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	AppToken string `toml:"app_token"`
}

// PagerConfig holds paginator defaults.
type PagerConfig struct {
	PageSize      int    `toml:"page_size"`
	Timeout       string `toml:"timeout"`
	StopAction    string `toml:"stop_action"`
	TimeoutAction string `toml:"timeout_action"`
}

// BrowseConfig holds the browse demo settings.
type BrowseConfig struct {
	Root string `toml:"root"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from file
	configPath := ConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnv()

	// Expand paths
	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if p := os.Getenv("PAGER_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(StateDir(), "config.toml")
}

// StateDir returns the pager state directory.
func StateDir() string {
	if p := os.Getenv("PAGER_STATE_DIR"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pager")
}

// TimeoutDuration parses the configured inactivity timeout. An empty
// value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Pager.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Pager.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Pager.Timeout, err)
	}
	return d, nil
}

// StopAction parses the configured stop action.
func (c *Config) StopAction() (pager.Action, error) {
	if c.Pager.StopAction == "" {
		return pager.ActionDelete, nil
	}
	return pager.ParseAction(c.Pager.StopAction)
}

// TimeoutAction parses the configured timeout action.
func (c *Config) TimeoutAction() (pager.Action, error) {
	if c.Pager.TimeoutAction == "" {
		return pager.ActionClear, nil
	}
	return pager.ParseAction(c.Pager.TimeoutAction)
}

func defaultConfig() *Config {
	return &Config{
		Pager: PagerConfig{
			PageSize: 10,
			Timeout:  "3m",
		},
		Browse: BrowseConfig{
			Root: ".",
		},
	}
}

func (c *Config) applyEnv() {
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		c.Slack.BotToken = token
		c.Slack.Enabled = true
	}
	if token := os.Getenv("SLACK_APP_TOKEN"); token != "" {
		c.Slack.AppToken = token
	}
	if root := os.Getenv("PAGER_BROWSE_ROOT"); root != "" {
		c.Browse.Root = root
	}
}

func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()

	expand := func(p string) string {
		if strings.HasPrefix(p, "~/") {
			return filepath.Join(home, p[2:])
		}
		if strings.HasPrefix(p, "$HOME/") {
			return filepath.Join(home, p[6:])
		}
		return p
	}

	c.Browse.Root = expand(c.Browse.Root)
}

func (c *Config) validate() error {
	if c.Pager.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.Pager.PageSize)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.StopAction(); err != nil {
		return err
	}
	if _, err := c.TimeoutAction(); err != nil {
		return err
	}
	return nil
}

// Save writes the config to file.
func (c *Config) Save() error {
	configPath := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// EnsureDirs creates necessary directories.
func EnsureDirs() error {
	if err := os.MkdirAll(StateDir(), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", StateDir(), err)
	}
	return nil
}

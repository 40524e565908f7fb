package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/eachlabs/pager/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage pager configuration.

Subcommands:
  get [key]              Show configuration value(s)
  set <key> <value>      Set a configuration value
  edit                   Open config in $EDITOR
  path                   Show config file path`,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration",
	Long: `Show configuration values.

Examples:
  pager config get                    # Show all config
  pager config get pager.page_size
  pager config get slack.bot_token`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			enc := toml.NewEncoder(os.Stdout)
			return enc.Encode(cfg)
		}

		key := args[0]
		value := getConfigValue(cfg, key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}

		fmt.Printf("%v\n", value)
		return nil
	},
}

func getConfigValue(cfg *config.Config, key string) interface{} {
	parts := strings.Split(key, ".")

	switch parts[0] {
	case "slack":
		if len(parts) == 1 {
			return cfg.Slack
		}
		switch parts[1] {
		case "enabled":
			return cfg.Slack.Enabled
		case "bot_token":
			return maskToken(cfg.Slack.BotToken)
		case "app_token":
			return maskToken(cfg.Slack.AppToken)
		}

	case "pager":
		if len(parts) == 1 {
			return cfg.Pager
		}
		switch parts[1] {
		case "page_size":
			return cfg.Pager.PageSize
		case "timeout":
			return cfg.Pager.Timeout
		case "stop_action":
			return cfg.Pager.StopAction
		case "timeout_action":
			return cfg.Pager.TimeoutAction
		}

	case "browse":
		if len(parts) == 1 {
			return cfg.Browse
		}
		switch parts[1] {
		case "root":
			return cfg.Browse.Root
		}
	}

	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Examples:
  pager config set pager.page_size 15
  pager config set pager.timeout 5m
  pager config set browse.root ~/docs`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if err := setConfigValue(cfg, key, value); err != nil {
			return err
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func setConfigValue(cfg *config.Config, key, value string) error {
	parts := strings.Split(key, ".")

	switch parts[0] {
	case "slack":
		if len(parts) != 2 {
			return fmt.Errorf("invalid key: %s", key)
		}
		switch parts[1] {
		case "enabled":
			cfg.Slack.Enabled = value == "true"
		case "bot_token":
			cfg.Slack.BotToken = value
		case "app_token":
			cfg.Slack.AppToken = value
		default:
			return fmt.Errorf("unknown field: %s", parts[1])
		}

	case "pager":
		if len(parts) != 2 {
			return fmt.Errorf("invalid key: %s", key)
		}
		switch parts[1] {
		case "page_size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("page_size must be a positive integer, got %q", value)
			}
			cfg.Pager.PageSize = n
		case "timeout":
			cfg.Pager.Timeout = value
		case "stop_action":
			cfg.Pager.StopAction = value
		case "timeout_action":
			cfg.Pager.TimeoutAction = value
		default:
			return fmt.Errorf("unknown field: %s", parts[1])
		}
		// Reject bad durations and action names before saving.
		if _, err := cfg.TimeoutDuration(); err != nil {
			return err
		}
		if _, err := cfg.StopAction(); err != nil {
			return err
		}
		if _, err := cfg.TimeoutAction(); err != nil {
			return err
		}

	case "browse":
		if len(parts) != 2 || parts[1] != "root" {
			return fmt.Errorf("invalid key: %s", key)
		}
		cfg.Browse.Root = value

	default:
		return fmt.Errorf("unknown section: %s", parts[0])
	}

	return nil
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config in editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vim"
		}

		configPath := config.ConfigPath()

		// Ensure config exists
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		c := exec.Command(editor, configPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.ConfigPath())
	},
}

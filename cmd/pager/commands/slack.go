package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eachlabs/pager/internal/browse"
	"github.com/eachlabs/pager/internal/channel"
	"github.com/eachlabs/pager/internal/config"
	"github.com/eachlabs/pager/internal/pager"
	"github.com/eachlabs/pager/internal/session"
)

var (
	slackCmdBotToken string
	slackCmdAppToken string
)

var slackCmd = &cobra.Command{
	Use:   "slack",
	Short: "Serve paginators over Slack",
	Long: `Serve paginators over Slack using Socket Mode.

Users start a paginator with:
  /pager            Browse the configured root directory
  /pager <path>     Browse a file or directory
  /pager help       Show usage

Required tokens:
  - Bot Token (xoxb-...): OAuth token with chat:write and commands
  - App Token (xapp-...): Socket Mode token from App settings

Examples:
  pager slack --bot-token xoxb-... --app-token xapp-...

  # Or using environment variables:
  export SLACK_BOT_TOKEN=xoxb-...
  export SLACK_APP_TOKEN=xapp-...
  pager slack`,
	RunE: runSlack,
}

func init() {
	slackCmd.Flags().StringVar(&slackCmdBotToken, "bot-token", "", "Slack bot token (xoxb-...)")
	slackCmd.Flags().StringVar(&slackCmdAppToken, "app-token", "", "Slack app token (xapp-...)")

	rootCmd.AddCommand(slackCmd)
}

func runSlack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	botToken := slackCmdBotToken
	if botToken == "" {
		botToken = cfg.Slack.BotToken
	}
	appToken := slackCmdAppToken
	if appToken == "" {
		appToken = cfg.Slack.AppToken
	}

	if botToken == "" || appToken == "" {
		fmt.Println("ERROR: Slack tokens not set")
		fmt.Println("")
		fmt.Println("Set via flags:")
		fmt.Println("  pager slack --bot-token xoxb-... --app-token xapp-...")
		fmt.Println("")
		fmt.Println("Or environment variables:")
		fmt.Println("  export SLACK_BOT_TOKEN=xoxb-...")
		fmt.Println("  export SLACK_APP_TOKEN=xapp-...")
		return fmt.Errorf("Slack tokens required")
	}

	// Load already validated these.
	stopAction, _ := cfg.StopAction()
	timeoutAction, _ := cfg.TimeoutAction()
	timeout, _ := cfg.TimeoutDuration()
	pageSize := cfg.Pager.PageSize

	sessions := session.NewManager(timeout)

	start := func(ctx context.Context, req channel.StartRequest) (pager.ViewConfig, error) {
		path := cfg.Browse.Root
		if req.Text != "" {
			path = req.Text
		}
		src, err := browse.NewSource(path, pageSize)
		if err != nil {
			return pager.ViewConfig{}, err
		}
		return pager.ViewConfig{
			Sources:       []pager.Source{src},
			AllowedUsers:  []string{req.UserID},
			StopAction:    stopAction,
			TimeoutAction: timeoutAction,
		}, nil
	}

	var ch channel.Channel
	ch, err = channel.NewSlackChannel(channel.SlackConfig{
		BotToken: botToken,
		AppToken: appToken,
	}, sessions, start)
	if err != nil {
		return fmt.Errorf("failed to create Slack channel: %w", err)
	}

	// Handle signals
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down Slack pager...")
		cancel()
	}()

	if err := ch.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s channel: %w", ch.Name(), err)
	}

	fmt.Println("╭─────────────────────────────────────────╮")
	fmt.Println("│             pager Slack bot             │")
	fmt.Println("╰─────────────────────────────────────────╯")
	fmt.Printf("Browse root: %s\n", cfg.Browse.Root)
	fmt.Println("Waiting for /pager commands...")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println("")

	<-ctx.Done()
	return ch.Stop()
}

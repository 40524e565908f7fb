package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/eachlabs/pager/internal/pager"
	"github.com/eachlabs/pager/internal/session"
)

// slashCommand is the command users invoke to start a paginator.
const slashCommand = "/pager"

// StartRequest is a user command asking for a new paginator.
type StartRequest struct {
	ChannelID string
	UserID    string
	Text      string
}

// StartFunc builds the view configuration for a start request. The
// application decides which sources back the paginator.
type StartFunc func(ctx context.Context, req StartRequest) (pager.ViewConfig, error)

// SlackChannel serves paginators over Slack via Socket Mode. Slash
// commands start new paginator sessions; block actions on the rendered
// controls are routed back into them.
type SlackChannel struct {
	client       *slack.Client
	socketClient *socketmode.Client
	botUserID    string

	sessions *session.Manager
	start    StartFunc

	done chan struct{}

	mu      sync.Mutex
	started bool
}

// SlackConfig holds Slack configuration.
type SlackConfig struct {
	BotToken string // xoxb-...
	AppToken string // xapp-...
}

// NewSlackChannel creates a new Slack channel.
func NewSlackChannel(cfg SlackConfig, sessions *session.Manager, start StartFunc) (*SlackChannel, error) {
	if cfg.BotToken == "" || cfg.AppToken == "" {
		return nil, fmt.Errorf("both bot token and app token are required")
	}
	if start == nil {
		return nil, fmt.Errorf("a start function is required")
	}

	client := slack.New(
		cfg.BotToken,
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(false),
	)

	authResp, err := client.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return &SlackChannel{
		client:       client,
		socketClient: socketClient,
		botUserID:    authResp.UserID,
		sessions:     sessions,
		start:        start,
		done:         make(chan struct{}),
	}, nil
}

func (s *SlackChannel) Name() string {
	return "slack"
}

func (s *SlackChannel) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	go s.handleEvents(ctx)

	go func() {
		if err := s.socketClient.Run(); err != nil {
			fmt.Printf("Slack socket error: %v\n", err)
		}
	}()

	return nil
}

func (s *SlackChannel) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	select {
	case <-s.done:
		// Already closed
	default:
		close(s.done)
	}

	return nil
}

// StartPaginator opens a new paginator session in the given channel.
func (s *SlackChannel) StartPaginator(ctx context.Context, channelID string, cfg pager.ViewConfig) error {
	sess := s.sessions.NewSession()
	tr := NewMessageTransport(s.client, channelID, sess.ID)
	view, err := pager.NewView(tr, cfg)
	if err != nil {
		return err
	}
	return sess.Begin(ctx, view)
}

func (s *SlackChannel) handleEvents(ctx context.Context) {
	fmt.Println("[slack] Event handler started, waiting for events...")
	for {
		select {
		case <-ctx.Done():
			fmt.Println("[slack] Context done, stopping event handler")
			return
		case <-s.done:
			fmt.Println("[slack] Done signal received, stopping event handler")
			return
		case evt := <-s.socketClient.Events:
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					fmt.Println("[slack] Failed to cast SlashCommand")
					continue
				}
				fmt.Printf("[slack] SlashCommand: %s %s\n", cmd.Command, cmd.Text)
				s.socketClient.Ack(*evt.Request)
				s.handleSlashCommand(ctx, cmd)

			case socketmode.EventTypeInteractive:
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					fmt.Println("[slack] Failed to cast InteractionCallback")
					continue
				}
				s.socketClient.Ack(*evt.Request)
				s.handleInteraction(ctx, callback)

			case socketmode.EventTypeEventsAPI:
				// Mentions and messages are not used; ack and move on.
				s.socketClient.Ack(*evt.Request)

			case socketmode.EventTypeConnecting:
				fmt.Println("[slack] Connecting to Slack...")

			case socketmode.EventTypeConnected:
				fmt.Println("[slack] Connected to Slack!")

			case socketmode.EventTypeConnectionError:
				fmt.Println("[slack] Connection error!")

			case socketmode.EventTypeHello:
				// Ignore.

			default:
				fmt.Printf("[slack] Unknown event type: %s\n", evt.Type)
			}
		}
	}
}

func (s *SlackChannel) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	if cmd.Command != slashCommand {
		return
	}

	text := strings.TrimSpace(cmd.Text)
	if text == "help" {
		s.sendHelp(cmd.ChannelID)
		return
	}

	cfg, err := s.start(ctx, StartRequest{
		ChannelID: cmd.ChannelID,
		UserID:    cmd.UserID,
		Text:      text,
	})
	if err != nil {
		s.client.PostMessage(cmd.ChannelID, slack.MsgOptionText(fmt.Sprintf("❌ %v", err), false))
		return
	}

	if err := s.StartPaginator(ctx, cmd.ChannelID, cfg); err != nil {
		fmt.Printf("[slack] failed to start paginator: %v\n", err)
		s.client.PostMessage(cmd.ChannelID, slack.MsgOptionText(fmt.Sprintf("❌ Failed to start paginator: %v", err), false))
	}
}

func (s *SlackChannel) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions {
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		if !strings.HasPrefix(action.BlockID, blockIDPrefix) {
			continue
		}
		rest := strings.TrimPrefix(action.BlockID, blockIDPrefix)
		sessionID := strings.SplitN(rest, ":", 2)[0]

		in := &slackInteraction{
			client:    s.client,
			sessionID: sessionID,
			channelID: callback.Channel.ID,
			timestamp: callback.Message.Timestamp,
			userID:    callback.User.ID,
			control:   pager.ControlID(action.ActionID),
			optionKey: action.SelectedOption.Value,
		}

		err := s.sessions.Dispatch(ctx, sessionID, in)
		switch {
		case err == nil:
		case errors.Is(err, pager.ErrNotAllowed):
			fmt.Printf("[slack] ignoring interaction from %s: not allowed\n", callback.User.ID)
		case errors.Is(err, pager.ErrStopped):
			// Late press on an already finished paginator.
		default:
			fmt.Printf("[slack] interaction failed: %v\n", err)
		}
	}
}

func (s *SlackChannel) sendHelp(channelID string) {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject("plain_text", "📖 Pager", true, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", "*Browse paged content:*\n`/pager` - Browse the configured directory\n`/pager <path>` - Browse a file or directory", false, false),
			nil, nil,
		),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", "Use the buttons to page, the menu to drill in, ↩ to go back and 👍 to finish.", false, false),
			nil, nil,
		),
	}

	s.client.PostMessage(channelID, slack.MsgOptionBlocks(blocks...))
}

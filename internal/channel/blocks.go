package channel

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/eachlabs/pager/internal/pager"
)

// Block IDs on paginator messages carry the session ID so interactions can
// be routed back: "pager:<session>" plus a suffix keeping IDs unique
// within the message.
const blockIDPrefix = "pager:"

// MessageTransport sends, edits and deletes one paginated message in a
// Slack channel.
type MessageTransport struct {
	client    *slack.Client
	channelID string
	sessionID string
}

// NewMessageTransport creates a transport bound to a channel and session.
func NewMessageTransport(client *slack.Client, channelID, sessionID string) *MessageTransport {
	return &MessageTransport{
		client:    client,
		channelID: channelID,
		sessionID: sessionID,
	}
}

type slackHandle struct {
	channelID string
	timestamp string
}

func (h slackHandle) ID() string { return h.timestamp }

func (t *MessageTransport) Send(ctx context.Context, p *pager.Payload, c *pager.Controls) (pager.MessageHandle, error) {
	_, ts, err := t.client.PostMessageContext(ctx, t.channelID, messageOptions(p, c, t.sessionID)...)
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	return slackHandle{channelID: t.channelID, timestamp: ts}, nil
}

func (t *MessageTransport) Edit(ctx context.Context, h pager.MessageHandle, p *pager.Payload, c *pager.Controls) error {
	sh, ok := h.(slackHandle)
	if !ok {
		return fmt.Errorf("channel: foreign message handle %T", h)
	}
	_, _, _, err := t.client.UpdateMessageContext(ctx, sh.channelID, sh.timestamp, messageOptions(p, c, t.sessionID)...)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

func (t *MessageTransport) Delete(ctx context.Context, h pager.MessageHandle) error {
	sh, ok := h.(slackHandle)
	if !ok {
		return fmt.Errorf("channel: foreign message handle %T", h)
	}
	if _, _, err := t.client.DeleteMessageContext(ctx, sh.channelID, sh.timestamp); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// slackInteraction acknowledges a block action by editing or deleting the
// message it came from.
type slackInteraction struct {
	client    *slack.Client
	sessionID string
	channelID string
	timestamp string
	userID    string
	control   pager.ControlID
	optionKey string
}

func (i *slackInteraction) UserID() string           { return i.userID }
func (i *slackInteraction) Control() pager.ControlID { return i.control }
func (i *slackInteraction) OptionKey() string        { return i.optionKey }

func (i *slackInteraction) RespondEdit(ctx context.Context, p *pager.Payload, c *pager.Controls) error {
	_, _, _, err := i.client.UpdateMessageContext(ctx, i.channelID, i.timestamp, messageOptions(p, c, i.sessionID)...)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

func (i *slackInteraction) DeferDelete(ctx context.Context) error {
	if _, _, err := i.client.DeleteMessageContext(ctx, i.channelID, i.timestamp); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func messageOptions(p *pager.Payload, c *pager.Controls, sessionID string) []slack.MsgOption {
	blocks := payloadBlocks(p)
	blocks = append(blocks, controlBlocks(c, sessionID)...)

	opts := []slack.MsgOption{slack.MsgOptionBlocks(blocks...)}
	if p != nil && p.Text != "" {
		// Notification fallback text.
		opts = append(opts, slack.MsgOptionText(p.Text, false))
	}
	return opts
}

func payloadBlocks(p *pager.Payload) []slack.Block {
	if p == nil {
		return nil
	}

	if p.Text != "" {
		return []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject("mrkdwn", p.Text, false, false),
				nil, nil,
			),
		}
	}

	e := p.Embed
	if e == nil {
		return nil
	}

	var blocks []slack.Block
	if e.Title != "" {
		blocks = append(blocks, slack.NewHeaderBlock(
			slack.NewTextBlockObject("plain_text", e.Title, true, false),
		))
	}
	if e.Body != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", e.Body, false, false),
			nil, nil,
		))
	}
	if len(e.Fields) > 0 {
		fields := make([]*slack.TextBlockObject, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, slack.NewTextBlockObject(
				"mrkdwn", fmt.Sprintf("*%s*\n%s", f.Name, f.Value), false, false,
			))
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}
	if e.Footer != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn", e.Footer, false, false),
		))
	}
	return blocks
}

// controlBlocks renders the control layout. Block Kit has no disabled
// state for buttons, so disabled controls are omitted; a fully disabled
// layout renders no controls at all.
func controlBlocks(c *pager.Controls, sessionID string) []slack.Block {
	if c == nil || c.Disabled {
		return nil
	}

	blockID := blockIDPrefix + sessionID
	var blocks []slack.Block

	if len(c.Select) > 0 {
		options := make([]*slack.OptionBlockObject, 0, len(c.Select))
		for _, opt := range c.Select {
			var desc *slack.TextBlockObject
			if opt.Description != "" {
				desc = slack.NewTextBlockObject("plain_text", opt.Description, true, false)
			}
			options = append(options, slack.NewOptionBlockObject(
				opt.Key(),
				slack.NewTextBlockObject("plain_text", opt.Label, true, false),
				desc,
			))
		}
		sel := slack.NewOptionsSelectBlockElement(
			slack.OptTypeStatic,
			slack.NewTextBlockObject("plain_text", c.Placeholder, true, false),
			string(pager.ControlNavigate),
			options...,
		)
		blocks = append(blocks, slack.NewActionBlock(blockID+":select", sel))
	}

	rows := map[int][]slack.BlockElement{}
	for _, b := range c.Buttons {
		if b.Disabled {
			continue
		}
		el := slack.NewButtonBlockElement(
			string(b.ID), string(b.ID),
			slack.NewTextBlockObject("plain_text", b.Label, true, false),
		)
		switch b.Style {
		case pager.StylePrimary:
			el = el.WithStyle(slack.StylePrimary)
		case pager.StyleDanger:
			el = el.WithStyle(slack.StyleDanger)
		}
		rows[b.Row] = append(rows[b.Row], el)
	}

	for _, row := range []int{1, 2} {
		if els := rows[row]; len(els) > 0 {
			blocks = append(blocks, slack.NewActionBlock(
				fmt.Sprintf("%s:row%d", blockID, row), els...,
			))
		}
	}
	return blocks
}

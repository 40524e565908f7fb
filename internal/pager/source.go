// Package pager implements a recursive pagination widget for interactive
// messaging surfaces.
//
// A View owns a stack of page sources. The top of the stack is rendered as
// the current page, navigation buttons move between pages, and a select menu
// drills into nested sources declared by the current page. Surfaces (Slack,
// terminal) plug in through the Transport and Interaction interfaces.
package pager

import (
	"context"
	"errors"
)

var (
	// End is returned by an Iterator once its sequence is exhausted.
	// It is a signal, not a failure.
	End = errors.New("pager: end of sequence")

	// ErrStopped is returned when an interaction arrives after the view
	// has been stopped or has timed out.
	ErrStopped = errors.New("pager: view is stopped")

	// ErrNoParent is returned by a back transition on the root source.
	ErrNoParent = errors.New("pager: no parent source to go back to")

	// ErrInvalidPayload is returned when a format callback sets both or
	// neither of Payload.Text and Payload.Embed.
	ErrInvalidPayload = errors.New("pager: payload must set exactly one of text or embed")

	// ErrNotAllowed is returned when the interacting user is not in the
	// view's allowed set.
	ErrNotAllowed = errors.New("pager: user is not allowed to interact")

	// ErrUnknownOption is returned when a navigate interaction references
	// an option key that is not part of the current page.
	ErrUnknownOption = errors.New("pager: unknown option key")
)

// Source provides indexed access to a bounded or growing collection of
// content pages. GetPage, FormatPage and PageOptions may block on I/O or
// lazy production; the view calls them sequentially in that order.
type Source interface {
	// CurrentIndex returns the last page index rendered by this source.
	CurrentIndex() int

	// SetCurrentIndex records the page index being rendered.
	SetCurrentIndex(index int)

	// MaxPages returns the currently known page count. Zero means the
	// source has no content and the view must disable all interaction.
	MaxPages() int

	// GetPage returns the page content for a 0-based index.
	GetPage(ctx context.Context, index int) (any, error)

	// FormatPage converts page content into the outbound payload.
	FormatPage(ctx context.Context, v *View, page any) (*Payload, error)

	// PageOptions declares the child sources the user may drill into
	// from the given page.
	PageOptions(ctx context.Context, v *View, page any) ([]Option, error)
}

// Cursor implements the current-index bookkeeping shared by all sources.
// Embed it in Source implementations.
type Cursor struct {
	index int
}

func (c *Cursor) CurrentIndex() int         { return c.index }
func (c *Cursor) SetCurrentIndex(index int) { c.index = index }

// Payload is the rendered content of a page: either plain text or rich
// embed content, never both.
type Payload struct {
	Text  string
	Embed *Embed
}

// Embed is rich message content. Surfaces decide how to present it
// (Block Kit sections on Slack, styled boxes in the terminal).
type Embed struct {
	Title  string
	Body   string
	Fields []EmbedField
	Footer string
}

// EmbedField is a labeled value inside an embed.
type EmbedField struct {
	Name  string
	Value string
}

// Text returns a plain-text payload.
func Text(s string) *Payload { return &Payload{Text: s} }

func (p *Payload) validate() error {
	if p == nil {
		return ErrInvalidPayload
	}
	if (p.Text != "") == (p.Embed != nil) {
		return ErrInvalidPayload
	}
	return nil
}

// Option is a selectable reference from within a page to a nested source.
// The view assigns each option a key unique within its page.
type Option struct {
	Label       string
	Description string

	key    string
	source Source
}

// NewOption creates an option that drills into the given source when
// selected.
func NewOption(label string, source Source) Option {
	return Option{Label: label, source: source}
}

// WithDescription sets the option's secondary text.
func (o Option) WithDescription(desc string) Option {
	o.Description = desc
	return o
}

// Key returns the view-assigned selection key, e.g. "0", "1".
func (o Option) Key() string { return o.key }

// Source returns the nested source this option drills into.
func (o Option) Source() Source { return o.source }

// MessageHandle identifies a sent message on its surface.
type MessageHandle interface {
	ID() string
}

// Transport is the outbound capability a surface provides: sending,
// editing and deleting the paginated message. A nil Controls means the
// message carries no interactive controls.
type Transport interface {
	Send(ctx context.Context, p *Payload, c *Controls) (MessageHandle, error)
	Edit(ctx context.Context, h MessageHandle, p *Payload, c *Controls) error
	Delete(ctx context.Context, h MessageHandle) error
}

// Interaction is one user action on a control, together with the surface's
// acknowledgment capabilities.
type Interaction interface {
	// UserID identifies the interacting user.
	UserID() string

	// Control identifies which control was used.
	Control() ControlID

	// OptionKey returns the selected option key for navigate
	// interactions, empty otherwise.
	OptionKey() string

	// RespondEdit acknowledges the interaction by editing the message.
	RespondEdit(ctx context.Context, p *Payload, c *Controls) error

	// DeferDelete acknowledges the interaction and deletes the message.
	DeferDelete(ctx context.Context) error
}

package pager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ViewConfig configures a paginator view. All fields except Sources are
// optional.
type ViewConfig struct {
	// Sources is the initial stack; the last entry is rendered first.
	Sources []Source

	// AllowedUsers restricts who may interact. Nil means anyone.
	AllowedUsers []string

	// StopAction is applied to the message when the user stops the
	// paginator. Defaults to ActionDelete.
	StopAction Action

	// TimeoutAction is applied to the message when the session times
	// out. Defaults to ActionClear.
	TimeoutAction Action
}

// View renders a stack of page sources into one outbound message and turns
// user interactions into state transitions. A view handles one transition
// at a time; callers must serialize dispatch (see the session package).
type View struct {
	transport     Transport
	sources       []Source
	allowed       map[string]struct{}
	stopAction    Action
	timeoutAction Action

	msg           MessageHandle
	payload       *Payload
	options       []Option
	optionSources map[string]Source
	controls      *Controls
	stopped       bool
}

// NewView creates a view over the given source stack. Nothing is rendered
// or sent until Start or ShowPage is called.
func NewView(transport Transport, cfg ViewConfig) (*View, error) {
	if transport == nil {
		return nil, errors.New("pager: transport is required")
	}
	if len(cfg.Sources) == 0 {
		return nil, errors.New("pager: at least one page source is required")
	}
	stop := cfg.StopAction.orDefault(ActionDelete)
	timeout := cfg.TimeoutAction.orDefault(ActionClear)
	if !stop.valid() {
		return nil, fmt.Errorf("pager: unknown stop action %v", cfg.StopAction)
	}
	if !timeout.valid() {
		return nil, fmt.Errorf("pager: unknown timeout action %v", cfg.TimeoutAction)
	}

	var allowed map[string]struct{}
	if cfg.AllowedUsers != nil {
		allowed = make(map[string]struct{}, len(cfg.AllowedUsers))
		for _, id := range cfg.AllowedUsers {
			allowed[id] = struct{}{}
		}
	}

	sources := make([]Source, len(cfg.Sources))
	copy(sources, cfg.Sources)

	return &View{
		transport:     transport,
		sources:       sources,
		allowed:       allowed,
		stopAction:    stop,
		timeoutAction: timeout,
	}, nil
}

// CurrentSource returns the top of the source stack.
func (v *View) CurrentSource() Source { return v.sources[len(v.sources)-1] }

// CurrentIndex returns the current source's page index.
func (v *View) CurrentIndex() int { return v.CurrentSource().CurrentIndex() }

// Depth returns the size of the source stack.
func (v *View) Depth() int { return len(v.sources) }

// CanNavigate reports whether the current page offers drill-down options.
func (v *View) CanNavigate() bool { return len(v.options) > 0 }

// CanPaginate reports whether the current source has more than one page.
func (v *View) CanPaginate() bool { return v.CurrentSource().MaxPages() > 1 }

// CanGoBack reports whether a parent source exists on the stack.
func (v *View) CanGoBack() bool { return len(v.sources) > 1 }

// Stopped reports whether the view has stopped accepting transitions.
func (v *View) Stopped() bool { return v.stopped }

// Payload returns the most recently rendered payload.
func (v *View) Payload() *Payload { return v.payload }

// Controls returns the most recently computed control layout.
func (v *View) Controls() *Controls { return v.controls }

// Message returns the handle of the sent message, or nil before Start.
func (v *View) Message() MessageHandle { return v.msg }

// SetMessage attaches the view to an externally sent message.
func (v *View) SetMessage(h MessageHandle) { v.msg = h }

// Allowed reports whether the given user may interact with this view.
func (v *View) Allowed(userID string) bool {
	if v.allowed == nil {
		return true
	}
	_, ok := v.allowed[userID]
	return ok
}

// ShowPage renders the given page of the current source. It is the single
// re-render entry point: it fetches the page, formats it, collects the
// drill-down options and recomputes the control layout, in that order.
func (v *View) ShowPage(ctx context.Context, index int) error {
	src := v.CurrentSource()
	src.SetCurrentIndex(index)

	page, err := src.GetPage(ctx, index)
	if err != nil {
		return fmt.Errorf("get page %d: %w", index, err)
	}

	payload, err := src.FormatPage(ctx, v, page)
	if err != nil {
		return fmt.Errorf("format page %d: %w", index, err)
	}
	if err := payload.validate(); err != nil {
		return err
	}

	options, err := src.PageOptions(ctx, v, page)
	if err != nil {
		return fmt.Errorf("page %d options: %w", index, err)
	}
	optionSources := make(map[string]Source, len(options))
	for i := range options {
		options[i].key = strconv.Itoa(i)
		optionSources[options[i].key] = options[i].source
	}

	v.payload = payload
	v.options = options
	v.optionSources = optionSources
	v.refreshControls()
	return nil
}

// Start renders the initial page and sends the message. A view whose first
// render has no interactive affordance stops itself and is sent without
// controls.
func (v *View) Start(ctx context.Context) error {
	if v.stopped {
		return ErrStopped
	}
	if err := v.ShowPage(ctx, v.CurrentSource().CurrentIndex()); err != nil {
		return err
	}
	payload, controls := v.renderMessage()
	h, err := v.transport.Send(ctx, payload, controls)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	v.msg = h
	return nil
}

// renderMessage returns what the outbound message should carry. When the
// current state offers no interaction the view stops itself and the
// message carries no controls.
func (v *View) renderMessage() (*Payload, *Controls) {
	canInteract := v.CanNavigate() || v.CanPaginate() || v.CanGoBack()
	if v.CurrentSource().MaxPages() > 0 && canInteract {
		return v.payload, v.controls
	}
	v.stopped = true
	return v.payload, nil
}

// HandleInteraction dispatches one user action to a state transition and
// acknowledges it through the interaction's capabilities.
func (v *View) HandleInteraction(ctx context.Context, in Interaction) error {
	if v.stopped {
		return ErrStopped
	}
	if !v.Allowed(in.UserID()) {
		return ErrNotAllowed
	}

	switch in.Control() {
	case ControlFirst:
		return v.showAndRespond(ctx, in, 0)

	case ControlPrev:
		// Boundary presses can still arrive from surfaces that cannot
		// render disabled buttons; treat them as a plain re-render.
		index := v.CurrentIndex()
		if index > 0 {
			index--
		}
		return v.showAndRespond(ctx, in, index)

	case ControlNext:
		index := v.CurrentIndex()
		if index+1 < v.CurrentSource().MaxPages() {
			index++
		}
		return v.showAndRespond(ctx, in, index)

	case ControlLast:
		return v.showAndRespond(ctx, in, v.CurrentSource().MaxPages()-1)

	case ControlNavigate:
		src, ok := v.optionSources[in.OptionKey()]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, in.OptionKey())
		}
		v.sources = append(v.sources, src)
		return v.showAndRespond(ctx, in, src.CurrentIndex())

	case ControlBack:
		if len(v.sources) == 1 {
			return ErrNoParent
		}
		v.sources = v.sources[:len(v.sources)-1]
		return v.showAndRespond(ctx, in, v.CurrentIndex())

	case ControlStop:
		return v.handleStop(ctx, in)

	default:
		return fmt.Errorf("pager: unknown control %q", in.Control())
	}
}

func (v *View) showAndRespond(ctx context.Context, in Interaction, index int) error {
	if err := v.ShowPage(ctx, index); err != nil {
		return err
	}
	payload, controls := v.renderMessage()
	return in.RespondEdit(ctx, payload, controls)
}

func (v *View) handleStop(ctx context.Context, in Interaction) error {
	action := v.stopAction
	v.stopped = true

	switch action {
	case ActionNone:
		return nil
	case ActionClear:
		return in.RespondEdit(ctx, v.payload, nil)
	case ActionDelete:
		return in.DeferDelete(ctx)
	case ActionDisable:
		return in.RespondEdit(ctx, v.payload, v.controls.disabled())
	default:
		return fmt.Errorf("pager: unknown stop action %v", action)
	}
}

// Stop marks the view terminated without touching the message. Further
// transitions are rejected with ErrStopped.
func (v *View) Stop() { v.stopped = true }

// OnTimeout applies the configured timeout action. It does nothing if the
// view already stopped or no message was sent.
func (v *View) OnTimeout(ctx context.Context) error {
	if v.stopped {
		return nil
	}
	v.stopped = true
	if v.msg == nil {
		return nil
	}

	switch v.timeoutAction {
	case ActionNone:
		return nil
	case ActionClear:
		return v.transport.Edit(ctx, v.msg, v.payload, nil)
	case ActionDelete:
		return v.transport.Delete(ctx, v.msg)
	case ActionDisable:
		return v.transport.Edit(ctx, v.msg, v.payload, v.controls.disabled())
	default:
		return fmt.Errorf("pager: unknown timeout action %v", v.timeoutAction)
	}
}

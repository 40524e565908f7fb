package pager

import (
	"fmt"
	"strings"
)

// Action specifies what happens to the outbound message when a session
// ends, either by user request (stop) or by inactivity (timeout).
type Action int

const (
	actionUnset Action = iota

	// ActionNone leaves the message untouched.
	ActionNone
	// ActionClear removes all controls from the message.
	ActionClear
	// ActionDisable disables all controls but keeps the payload.
	ActionDisable
	// ActionDelete deletes the message.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionClear:
		return "clear"
	case ActionDisable:
		return "disable"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction converts a configuration value into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ActionNone, nil
	case "clear":
		return ActionClear, nil
	case "disable":
		return ActionDisable, nil
	case "delete":
		return ActionDelete, nil
	default:
		return actionUnset, fmt.Errorf("pager: unknown action %q", s)
	}
}

func (a Action) valid() bool {
	return a >= ActionNone && a <= ActionDelete
}

// orDefault substitutes the default for the zero value so callers can
// leave the config field unset.
func (a Action) orDefault(def Action) Action {
	if a == actionUnset {
		return def
	}
	return a
}

package domain

import (
	"fmt"
	"strings"
)

// ActionKind enumerates the closed set of actions a button can carry.
type ActionKind int

const (
	ActionNext ActionKind = iota + 1
	ActionPrev
	ActionDescend
	ActionUp
	ActionCurrent
	ActionCustom
)

func (k ActionKind) String() string {
	switch k {
	case ActionNext:
		return "next"
	case ActionPrev:
		return "prev"
	case ActionDescend:
		return "down"
	case ActionUp:
		return "up"
	case ActionCurrent:
		return "current"
	case ActionCustom:
		return "custom"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is a tagged variant. Target is the child id for Descend and the token for Custom.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target,omitempty"`
}

// navPrefix marks encoded navigation actions; anything else decodes as Custom.
const navPrefix = "nav:"

func Next() Action               { return Action{Kind: ActionNext} }
func Prev() Action               { return Action{Kind: ActionPrev} }
func Up() Action                 { return Action{Kind: ActionUp} }
func Current() Action            { return Action{Kind: ActionCurrent} }
func Descend(id string) Action   { return Action{Kind: ActionDescend, Target: id} }
func Custom(token string) Action { return Action{Kind: ActionCustom, Target: token} }

// IsNavigation reports whether the action is handled by the navigation engine.
func (a Action) IsNavigation() bool {
	return a.Kind >= ActionNext && a.Kind <= ActionCurrent
}

// Encode returns the compact wire form used as button payload.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionNext:
		return navPrefix + "next"
	case ActionPrev:
		return navPrefix + "prev"
	case ActionUp:
		return navPrefix + "up"
	case ActionCurrent:
		return navPrefix + "cur"
	case ActionDescend:
		return navPrefix + "down:" + a.Target
	default:
		return a.Target
	}
}

func (a Action) String() string {
	return a.Encode()
}

// ParseAction decodes a button payload. Unknown navigation verbs are rejected;
// payloads without the navigation prefix are custom tokens.
func ParseAction(data string) (Action, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Action{}, fmt.Errorf("%w: empty payload", ErrMalformedAction)
	}
	rest, ok := strings.CutPrefix(data, navPrefix)
	if !ok {
		return Custom(data), nil
	}
	switch rest {
	case "next":
		return Next(), nil
	case "prev":
		return Prev(), nil
	case "up":
		return Up(), nil
	case "cur":
		return Current(), nil
	}
	if id, ok := strings.CutPrefix(rest, "down:"); ok && id != "" {
		return Descend(id), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, data)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.Encode()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

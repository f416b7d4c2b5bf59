package enums

// Action is the enforcement outcome configured for a lock type.
// ActionDisabled means no enforcement and is the default for every
// lock type a chat has not configured explicitly.
type Action string

const (
	ActionDisabled Action = "disabled"
	ActionDelete   Action = "delete"
	ActionMute     Action = "mute"
	ActionBan      Action = "ban"
)

// ParseAction maps a stored string to a known action. Unknown values
// report false; callers fall back to ActionDisabled.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionDisabled, ActionDelete, ActionMute, ActionBan:
		return Action(s), true
	default:
		return "", false
	}
}

func (a Action) String() string {
	return string(a)
}

package model

import "github.com/ivankudzin/groupguard/internal/domain/enums"

// NoLengthLimit is the stored sentinel for "no max message length".
const NoLengthLimit = -1

// ChatPolicy is the per-chat protection configuration. A chat that has
// never been configured behaves as DefaultPolicy().
type ChatPolicy struct {
	ChatID                int64
	ProtectionEnabled     bool
	ForwardLocked         bool
	MaxMessageLength      int
	LockActions           map[enums.LockType]enums.Action
	BannedWords           map[string]struct{}
	AllowedForwardSources map[int64]struct{}
}

// DefaultPolicy is the effective policy for an unconfigured chat:
// protection on, nothing locked, no length limit.
func DefaultPolicy(chatID int64) ChatPolicy {
	return ChatPolicy{
		ChatID:                chatID,
		ProtectionEnabled:     true,
		ForwardLocked:         false,
		MaxMessageLength:      NoLengthLimit,
		LockActions:           map[enums.LockType]enums.Action{},
		BannedWords:           map[string]struct{}{},
		AllowedForwardSources: map[int64]struct{}{},
	}
}

// ActionFor resolves the configured action for a lock type, defaulting
// to ActionDisabled for anything the chat has not set.
func (p ChatPolicy) ActionFor(lt enums.LockType) enums.Action {
	if a, ok := p.LockActions[lt]; ok {
		return a
	}
	return enums.ActionDisabled
}

// HasLengthLimit reports whether a max message length is configured.
func (p ChatPolicy) HasLengthLimit() bool {
	return p.MaxMessageLength > 0
}

// ForwardSourceAllowed reports whether a forward origin id is on the
// chat's allow list.
func (p ChatPolicy) ForwardSourceAllowed(sourceID int64) bool {
	_, ok := p.AllowedForwardSources[sourceID]
	return ok
}

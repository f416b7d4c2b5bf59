package model

import (
	"time"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
)

// UserStatus is the bot-local record for a (chat, user) pair. A record
// holds either an elevated role or a mute, never both. A mute with a
// nil expiry is permanent; an expired mute is logically absent.
type UserStatus struct {
	ChatID     int64
	UserID     int64
	Role       enums.Role // RoleBotAdmin or RoleSpecial, empty if muted
	Muted      bool
	MuteExpiry *time.Time
}

// MuteActive reports whether the record is an unexpired mute at the
// given instant.
func (s UserStatus) MuteActive(now time.Time) bool {
	if !s.Muted {
		return false
	}
	if s.MuteExpiry == nil {
		return true
	}
	return s.MuteExpiry.After(now)
}

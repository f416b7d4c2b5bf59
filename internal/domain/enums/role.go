package enums

// Role is the effective privilege level of a message author. Owner and
// Admin come from the chat host's native membership data; BotAdmin and
// Special are bot-local elevations kept in the user-status store.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleBotAdmin Role = "bot_admin"
	RoleSpecial  Role = "special"
	RoleMember   Role = "member"
)

// IsNative reports whether the role originates from the chat host
// rather than from the bot's own elevation records.
func (r Role) IsNative() bool {
	return r == RoleOwner || r == RoleAdmin
}

// IsElevated reports whether the role carries any exemption at all.
func (r Role) IsElevated() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleBotAdmin, RoleSpecial:
		return true
	default:
		return false
	}
}

// MemberStatus is the chat host's native membership status.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

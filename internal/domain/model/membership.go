package model

import "github.com/ivankudzin/groupguard/internal/domain/enums"

// Membership is the chat host's native view of a (chat, user) pair.
// Privilege flags are only meaningful for StatusAdministrator; the
// creator implicitly holds all of them.
type Membership struct {
	Status             enums.MemberStatus
	CanRestrictMembers bool
	CanPromoteMembers  bool
	CanChangeInfo      bool
}

// IsOwnerOrAdmin reports whether the native status alone grants the
// broad protection exemption.
func (m Membership) IsOwnerOrAdmin() bool {
	return m.Status == enums.StatusCreator || m.Status == enums.StatusAdministrator
}

package protection

import (
	"github.com/ivankudzin/groupguard/internal/domain/enums"
)

// IsExempt reports whether a role skips enforcement for the given lock
// type. Links are the tightest gate: only native owners and admins pass.
// Blockquotes additionally admit bot admins. Every other lock exempts
// any elevated role, special members included.
func IsExempt(role enums.Role, lockType enums.LockType) bool {
	switch lockType {
	case enums.LockLink:
		return role == enums.RoleOwner || role == enums.RoleAdmin
	case enums.LockBlockquote:
		return role == enums.RoleOwner || role == enums.RoleAdmin || role == enums.RoleBotAdmin
	default:
		return role.IsElevated()
	}
}

// Package roles resolves the effective role of a message author by
// combining the chat host's native membership with bot-local
// elevations. It is the single owner of the native-privilege
// predicates used to gate settings commands.
package roles

import (
	"context"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// MembershipSource is the chat host capability the resolver consumes.
type MembershipSource interface {
	GetMembership(ctx context.Context, chatID, userID int64) (model.Membership, error)
}

// StatusRepo reads bot-local elevation records.
type StatusRepo interface {
	Get(ctx context.Context, chatID, userID int64) (model.UserStatus, bool, error)
}

type Service struct {
	host     MembershipSource
	statuses StatusRepo
	logger   *zap.Logger
}

func NewService(host MembershipSource, statuses StatusRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{host: host, statuses: statuses, logger: logger}
}

// Resolve returns the effective role for a (chat, user) pair. Native
// owner/admin status wins outright. Host or store failures degrade to
// Member: an unreachable user gets no special treatment.
func (s *Service) Resolve(ctx context.Context, chatID, userID int64) enums.Role {
	if s.host != nil {
		member, err := s.host.GetMembership(ctx, chatID, userID)
		if err != nil {
			s.logger.Debug("membership lookup failed, falling back to stored roles",
				zap.Int64("chat_id", chatID), zap.Int64("user_id", userID), zap.Error(err))
		} else {
			switch member.Status {
			case enums.StatusCreator:
				return enums.RoleOwner
			case enums.StatusAdministrator:
				return enums.RoleAdmin
			}
		}
	}

	if s.statuses == nil {
		return enums.RoleMember
	}

	status, ok, err := s.statuses.Get(ctx, chatID, userID)
	if err != nil {
		s.logger.Warn("user status lookup failed, treating as plain member",
			zap.Int64("chat_id", chatID), zap.Int64("user_id", userID), zap.Error(err))
		return enums.RoleMember
	}
	if !ok {
		return enums.RoleMember
	}

	switch status.Role {
	case enums.RoleBotAdmin:
		return enums.RoleBotAdmin
	case enums.RoleSpecial:
		return enums.RoleSpecial
	default:
		return enums.RoleMember
	}
}

// CanManagePolicy is the canonical privilege predicate for every
// policy-mutating command: the chat creator, or a native administrator
// holding restrict rights. Bot-local elevations do not qualify.
func (s *Service) CanManagePolicy(ctx context.Context, chatID, userID int64) bool {
	if s.host == nil {
		return false
	}

	member, err := s.host.GetMembership(ctx, chatID, userID)
	if err != nil {
		s.logger.Debug("membership lookup failed for policy management check",
			zap.Int64("chat_id", chatID), zap.Int64("user_id", userID), zap.Error(err))
		return false
	}

	switch member.Status {
	case enums.StatusCreator:
		return true
	case enums.StatusAdministrator:
		return member.CanRestrictMembers
	default:
		return false
	}
}

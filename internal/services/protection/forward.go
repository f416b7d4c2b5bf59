package protection

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// handleForward applies the forward gate. It keys off the forward lock
// alone, not the protection toggle, and never consults roles: an admin
// forwarding from an unlisted channel loses the message like anyone
// else. Hidden origins carry no id and can never be on the allow list.
func (s *Service) handleForward(ctx context.Context, msg model.Message, policy model.ChatPolicy) {
	if !policy.ForwardLocked {
		return
	}
	origin := msg.Forward
	if origin.ID != 0 && policy.ForwardSourceAllowed(origin.ID) {
		return
	}

	fields := []zap.Field{
		zap.Int64("chat_id", msg.ChatID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("message_id", msg.MessageID),
		zap.String("origin_kind", string(origin.Kind)),
		zap.Int64("origin_id", origin.ID),
	}

	switch err := s.enforcer.host.DeleteMessage(ctx, msg.ChatID, msg.MessageID); {
	case err == nil, errors.Is(err, ErrMessageGone):
	case errors.Is(err, ErrHostForbidden):
		s.logger.Warn("cannot delete forward, missing rights", fields...)
	default:
		s.logger.Error("delete forward failed", append(fields, zap.Error(err))...)
		return
	}

	notice := forwardNotice(s.resolveSourceNames(ctx, policy))
	if err := s.enforcer.host.SendMessage(ctx, msg.ChatID, notice); err != nil {
		s.logger.Warn("forward notice failed", append(fields, zap.Error(err))...)
	}
	s.logger.Info("blocked forward", fields...)
}

// resolveSourceNames turns the allow list into display names for the
// notice. Sources the host can no longer resolve are left out.
func (s *Service) resolveSourceNames(ctx context.Context, policy model.ChatPolicy) []string {
	ids := make([]int64, 0, len(policy.AllowedForwardSources))
	for id := range policy.AllowedForwardSources {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		title, err := s.enforcer.host.GetChatTitle(ctx, id)
		if err != nil {
			s.logger.Debug("forward source title lookup failed",
				zap.Int64("source_id", id), zap.Error(err))
			continue
		}
		names = append(names, title)
	}
	return names
}

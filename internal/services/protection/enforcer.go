package protection

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// MuteStore is the user-status capability the executor consumes.
type MuteStore interface {
	SetMute(ctx context.Context, chatID, userID int64, expiry *time.Time) error
	Delete(ctx context.Context, chatID, userID int64) error
}

// Result reports which side effects of an enforcement actually landed.
// The engine uses it to avoid double-deleting on the edit path.
type Result struct {
	Deleted bool
	Banned  bool
}

// Enforcer applies a resolved (lock type, action) pair to a message.
// Every side effect is best effort: a failed delete or ban is logged
// and never aborts update handling.
type Enforcer struct {
	host         ChatHost
	mutes        MuteStore
	muteDuration time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewEnforcer(host ChatHost, mutes MuteStore, muteDuration time.Duration, logger *zap.Logger) *Enforcer {
	if host == nil {
		panic("protection: host is nil")
	}
	if mutes == nil {
		panic("protection: mute store is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enforcer{
		host:         host,
		mutes:        mutes,
		muteDuration: muteDuration,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNow replaces the clock, for tests.
func (e *Enforcer) WithNow(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

// Enforce deletes the message, posts the violation notice and applies
// the escalation the action calls for.
func (e *Enforcer) Enforce(ctx context.Context, msg model.Message, lockType enums.LockType, action enums.Action) Result {
	return e.apply(ctx, msg, lockType, action, false)
}

// Followup applies a second lock's escalation to a message that has
// already been through Enforce. The delete is skipped when the first
// pass removed the message; the notice still goes out so the author
// learns about the second violation.
func (e *Enforcer) Followup(ctx context.Context, msg model.Message, lockType enums.LockType, action enums.Action, alreadyDeleted bool) Result {
	return e.apply(ctx, msg, lockType, action, alreadyDeleted)
}

func (e *Enforcer) apply(ctx context.Context, msg model.Message, lockType enums.LockType, action enums.Action, alreadyDeleted bool) Result {
	fields := []zap.Field{
		zap.Int64("chat_id", msg.ChatID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("message_id", msg.MessageID),
		zap.String("lock_type", string(lockType)),
		zap.String("action", string(action)),
	}

	res := Result{Deleted: alreadyDeleted}
	if !alreadyDeleted {
		switch err := e.host.DeleteMessage(ctx, msg.ChatID, msg.MessageID); {
		case err == nil:
			res.Deleted = true
		case errors.Is(err, ErrMessageGone):
			// Someone beat us to it. The violation is handled.
			res.Deleted = true
		case errors.Is(err, ErrHostForbidden):
			e.logger.Warn("cannot delete message, missing rights", fields...)
		default:
			e.logger.Error("delete message failed", append(fields, zap.Error(err))...)
		}
	}

	if res.Deleted {
		if err := e.host.SendMessage(ctx, msg.ChatID, violationNotice(lockType, action)); err != nil {
			e.logger.Warn("violation notice failed", append(fields, zap.Error(err))...)
		}
	}

	switch action {
	case enums.ActionMute:
		expiry := e.now().Add(e.muteDuration)
		if err := e.mutes.SetMute(ctx, msg.ChatID, msg.UserID, &expiry); err != nil {
			e.logger.Error("record mute failed", append(fields, zap.Error(err))...)
		}
		if err := e.host.RestrictUser(ctx, msg.ChatID, msg.UserID, expiry); err != nil {
			e.logger.Warn("host restrict failed", append(fields, zap.Error(err))...)
		}
	case enums.ActionBan:
		switch err := e.host.BanUser(ctx, msg.ChatID, msg.UserID); {
		case err == nil:
			res.Banned = true
			// A banned user's mute record is moot.
			if err := e.mutes.Delete(ctx, msg.ChatID, msg.UserID); err != nil {
				e.logger.Warn("clear mute after ban failed", append(fields, zap.Error(err))...)
			}
		case errors.Is(err, ErrHostForbidden):
			e.logger.Warn("cannot ban user, missing rights", fields...)
		default:
			e.logger.Error("ban user failed", append(fields, zap.Error(err))...)
		}
	}

	e.logger.Info("enforced lock", append(fields, zap.Bool("deleted", res.Deleted), zap.Bool("banned", res.Banned))...)
	return res
}

package protection

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
	"github.com/ivankudzin/groupguard/internal/services/classify"
)

// PolicyStore loads the per-chat protection configuration.
type PolicyStore interface {
	GetPolicy(ctx context.Context, chatID int64) (model.ChatPolicy, error)
}

// RoleResolver resolves the effective role of a message author.
type RoleResolver interface {
	Resolve(ctx context.Context, chatID, userID int64) enums.Role
}

// Config carries the engine's timing knobs.
type Config struct {
	// EditGrace is how long after sending a message may still be
	// edited without tripping the edit lock.
	EditGrace time.Duration
}

// Service is the moderation engine. It decides, per inbound or edited
// message, whether anything is enforced and hands the verdict to the
// executor. A policy that cannot be loaded suppresses enforcement for
// that message rather than guessing at the chat's configuration.
type Service struct {
	policies PolicyStore
	resolver RoleResolver
	enforcer *Enforcer
	cfg      Config
	logger   *zap.Logger
}

func NewService(policies PolicyStore, resolver RoleResolver, enforcer *Enforcer, cfg Config, logger *zap.Logger) *Service {
	if policies == nil {
		panic("protection: policy store is nil")
	}
	if resolver == nil {
		panic("protection: role resolver is nil")
	}
	if enforcer == nil {
		panic("protection: enforcer is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		policies: policies,
		resolver: resolver,
		enforcer: enforcer,
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleMessage runs a new inbound message through the forward gate
// and the content pipeline.
func (s *Service) HandleMessage(ctx context.Context, msg model.Message) {
	if msg.UserID == 0 {
		return
	}

	policy, err := s.policies.GetPolicy(ctx, msg.ChatID)
	if err != nil {
		s.logger.Warn("policy load failed, skipping enforcement",
			zap.Int64("chat_id", msg.ChatID), zap.Error(err))
		return
	}

	// The forward gate runs regardless of the protection toggle and
	// preempts content classification entirely.
	if msg.IsForwarded() {
		s.handleForward(ctx, msg, policy)
		return
	}

	if !policy.ProtectionEnabled {
		return
	}

	verdict, ok := s.evaluate(ctx, msg, policy)
	if !ok {
		return
	}
	s.enforcer.Enforce(ctx, msg, verdict.lockType, verdict.action)
}

// HandleEdited runs an edited message through the content pipeline
// again and then through the edit-window rule. A ban from the content
// pass makes the edit lock moot; otherwise the edit lock may escalate
// on the already-deleted message without deleting twice.
func (s *Service) HandleEdited(ctx context.Context, msg model.Message) {
	if msg.UserID == 0 {
		return
	}

	policy, err := s.policies.GetPolicy(ctx, msg.ChatID)
	if err != nil {
		s.logger.Warn("policy load failed, skipping enforcement",
			zap.Int64("chat_id", msg.ChatID), zap.Error(err))
		return
	}
	if !policy.ProtectionEnabled {
		return
	}

	res := Result{}
	enforced := false
	if verdict, ok := s.evaluate(ctx, msg, policy); ok {
		res = s.enforcer.Enforce(ctx, msg, verdict.lockType, verdict.action)
		enforced = true
		if res.Banned {
			return
		}
	}

	if policy.ActionFor(enums.LockEdit) == enums.ActionDisabled {
		return
	}
	if msg.EditedAt.Sub(msg.SentAt) <= s.cfg.EditGrace {
		return
	}
	role := s.resolver.Resolve(ctx, msg.ChatID, msg.UserID)
	if IsExempt(role, enums.LockEdit) {
		return
	}
	if enforced {
		s.enforcer.Followup(ctx, msg, enums.LockEdit, policy.ActionFor(enums.LockEdit), res.Deleted)
		return
	}
	s.enforcer.Enforce(ctx, msg, enums.LockEdit, policy.ActionFor(enums.LockEdit))
}

type verdict struct {
	lockType enums.LockType
	action   enums.Action
}

// evaluate classifies the message and applies exemptions and the
// per-lock action, reporting whether anything is left to enforce.
// A blockquote hit that the author is exempt from, or whose lock is
// disabled, falls through to the rest of the classification chain.
func (s *Service) evaluate(ctx context.Context, msg model.Message, policy model.ChatPolicy) (verdict, bool) {
	opts := classify.Options{
		BannedWords:      policy.BannedWords,
		MaxMessageLength: policy.MaxMessageLength,
	}

	lockType, ok := classify.Classify(msg, opts)
	if !ok {
		return verdict{}, false
	}

	role := s.resolver.Resolve(ctx, msg.ChatID, msg.UserID)

	if lockType == enums.LockBlockquote {
		if policy.ActionFor(enums.LockBlockquote) == enums.ActionDisabled || IsExempt(role, enums.LockBlockquote) {
			opts.SkipBlockquote = true
			lockType, ok = classify.Classify(msg, opts)
			if !ok {
				return verdict{}, false
			}
		}
	}

	if IsExempt(role, lockType) {
		return verdict{}, false
	}
	action := policy.ActionFor(lockType)
	if action == enums.ActionDisabled {
		return verdict{}, false
	}
	return verdict{lockType: lockType, action: action}, true
}

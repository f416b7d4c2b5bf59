package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// ErrNotPermitted is returned when the acting user fails the privilege
// check. Callers turn it into a standard denial reply.
var ErrNotPermitted = errors.New("user is not allowed to manage settings")

// PolicyStore is the read/write policy capability the service consumes.
type PolicyStore interface {
	GetPolicy(ctx context.Context, chatID int64) (model.ChatPolicy, error)
	SetProtectionEnabled(ctx context.Context, chatID int64, enabled bool) error
	SetForwardLocked(ctx context.Context, chatID int64, locked bool) error
	SetMaxMessageLength(ctx context.Context, chatID int64, length int) error
	SetLockAction(ctx context.Context, chatID int64, lockType enums.LockType, action enums.Action) error
	SetLockActions(ctx context.Context, chatID int64, lockTypes []enums.LockType, action enums.Action) error
	AddBannedWords(ctx context.Context, chatID int64, words []string) (int, error)
	RemoveBannedWords(ctx context.Context, chatID int64, words []string) (int, error)
	ListBannedWords(ctx context.Context, chatID int64) ([]string, error)
	AddForwardSource(ctx context.Context, chatID, sourceID int64) error
	RemoveForwardSource(ctx context.Context, chatID, sourceID int64) error
	ListForwardSources(ctx context.Context, chatID int64) ([]int64, error)
}

// RoleStore writes bot-local elevations.
type RoleStore interface {
	SetRole(ctx context.Context, chatID, userID int64, role enums.Role) error
	Delete(ctx context.Context, chatID, userID int64) error
}

// PermissionChecker decides who may change a chat's settings.
type PermissionChecker interface {
	CanManagePolicy(ctx context.Context, chatID, userID int64) bool
}

// bulkLockTypes is the set covered by lockall/unlockall. Swear, edit,
// long text and english stay out of the bulk toggle: flipping those
// silently tends to surprise chat owners.
var bulkLockTypes = func() []enums.LockType {
	out := make([]enums.LockType, 0, len(enums.AllLockTypes))
	for _, lt := range enums.AllLockTypes {
		switch lt {
		case enums.LockSwear, enums.LockEdit, enums.LockLongText, enums.LockEnglish:
			continue
		}
		out = append(out, lt)
	}
	return out
}()

// Service applies admin settings commands. Every operation checks the
// acting user's privilege first and returns ErrNotPermitted on failure.
type Service struct {
	policies PolicyStore
	statuses RoleStore
	perms    PermissionChecker
	logger   *zap.Logger
}

func NewService(policies PolicyStore, statuses RoleStore, perms PermissionChecker, logger *zap.Logger) *Service {
	if policies == nil {
		panic("settings: policy store is nil")
	}
	if statuses == nil {
		panic("settings: role store is nil")
	}
	if perms == nil {
		panic("settings: permission checker is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{policies: policies, statuses: statuses, perms: perms, logger: logger}
}

func (s *Service) authorize(ctx context.Context, chatID, actorID int64) error {
	if !s.perms.CanManagePolicy(ctx, chatID, actorID) {
		return ErrNotPermitted
	}
	return nil
}

// Overview returns the chat's effective policy for the settings menu.
func (s *Service) Overview(ctx context.Context, chatID, actorID int64) (model.ChatPolicy, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return model.ChatPolicy{}, err
	}
	policy, err := s.policies.GetPolicy(ctx, chatID)
	if err != nil {
		return model.ChatPolicy{}, fmt.Errorf("load policy: %w", err)
	}
	return policy, nil
}

// SetProtection toggles enforcement for the chat.
func (s *Service) SetProtection(ctx context.Context, chatID, actorID int64, enabled bool) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.policies.SetProtectionEnabled(ctx, chatID, enabled); err != nil {
		return "", fmt.Errorf("set protection: %w", err)
	}
	s.logger.Info("protection toggled",
		zap.Int64("chat_id", chatID), zap.Int64("actor_id", actorID), zap.Bool("enabled", enabled))
	if enabled {
		return "Protection is now on.", nil
	}
	return "Protection is now off.", nil
}

// AssignLock sets one lock type's action.
func (s *Service) AssignLock(ctx context.Context, chatID, actorID int64, lockType enums.LockType, action enums.Action) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.policies.SetLockAction(ctx, chatID, lockType, action); err != nil {
		return "", fmt.Errorf("set lock action: %w", err)
	}
	s.logger.Info("lock assigned",
		zap.Int64("chat_id", chatID), zap.Int64("actor_id", actorID),
		zap.String("lock_type", string(lockType)), zap.String("action", string(action)))
	if action == enums.ActionDisabled {
		return fmt.Sprintf("Lock %s is now off.", lockType), nil
	}
	return fmt.Sprintf("Lock %s is now set to %s.", lockType, action), nil
}

// LockAll sets every bulk-eligible lock type to Delete.
func (s *Service) LockAll(ctx context.Context, chatID, actorID int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.policies.SetLockActions(ctx, chatID, bulkLockTypes, enums.ActionDelete); err != nil {
		return "", fmt.Errorf("lock all: %w", err)
	}
	return fmt.Sprintf("Locked %d content types.", len(bulkLockTypes)), nil
}

// UnlockAll disables every bulk-eligible lock type.
func (s *Service) UnlockAll(ctx context.Context, chatID, actorID int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.policies.SetLockActions(ctx, chatID, bulkLockTypes, enums.ActionDisabled); err != nil {
		return "", fmt.Errorf("unlock all: %w", err)
	}
	return fmt.Sprintf("Unlocked %d content types.", len(bulkLockTypes)), nil
}

// SetForwardLock toggles the forward gate.
func (s *Service) SetForwardLock(ctx context.Context, chatID, actorID int64, locked bool) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.policies.SetForwardLocked(ctx, chatID, locked); err != nil {
		return "", fmt.Errorf("set forward lock: %w", err)
	}
	if locked {
		return "Forwarded messages are now blocked.", nil
	}
	return "Forwarded messages are now allowed.", nil
}

// AllowForwardSources adds origin ids to the forward allow list.
// Failures on individual ids are reported in the reply, not fatal.
func (s *Service) AllowForwardSources(ctx context.Context, chatID, actorID int64, sourceIDs []int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	added := 0
	var failed []int64
	for _, id := range sourceIDs {
		if err := s.policies.AddForwardSource(ctx, chatID, id); err != nil {
			s.logger.Warn("allow forward source failed",
				zap.Int64("chat_id", chatID), zap.Int64("source_id", id), zap.Error(err))
			failed = append(failed, id)
			continue
		}
		added++
	}
	reply := fmt.Sprintf("Added %d forward source(s).", added)
	if len(failed) > 0 {
		reply += fmt.Sprintf(" Could not add: %s.", joinIDs(failed))
	}
	return reply, nil
}

// DisallowForwardSources removes origin ids from the allow list.
func (s *Service) DisallowForwardSources(ctx context.Context, chatID, actorID int64, sourceIDs []int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	for _, id := range sourceIDs {
		if err := s.policies.RemoveForwardSource(ctx, chatID, id); err != nil {
			return "", fmt.Errorf("remove forward source %d: %w", id, err)
		}
	}
	return fmt.Sprintf("Removed %d forward source(s).", len(sourceIDs)), nil
}

// SetMaxLength sets the max message length. Zero clears the limit.
func (s *Service) SetMaxLength(ctx context.Context, chatID, actorID int64, length int) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("max length must not be negative, got %d", length)
	}
	stored := length
	if length == 0 {
		stored = model.NoLengthLimit
	}
	if err := s.policies.SetMaxMessageLength(ctx, chatID, stored); err != nil {
		return "", fmt.Errorf("set max length: %w", err)
	}
	if stored == model.NoLengthLimit {
		return "Message length limit removed.", nil
	}
	return fmt.Sprintf("Messages longer than %d characters are now restricted.", length), nil
}

// AddWords adds banned words. The store lower-cases and drops empties.
func (s *Service) AddWords(ctx context.Context, chatID, actorID int64, words []string) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	added, err := s.policies.AddBannedWords(ctx, chatID, words)
	if err != nil {
		return "", fmt.Errorf("add banned words: %w", err)
	}
	return fmt.Sprintf("Added %d banned word(s).", added), nil
}

// RemoveWords removes banned words.
func (s *Service) RemoveWords(ctx context.Context, chatID, actorID int64, words []string) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	removed, err := s.policies.RemoveBannedWords(ctx, chatID, words)
	if err != nil {
		return "", fmt.Errorf("remove banned words: %w", err)
	}
	return fmt.Sprintf("Removed %d banned word(s).", removed), nil
}

// Words lists the chat's banned words.
func (s *Service) Words(ctx context.Context, chatID, actorID int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	words, err := s.policies.ListBannedWords(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("list banned words: %w", err)
	}
	if len(words) == 0 {
		return "No banned words configured.", nil
	}
	return "Banned words:\n- " + strings.Join(words, "\n- "), nil
}

// Elevate grants a bot-local role to a user.
func (s *Service) Elevate(ctx context.Context, chatID, actorID, userID int64, role enums.Role) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if role != enums.RoleBotAdmin && role != enums.RoleSpecial {
		return "", fmt.Errorf("role %q cannot be granted", role)
	}
	if err := s.statuses.SetRole(ctx, chatID, userID, role); err != nil {
		return "", fmt.Errorf("set role: %w", err)
	}
	s.logger.Info("user elevated",
		zap.Int64("chat_id", chatID), zap.Int64("actor_id", actorID),
		zap.Int64("user_id", userID), zap.String("role", string(role)))
	return fmt.Sprintf("User %d is now %s.", userID, role), nil
}

// Demote clears a user's bot-local status, elevation or mute alike.
func (s *Service) Demote(ctx context.Context, chatID, actorID, userID int64) (string, error) {
	if err := s.authorize(ctx, chatID, actorID); err != nil {
		return "", err
	}
	if err := s.statuses.Delete(ctx, chatID, userID); err != nil {
		return "", fmt.Errorf("clear status: %w", err)
	}
	return fmt.Sprintf("User %d is back to a regular member.", userID), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// PolicyRepo is the durable per-chat protection configuration.
// Tables: chat_settings (flags + length limit), protection_settings
// (lock type -> action), banned_words, allowed_forward_sources.
type PolicyRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPolicyRepo(pool *pgxpool.Pool, logger *zap.Logger) *PolicyRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyRepo{pool: pool, logger: logger}
}

// GetPolicy assembles the full effective policy for a chat. A chat with
// no rows behaves as the default policy. Rows with unknown lock types
// or actions are skipped, which leaves them at the Disabled default.
func (r *PolicyRepo) GetPolicy(ctx context.Context, chatID int64) (model.ChatPolicy, error) {
	if r.pool == nil {
		return model.ChatPolicy{}, fmt.Errorf("postgres pool is nil")
	}

	policy := model.DefaultPolicy(chatID)

	var enabled, fwdLocked bool
	var maxLen int
	err := r.pool.QueryRow(ctx, `
SELECT protection_enabled, is_forward_locked, max_message_length
FROM chat_settings
WHERE chat_id = $1
`, chatID).Scan(&enabled, &fwdLocked, &maxLen)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// unconfigured chat, defaults apply
	case err != nil:
		return model.ChatPolicy{}, fmt.Errorf("query chat settings: %w", err)
	default:
		policy.ProtectionEnabled = enabled
		policy.ForwardLocked = fwdLocked
		policy.MaxMessageLength = maxLen
	}

	if err := r.loadLockActions(ctx, chatID, &policy); err != nil {
		return model.ChatPolicy{}, err
	}
	if err := r.loadBannedWords(ctx, chatID, &policy); err != nil {
		return model.ChatPolicy{}, err
	}
	if err := r.loadForwardSources(ctx, chatID, &policy); err != nil {
		return model.ChatPolicy{}, err
	}

	return policy, nil
}

func (r *PolicyRepo) loadLockActions(ctx context.Context, chatID int64, policy *model.ChatPolicy) error {
	rows, err := r.pool.Query(ctx, `
SELECT lock_type, action
FROM protection_settings
WHERE chat_id = $1
`, chatID)
	if err != nil {
		return fmt.Errorf("query protection settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rawType, rawAction string
		if err := rows.Scan(&rawType, &rawAction); err != nil {
			return fmt.Errorf("scan protection setting: %w", err)
		}
		lt, ok := enums.ParseLockType(rawType)
		if !ok {
			r.logger.Warn("skipping unknown lock type in protection_settings",
				zap.Int64("chat_id", chatID), zap.String("lock_type", rawType))
			continue
		}
		action, ok := enums.ParseAction(rawAction)
		if !ok {
			r.logger.Warn("skipping unknown action in protection_settings",
				zap.Int64("chat_id", chatID), zap.String("lock_type", rawType), zap.String("action", rawAction))
			continue
		}
		policy.LockActions[lt] = action
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate protection settings: %w", err)
	}
	return nil
}

func (r *PolicyRepo) loadBannedWords(ctx context.Context, chatID int64, policy *model.ChatPolicy) error {
	rows, err := r.pool.Query(ctx, `
SELECT word
FROM banned_words
WHERE chat_id = $1
`, chatID)
	if err != nil {
		return fmt.Errorf("query banned words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return fmt.Errorf("scan banned word: %w", err)
		}
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		policy.BannedWords[word] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate banned words: %w", err)
	}
	return nil
}

func (r *PolicyRepo) loadForwardSources(ctx context.Context, chatID int64, policy *model.ChatPolicy) error {
	rows, err := r.pool.Query(ctx, `
SELECT source_id
FROM allowed_forward_sources
WHERE chat_id = $1
`, chatID)
	if err != nil {
		return fmt.Errorf("query allowed forward sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID int64
		if err := rows.Scan(&sourceID); err != nil {
			return fmt.Errorf("scan allowed forward source: %w", err)
		}
		policy.AllowedForwardSources[sourceID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate allowed forward sources: %w", err)
	}
	return nil
}

func (r *PolicyRepo) SetProtectionEnabled(ctx context.Context, chatID int64, enabled bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO chat_settings (chat_id, protection_enabled)
VALUES ($1, $2)
ON CONFLICT (chat_id) DO UPDATE SET protection_enabled = EXCLUDED.protection_enabled
`, chatID, enabled); err != nil {
		return fmt.Errorf("set protection enabled: %w", err)
	}
	return nil
}

func (r *PolicyRepo) SetForwardLocked(ctx context.Context, chatID int64, locked bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO chat_settings (chat_id, is_forward_locked)
VALUES ($1, $2)
ON CONFLICT (chat_id) DO UPDATE SET is_forward_locked = EXCLUDED.is_forward_locked
`, chatID, locked); err != nil {
		return fmt.Errorf("set forward locked: %w", err)
	}
	return nil
}

func (r *PolicyRepo) SetMaxMessageLength(ctx context.Context, chatID int64, length int) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if length <= 0 {
		length = model.NoLengthLimit
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO chat_settings (chat_id, max_message_length)
VALUES ($1, $2)
ON CONFLICT (chat_id) DO UPDATE SET max_message_length = EXCLUDED.max_message_length
`, chatID, length); err != nil {
		return fmt.Errorf("set max message length: %w", err)
	}
	return nil
}

func (r *PolicyRepo) SetLockAction(ctx context.Context, chatID int64, lockType enums.LockType, action enums.Action) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO protection_settings (chat_id, lock_type, action)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id, lock_type) DO UPDATE SET action = EXCLUDED.action
`, chatID, lockType.String(), action.String()); err != nil {
		return fmt.Errorf("set lock action: %w", err)
	}
	return nil
}

// SetLockActions writes one action for many lock types in one
// transaction, used by the bulk lock/unlock commands.
func (r *PolicyRepo) SetLockActions(ctx context.Context, chatID int64, lockTypes []enums.LockType, action enums.Action) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if len(lockTypes) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk lock update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, lt := range lockTypes {
		if _, err := tx.Exec(ctx, `
INSERT INTO protection_settings (chat_id, lock_type, action)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id, lock_type) DO UPDATE SET action = EXCLUDED.action
`, chatID, lt.String(), action.String()); err != nil {
			return fmt.Errorf("bulk set lock action for %s: %w", lt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk lock update: %w", err)
	}
	return nil
}

// AddBannedWords lower-cases and stores words, skipping empties and
// duplicates. Returns the number of newly added words.
func (r *PolicyRepo) AddBannedWords(ctx context.Context, chatID int64, words []string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	added := 0
	for _, raw := range words {
		word := strings.ToLower(strings.TrimSpace(raw))
		if word == "" {
			continue
		}
		tag, err := r.pool.Exec(ctx, `
INSERT INTO banned_words (chat_id, word)
VALUES ($1, $2)
ON CONFLICT (chat_id, word) DO NOTHING
`, chatID, word)
		if err != nil {
			return added, fmt.Errorf("add banned word: %w", err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// RemoveBannedWords deletes words from the chat's banned list and
// returns the number actually removed.
func (r *PolicyRepo) RemoveBannedWords(ctx context.Context, chatID int64, words []string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	removed := 0
	for _, raw := range words {
		word := strings.ToLower(strings.TrimSpace(raw))
		if word == "" {
			continue
		}
		tag, err := r.pool.Exec(ctx, `
DELETE FROM banned_words
WHERE chat_id = $1 AND word = $2
`, chatID, word)
		if err != nil {
			return removed, fmt.Errorf("remove banned word: %w", err)
		}
		removed += int(tag.RowsAffected())
	}
	return removed, nil
}

func (r *PolicyRepo) ListBannedWords(ctx context.Context, chatID int64) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT word
FROM banned_words
WHERE chat_id = $1
ORDER BY word
`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list banned words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan banned word: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banned words: %w", err)
	}
	return words, nil
}

func (r *PolicyRepo) AddForwardSource(ctx context.Context, chatID, sourceID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO allowed_forward_sources (chat_id, source_id)
VALUES ($1, $2)
ON CONFLICT (chat_id, source_id) DO NOTHING
`, chatID, sourceID); err != nil {
		return fmt.Errorf("add allowed forward source: %w", err)
	}
	return nil
}

func (r *PolicyRepo) RemoveForwardSource(ctx context.Context, chatID, sourceID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM allowed_forward_sources
WHERE chat_id = $1 AND source_id = $2
`, chatID, sourceID); err != nil {
		return fmt.Errorf("remove allowed forward source: %w", err)
	}
	return nil
}

func (r *PolicyRepo) ListForwardSources(ctx context.Context, chatID int64) ([]int64, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT source_id
FROM allowed_forward_sources
WHERE chat_id = $1
ORDER BY source_id
`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list allowed forward sources: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan allowed forward source: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowed forward sources: %w", err)
	}
	return ids, nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

const userStatusPrefix = "user_status:"

const (
	statusFieldKind    = "status"
	statusFieldExpires = "expires_at"

	statusMuted = "muted"
)

// UserStatusRepo stores bot-local elevations (bot_admin, special) and
// mutes per (chat, user). A pair holds at most one record; writing an
// elevation over a mute (or the reverse) replaces it. Expired mutes are
// deleted lazily on read, the only cleanup this store performs.
type UserStatusRepo struct {
	client *goredis.Client
	now    func() time.Time
}

func NewUserStatusRepo(client *goredis.Client) *UserStatusRepo {
	return &UserStatusRepo{client: client, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (r *UserStatusRepo) WithNow(now func() time.Time) *UserStatusRepo {
	r.now = now
	return r
}

// Get returns the current record for a (chat, user) pair. An expired
// mute is treated as absent and removed on the way out.
func (r *UserStatusRepo) Get(ctx context.Context, chatID, userID int64) (model.UserStatus, bool, error) {
	if r.client == nil {
		return model.UserStatus{}, false, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, userStatusKey(chatID, userID)).Result()
	if err != nil {
		return model.UserStatus{}, false, fmt.Errorf("get user status hash: %w", err)
	}
	if len(values) == 0 {
		return model.UserStatus{}, false, nil
	}

	status := model.UserStatus{ChatID: chatID, UserID: userID}
	switch values[statusFieldKind] {
	case string(enums.RoleBotAdmin):
		status.Role = enums.RoleBotAdmin
	case string(enums.RoleSpecial):
		status.Role = enums.RoleSpecial
	case statusMuted:
		status.Muted = true
		if raw := values[statusFieldExpires]; raw != "" && raw != "0" {
			unix, parseErr := strconv.ParseInt(raw, 10, 64)
			if parseErr != nil {
				return model.UserStatus{}, false, fmt.Errorf("parse mute expiry %q: %w", raw, parseErr)
			}
			expiry := time.Unix(unix, 0).UTC()
			status.MuteExpiry = &expiry
		}
	default:
		// unreadable record, treat as absent
		return model.UserStatus{}, false, nil
	}

	if status.Muted && !status.MuteActive(r.now()) {
		if err := r.Delete(ctx, chatID, userID); err != nil {
			return model.UserStatus{}, false, err
		}
		return model.UserStatus{}, false, nil
	}

	return status, true, nil
}

// SetRole elevates a user to bot_admin or special, replacing any
// existing record for the pair.
func (r *UserStatusRepo) SetRole(ctx context.Context, chatID, userID int64, role enums.Role) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if role != enums.RoleBotAdmin && role != enums.RoleSpecial {
		return fmt.Errorf("role %q cannot be stored as an elevation", role)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, userStatusKey(chatID, userID))
	pipe.HSet(ctx, userStatusKey(chatID, userID), map[string]interface{}{
		statusFieldKind:    string(role),
		statusFieldExpires: 0,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set elevated role: %w", err)
	}
	return nil
}

// SetMute records a mute, replacing any existing record for the pair.
// A nil expiry is a permanent mute.
func (r *UserStatusRepo) SetMute(ctx context.Context, chatID, userID int64, expiry *time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	var expiresAt int64
	if expiry != nil {
		expiresAt = expiry.Unix()
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, userStatusKey(chatID, userID))
	pipe.HSet(ctx, userStatusKey(chatID, userID), map[string]interface{}{
		statusFieldKind:    statusMuted,
		statusFieldExpires: expiresAt,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

// Delete removes the record for a (chat, user) pair. Deleting an absent
// record is a no-op.
func (r *UserStatusRepo) Delete(ctx context.Context, chatID, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, userStatusKey(chatID, userID)).Err(); err != nil {
		return fmt.Errorf("delete user status: %w", err)
	}
	return nil
}

func userStatusKey(chatID, userID int64) string {
	return userStatusPrefix + strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}

package protection

import (
	"context"
	"errors"
	"time"
)

// Host error taxonomy. The telegram adapter maps raw API errors onto
// these so the executor can tell a permission problem from anything
// else. Rate limiting never surfaces here: the adapter waits the
// host-specified duration once and then gives up on the call.
var (
	// ErrHostForbidden means the bot lacks the right to perform the
	// side effect (delete/ban/restrict rights missing).
	ErrHostForbidden = errors.New("chat host denied the operation")

	// ErrMessageGone means the target message no longer exists.
	// Deleting an already-deleted message is not a violation failure.
	ErrMessageGone = errors.New("message no longer exists")
)

// ChatHost is the messaging platform capability the executor consumes.
type ChatHost interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	BanUser(ctx context.Context, chatID, userID int64) error
	// RestrictUser revokes send permissions until the given time.
	RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error
	SendMessage(ctx context.Context, chatID int64, text string) error
	// GetChatTitle resolves a chat or user id to a display name for
	// the forward violation notice.
	GetChatTitle(ctx context.Context, id int64) (string, error)
}

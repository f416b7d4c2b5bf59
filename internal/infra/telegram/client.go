package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
	"github.com/ivankudzin/groupguard/internal/services/protection"
)

type UpdateHandler func(context.Context, tgbotapi.Update)

// Client owns the long-polling loop and implements the chat-host
// capabilities the services consume. An empty token puts the client in
// dry mode: the loop idles and every side effect is a no-op, which
// keeps local runs possible without credentials.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
	dryRun      bool
}

func NewClient(token string, pollTimeout int, logger *zap.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			handler:     handler,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
	}, nil
}

func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handler(ctx, update)
		}
	}
}

func (c *Client) Send(msg tgbotapi.Chattable) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Send(msg)
	return err
}

// DeleteMessage implements protection.ChatHost.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if c.dryRun {
		return nil
	}
	return c.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// BanUser implements protection.ChatHost.
func (c *Client) BanUser(ctx context.Context, chatID, userID int64) error {
	if c.dryRun {
		return nil
	}
	return c.request(ctx, tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	})
}

// RestrictUser implements protection.ChatHost. A zero until time means
// the restriction does not expire.
func (c *Client) RestrictUser(ctx context.Context, chatID, userID int64, until time.Time) error {
	if c.dryRun {
		return nil
	}
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		Permissions:      &tgbotapi.ChatPermissions{},
	}
	if !until.IsZero() {
		cfg.UntilDate = until.Unix()
	}
	return c.request(ctx, cfg)
}

// SendMessage implements protection.ChatHost.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.dryRun {
		return nil
	}
	return c.request(ctx, tgbotapi.NewMessage(chatID, text))
}

// GetChatTitle implements protection.ChatHost.
func (c *Client) GetChatTitle(ctx context.Context, id int64) (string, error) {
	if c.dryRun {
		return fmt.Sprintf("chat %d", id), nil
	}
	chat, err := c.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil {
		return "", mapAPIError(err)
	}
	if chat.Title != "" {
		return chat.Title, nil
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	if name != "" {
		return name, nil
	}
	return chat.UserName, nil
}

// GetMembership implements roles.MembershipSource.
func (c *Client) GetMembership(ctx context.Context, chatID, userID int64) (model.Membership, error) {
	if c.dryRun {
		return model.Membership{Status: enums.StatusMember}, nil
	}
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return model.Membership{}, mapAPIError(err)
	}
	return model.Membership{
		Status:             enums.MemberStatus(member.Status),
		CanRestrictMembers: member.CanRestrictMembers,
		CanPromoteMembers:  member.CanPromoteMembers,
		CanChangeInfo:      member.CanChangeInfo,
	}, nil
}

// request performs a side-effecting call. On a rate-limit response it
// waits the host-specified duration once and retries; a second failure
// abandons the call.
func (c *Client) request(ctx context.Context, cfg tgbotapi.Chattable) error {
	_, err := c.api.Request(cfg)
	if wait, ok := retryAfter(err); ok {
		c.logger.Warn("rate limited by telegram", zap.Duration("retry_after", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		_, err = c.api.Request(cfg)
	}
	return mapAPIError(err)
}

func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	if apiErr.RetryAfter <= 0 {
		return 0, false
	}
	return time.Duration(apiErr.RetryAfter) * time.Second, true
}

// mapAPIError folds the host's error surface onto the sentinel
// taxonomy the executor branches on.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == 403:
		return fmt.Errorf("%w: %s", protection.ErrHostForbidden, apiErr.Message)
	case strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %s", protection.ErrMessageGone, apiErr.Message)
	case strings.Contains(msg, "not enough rights"),
		strings.Contains(msg, "can't be deleted"),
		strings.Contains(msg, "chat_admin_required"):
		return fmt.Errorf("%w: %s", protection.ErrHostForbidden, apiErr.Message)
	default:
		return err
	}
}

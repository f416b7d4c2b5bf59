package botapp

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/infra/telegram"
	"github.com/ivankudzin/groupguard/internal/services/settings"
)

const settingsMenuText = "Protection settings"

const deniedReply = "You are not allowed to manage this chat's settings."

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := a.logger.With(zap.String("event_id", uuid.NewString()))

	switch {
	case update.Message != nil:
		a.routeMessage(ctx, logger, update.Message)
	case update.EditedMessage != nil:
		a.routeEdited(ctx, logger, update.EditedMessage)
	case update.CallbackQuery != nil:
		a.handleCallback(ctx, logger, update.CallbackQuery)
	}
}

func (a *App) routeMessage(ctx context.Context, logger *zap.Logger, message *tgbotapi.Message) {
	if message.Chat == nil || message.Chat.IsPrivate() {
		return
	}

	if a.handleCommand(ctx, message) {
		return
	}

	logger.Debug("moderating message",
		zap.Int64("chat_id", message.Chat.ID), zap.Int("message_id", message.MessageID))
	a.protectionService.HandleMessage(ctx, telegram.FromMessage(message))
}

func (a *App) routeEdited(ctx context.Context, logger *zap.Logger, message *tgbotapi.Message) {
	if message.Chat == nil || message.Chat.IsPrivate() {
		return
	}
	logger.Debug("moderating edit",
		zap.Int64("chat_id", message.Chat.ID), zap.Int("message_id", message.MessageID))
	a.protectionService.HandleEdited(ctx, telegram.FromMessage(message))
}

// settingsCommands is the bare-word admin command surface.
var settingsCommands = map[string]bool{
	"protection":      true,
	"lockall":         true,
	"unlockall":       true,
	"forwardlock":     true,
	"allowforward":    true,
	"disallowforward": true,
	"maxlen":          true,
	"addword":         true,
	"delword":         true,
	"words":           true,
	"elevate":         true,
	"demote":          true,
}

// handleCommand treats the message as an admin command only when the
// sender passes the privilege check. Command-shaped text from anyone
// else, and unknown slash commands, stay ordinary messages and go
// through moderation. A match short-circuits moderation.
func (a *App) handleCommand(ctx context.Context, message *tgbotapi.Message) bool {
	if message.From == nil || message.Text == "" {
		return false
	}

	var cmd string
	var args []string
	if message.IsCommand() {
		if message.Command() != "settings" {
			return false
		}
		cmd = "settings"
	} else {
		fields := strings.Fields(message.Text)
		if len(fields) == 0 {
			return false
		}
		cmd = strings.ToLower(fields[0])
		args = fields[1:]
		if !settingsCommands[cmd] {
			return false
		}
		if cmd == "words" && len(args) != 0 {
			return false
		}
	}

	if !a.rolesService.CanManagePolicy(ctx, message.Chat.ID, message.From.ID) {
		return false
	}

	if cmd == "settings" {
		a.handleSettingsCommand(ctx, message)
		return true
	}
	a.dispatchCommand(ctx, message, cmd, args)
	return true
}

// dispatchCommand runs one bare-word command for an already-authorized
// sender.
func (a *App) dispatchCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	actorID := message.From.ID

	var (
		reply string
		err   error
	)
	switch cmd {
	case "protection":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			a.sendText(chatID, "Usage: protection on|off")
			return
		}
		reply, err = a.settingsService.SetProtection(ctx, chatID, actorID, args[0] == "on")
	case "lockall":
		reply, err = a.settingsService.LockAll(ctx, chatID, actorID)
	case "unlockall":
		reply, err = a.settingsService.UnlockAll(ctx, chatID, actorID)
	case "forwardlock":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			a.sendText(chatID, "Usage: forwardlock on|off")
			return
		}
		reply, err = a.settingsService.SetForwardLock(ctx, chatID, actorID, args[0] == "on")
	case "allowforward":
		ids, bad := parseIDs(args)
		if len(ids) == 0 {
			a.sendText(chatID, "Usage: allowforward <chat id...>")
			return
		}
		reply, err = a.settingsService.AllowForwardSources(ctx, chatID, actorID, ids)
		if len(bad) > 0 && err == nil {
			reply += " Ignored: " + strings.Join(bad, ", ") + "."
		}
	case "disallowforward":
		ids, _ := parseIDs(args)
		if len(ids) == 0 {
			a.sendText(chatID, "Usage: disallowforward <chat id...>")
			return
		}
		reply, err = a.settingsService.DisallowForwardSources(ctx, chatID, actorID, ids)
	case "maxlen":
		if len(args) != 1 {
			a.sendText(chatID, "Usage: maxlen <n>, 0 removes the limit")
			return
		}
		n, parseErr := strconv.Atoi(args[0])
		if parseErr != nil {
			a.sendText(chatID, "Usage: maxlen <n>, 0 removes the limit")
			return
		}
		reply, err = a.settingsService.SetMaxLength(ctx, chatID, actorID, n)
	case "addword":
		if len(args) == 0 {
			a.sendText(chatID, "Usage: addword <word...>")
			return
		}
		reply, err = a.settingsService.AddWords(ctx, chatID, actorID, args)
	case "delword":
		if len(args) == 0 {
			a.sendText(chatID, "Usage: delword <word...>")
			return
		}
		reply, err = a.settingsService.RemoveWords(ctx, chatID, actorID, args)
	case "words":
		reply, err = a.settingsService.Words(ctx, chatID, actorID)
	case "elevate":
		role, userID, ok := parseElevateArgs(message, args)
		if !ok {
			a.sendText(chatID, "Usage: elevate special|botadmin <user id>, or reply to the user")
			return
		}
		reply, err = a.settingsService.Elevate(ctx, chatID, actorID, userID, role)
	case "demote":
		userID, ok := parseTargetUser(message, args)
		if !ok {
			a.sendText(chatID, "Usage: demote <user id>, or reply to the user")
			return
		}
		reply, err = a.settingsService.Demote(ctx, chatID, actorID, userID)
	}

	switch {
	case errors.Is(err, settings.ErrNotPermitted):
		a.sendText(chatID, deniedReply)
	case err != nil:
		a.logger.Error("settings command failed",
			zap.Int64("chat_id", chatID), zap.String("command", cmd), zap.Error(err))
		a.sendText(chatID, "Something went wrong, try again later.")
	default:
		a.sendText(chatID, reply)
	}
}

func (a *App) handleSettingsCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if message.From == nil {
		return
	}
	policy, err := a.settingsService.Overview(ctx, chatID, message.From.ID)
	switch {
	case errors.Is(err, settings.ErrNotPermitted):
		a.sendText(chatID, deniedReply)
		return
	case err != nil:
		a.logger.Error("open settings failed", zap.Int64("chat_id", chatID), zap.Error(err))
		a.sendText(chatID, "Something went wrong, try again later.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, settingsMenuText)
	msg.ReplyMarkup = telegram.BuildSettingsMenu(policy)
	if err := a.tg.Send(msg); err != nil {
		a.logger.Error("send settings menu", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *App) handleCallback(ctx context.Context, logger *zap.Logger, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		return
	}

	ackText := ""
	ackAlert := false
	defer func() { a.answerCallback(query.ID, ackText, ackAlert) }()

	parts := strings.Split(query.Data, ":")
	if len(parts) < 2 || parts[0] != telegram.CallbackPrefix {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	actorID := query.From.ID

	var err error
	switch parts[1] {
	case "close":
		err = a.closeSettings(ctx, chatID, messageID, actorID)
	case "menu":
		err = a.showSettingsMenu(ctx, chatID, messageID, actorID)
	case "toggle":
		err = a.toggleProtection(ctx, chatID, messageID, actorID)
	case "forward":
		err = a.toggleForwardLock(ctx, chatID, messageID, actorID)
	case "words":
		err = a.showWordList(ctx, chatID, messageID, actorID)
	case "lock":
		if len(parts) != 3 {
			return
		}
		err = a.showLockMenu(ctx, chatID, messageID, actorID, parts[2])
	case "set":
		if len(parts) != 4 {
			return
		}
		err = a.assignLock(ctx, chatID, messageID, actorID, parts[2], parts[3])
	default:
		return
	}

	switch {
	case errors.Is(err, settings.ErrNotPermitted):
		ackText, ackAlert = deniedReply, true
	case err != nil:
		logger.Error("settings callback failed",
			zap.Int64("chat_id", chatID), zap.String("data", query.Data), zap.Error(err))
		ackText, ackAlert = "Something went wrong.", true
	}
}

func (a *App) showSettingsMenu(ctx context.Context, chatID int64, messageID int, actorID int64) error {
	policy, err := a.settingsService.Overview(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	return a.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, settingsMenuText, telegram.BuildSettingsMenu(policy)))
}

func (a *App) toggleProtection(ctx context.Context, chatID int64, messageID int, actorID int64) error {
	policy, err := a.settingsService.Overview(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if _, err := a.settingsService.SetProtection(ctx, chatID, actorID, !policy.ProtectionEnabled); err != nil {
		return err
	}
	return a.showSettingsMenu(ctx, chatID, messageID, actorID)
}

func (a *App) toggleForwardLock(ctx context.Context, chatID int64, messageID int, actorID int64) error {
	policy, err := a.settingsService.Overview(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if _, err := a.settingsService.SetForwardLock(ctx, chatID, actorID, !policy.ForwardLocked); err != nil {
		return err
	}
	return a.showSettingsMenu(ctx, chatID, messageID, actorID)
}

func (a *App) showLockMenu(ctx context.Context, chatID int64, messageID int, actorID int64, rawType string) error {
	lockType, ok := enums.ParseLockType(rawType)
	if !ok {
		return nil
	}
	policy, err := a.settingsService.Overview(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	return a.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID,
		"Lock: "+rawType,
		telegram.BuildLockMenu(lockType, policy.ActionFor(lockType))))
}

func (a *App) assignLock(ctx context.Context, chatID int64, messageID int, actorID int64, rawType, rawAction string) error {
	lockType, ok := enums.ParseLockType(rawType)
	if !ok {
		return nil
	}
	action, ok := enums.ParseAction(rawAction)
	if !ok {
		return nil
	}
	if _, err := a.settingsService.AssignLock(ctx, chatID, actorID, lockType, action); err != nil {
		return err
	}
	return a.showSettingsMenu(ctx, chatID, messageID, actorID)
}

func (a *App) showWordList(ctx context.Context, chatID int64, messageID int, actorID int64) error {
	reply, err := a.settingsService.Words(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	return a.tg.Send(tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, reply, telegram.BuildBackKeyboard()))
}

func (a *App) closeSettings(ctx context.Context, chatID int64, messageID int, actorID int64) error {
	if _, err := a.settingsService.Overview(ctx, chatID, actorID); err != nil {
		return err
	}
	return a.tg.Send(tgbotapi.NewDeleteMessage(chatID, messageID))
}

func (a *App) answerCallback(callbackID, text string, alert bool) {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	if err := a.tg.Send(cfg); err != nil {
		a.logger.Warn("answer callback", zap.Error(err))
	}
}

func (a *App) sendText(chatID int64, text string) {
	if err := a.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func parseIDs(args []string) ([]int64, []string) {
	var ids []int64
	var bad []string
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			bad = append(bad, arg)
			continue
		}
		ids = append(ids, id)
	}
	return ids, bad
}

func parseElevateArgs(message *tgbotapi.Message, args []string) (enums.Role, int64, bool) {
	if len(args) == 0 {
		return "", 0, false
	}
	var role enums.Role
	switch strings.ToLower(args[0]) {
	case "special":
		role = enums.RoleSpecial
	case "botadmin":
		role = enums.RoleBotAdmin
	default:
		return "", 0, false
	}
	userID, ok := parseTargetUser(message, args[1:])
	if !ok {
		return "", 0, false
	}
	return role, userID, true
}

// parseTargetUser picks the target from a replied-to message first,
// then from a numeric argument.
func parseTargetUser(message *tgbotapi.Message, args []string) (int64, bool) {
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		return message.ReplyToMessage.From.ID, true
	}
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

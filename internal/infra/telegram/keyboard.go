package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// Callback data layout for the settings menu. Every callback carries
// the "pro" prefix so the router can dispatch without guessing.
const (
	CallbackPrefix = "pro"

	CallbackMenu       = "pro:menu"
	CallbackToggle     = "pro:toggle"
	CallbackForward    = "pro:forward"
	CallbackWords      = "pro:words"
	CallbackClose      = "pro:close"
	callbackLockFormat = "pro:lock:%s"
	callbackSetFormat  = "pro:set:%s:%s"
)

type InlineButton struct {
	Text string
	Data string
}

func BuildInlineKeyboard(rows [][]InlineButton) tgbotapi.InlineKeyboardMarkup {
	keyboardRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboardRows...)
}

// BuildSettingsMenu renders the top-level settings keyboard: one
// button per lock type showing its current action, two rows per line,
// then the protection and forward toggles and a close button.
func BuildSettingsMenu(policy model.ChatPolicy) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]InlineButton, 0, len(enums.AllLockTypes)/2+2)

	var row []InlineButton
	for _, lt := range enums.AllLockTypes {
		row = append(row, InlineButton{
			Text: fmt.Sprintf("%s: %s", lt, actionLabel(policy.ActionFor(lt))),
			Data: fmt.Sprintf(callbackLockFormat, lt),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []InlineButton{
		{Text: "protection: " + onOff(policy.ProtectionEnabled), Data: CallbackToggle},
		{Text: "forwards: " + lockedLabel(policy.ForwardLocked), Data: CallbackForward},
	})
	rows = append(rows, []InlineButton{{Text: "close", Data: CallbackClose}})
	return BuildInlineKeyboard(rows)
}

// BuildLockMenu renders the per-type submenu assigning an action.
func BuildLockMenu(lockType enums.LockType, current enums.Action) tgbotapi.InlineKeyboardMarkup {
	actions := []enums.Action{enums.ActionDisabled, enums.ActionDelete, enums.ActionMute, enums.ActionBan}
	row := make([]InlineButton, 0, len(actions))
	for _, a := range actions {
		text := string(a)
		if a == current {
			text = "· " + text + " ·"
		}
		row = append(row, InlineButton{Text: text, Data: fmt.Sprintf(callbackSetFormat, lockType, a)})
	}

	rows := [][]InlineButton{row}
	if lockType == enums.LockSwear {
		rows = append(rows, []InlineButton{{Text: "word list", Data: CallbackWords}})
	}
	rows = append(rows, []InlineButton{{Text: "back", Data: CallbackMenu}})
	return BuildInlineKeyboard(rows)
}

// BuildBackKeyboard is the single back button under list views.
func BuildBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return BuildInlineKeyboard([][]InlineButton{{{Text: "back", Data: CallbackMenu}}})
}

func actionLabel(a enums.Action) string {
	if a == enums.ActionDisabled {
		return "off"
	}
	return string(a)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func lockedLabel(v bool) string {
	if v {
		return "locked"
	}
	return "allowed"
}

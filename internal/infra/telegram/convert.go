package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// FromMessage maps a raw update message onto the host-independent
// view the engine works with.
//
// SpoilerMedia is always false here: the bot API library does not
// carry the has_media_spoiler flag, so the spoiler-media lock is only
// reachable through hosts that report it. Spoiler-formatted text is
// still caught via the entity.
func FromMessage(msg *tgbotapi.Message) model.Message {
	out := model.Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Caption:   msg.Caption,
		SentAt:    time.Unix(int64(msg.Date), 0),

		HasPhoto:     len(msg.Photo) > 0,
		HasVideo:     msg.Video != nil,
		HasVideoNote: msg.VideoNote != nil,
		HasSticker:   msg.Sticker != nil,
		HasVoice:     msg.Voice != nil,
		HasAudio:     msg.Audio != nil,
		HasPoll:      msg.Poll != nil,
		HasDice:      msg.Dice != nil,
		HasContact:   msg.Contact != nil,
		HasGame:      msg.Game != nil,
		HasLocation:  msg.Location != nil,
	}

	if msg.From != nil {
		out.UserID = msg.From.ID
	}
	if msg.EditDate > 0 {
		out.EditedAt = time.Unix(int64(msg.EditDate), 0)
	}

	for _, e := range msg.Entities {
		out.Entities = append(out.Entities, model.Entity{Type: model.EntityType(e.Type)})
	}
	for _, e := range msg.CaptionEntities {
		out.Entities = append(out.Entities, model.Entity{Type: model.EntityType(e.Type)})
	}

	switch {
	case msg.Animation != nil:
		// Animations arrive as mp4 containers; they are still gifs to
		// the lock model.
		out.Document = &model.DocumentInfo{MimeType: "image/gif", FileName: msg.Animation.FileName}
	case msg.Document != nil:
		out.Document = &model.DocumentInfo{MimeType: msg.Document.MimeType, FileName: msg.Document.FileName}
	}

	for _, u := range msg.NewChatMembers {
		out.NewMembers = append(out.NewMembers, model.NewMember{UserID: u.ID, IsBot: u.IsBot})
	}

	if msg.ReplyMarkup != nil && len(msg.ReplyMarkup.InlineKeyboard) > 0 {
		out.HasInlineKeyboard = true
	}

	out.Forward = forwardOrigin(msg)
	return out
}

func forwardOrigin(msg *tgbotapi.Message) *model.ForwardOrigin {
	switch {
	case msg.ForwardFromChat != nil:
		kind := model.OriginChat
		if msg.ForwardFromChat.IsChannel() {
			kind = model.OriginChannel
		}
		return &model.ForwardOrigin{Kind: kind, ID: msg.ForwardFromChat.ID}
	case msg.ForwardFrom != nil:
		return &model.ForwardOrigin{Kind: model.OriginUser, ID: msg.ForwardFrom.ID}
	case msg.ForwardDate > 0 || msg.ForwardSenderName != "":
		return &model.ForwardOrigin{Kind: model.OriginHidden}
	default:
		return nil
	}
}

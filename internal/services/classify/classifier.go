// Package classify assigns at most one lock type to a message.
//
// The priority order is fixed and total: the first structural match
// wins, media kinds outrank anything found in text, and text checks run
// in their own sub-order. Changing the order changes which policy rule
// fires for mixed-content messages, so it is covered by tests.
package classify

import (
	"strings"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

// Options carries the per-chat policy inputs classification depends on.
type Options struct {
	BannedWords      map[string]struct{}
	MaxMessageLength int

	// SkipBlockquote suppresses the leading-blockquote category. The
	// engine sets it when re-classifying a message whose author is
	// exempt from the blockquote rule, so the rest of the chain still
	// applies to the same text.
	SkipBlockquote bool
}

// Classify returns the single lock type a message belongs to, or false
// when the message is unclassified and never enforced.
func Classify(msg model.Message, opts Options) (enums.LockType, bool) {
	if !opts.SkipBlockquote && strings.HasPrefix(msg.Text, ">") {
		return enums.LockBlockquote, true
	}

	switch {
	case msg.HasPhoto:
		return enums.LockPhoto, true
	case msg.HasVideo || msg.HasVideoNote:
		return enums.LockVideo, true
	case msg.HasSticker:
		return enums.LockSticker, true
	case msg.HasVoice:
		return enums.LockVoice, true
	case msg.HasAudio:
		return enums.LockAudio, true
	case msg.HasPoll:
		return enums.LockPoll, true
	case msg.HasDice:
		return enums.LockDice, true
	case msg.Document != nil:
		if isGif(msg.Document) {
			return enums.LockGif, true
		}
		return enums.LockDocument, true
	case msg.HasContact:
		return enums.LockContact, true
	case msg.HasGame:
		return enums.LockGame, true
	case msg.HasLocation:
		return enums.LockLocation, true
	case msg.SpoilerMedia:
		return enums.LockSpoilerMedia, true
	case len(msg.NewMembers) > 0:
		for _, member := range msg.NewMembers {
			if member.IsBot {
				return enums.LockBots, true
			}
		}
		return "", false
	}

	text := msg.Content()
	if text == "" {
		return "", false
	}
	return classifyText(msg, text, opts)
}

func classifyText(msg model.Message, text string, opts Options) (enums.LockType, bool) {
	lower := strings.ToLower(text)

	if containsBannedWord(lower, opts.BannedWords) {
		return enums.LockSwear, true
	}

	switch {
	case hasEntity(msg.Entities, model.EntitySpoiler):
		return enums.LockSpoilerText, true
	case hasEntity(msg.Entities, model.EntityURL, model.EntityTextLink) ||
		strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://") ||
		strings.Contains(lower, ".com"):
		return enums.LockLink, true
	case hasEntity(msg.Entities, model.EntityMention) || strings.Contains(text, "@"):
		return enums.LockMention, true
	case hasEntity(msg.Entities, model.EntityBold, model.EntityItalic, model.EntityCode, model.EntityPre):
		return enums.LockMarkdown, true
	case msg.HasInlineKeyboard:
		return enums.LockInline, true
	case hasLatinLetter(text):
		return enums.LockEnglish, true
	case opts.MaxMessageLength > 0 && len([]rune(text)) > opts.MaxMessageLength:
		return enums.LockLongText, true
	}

	return "", false
}

// FindBannedWord returns the first banned word found in the text, used
// for violation logging. Matching is a case-insensitive substring test.
func FindBannedWord(text string, bannedWords map[string]struct{}) (string, bool) {
	lower := strings.ToLower(text)
	for word := range bannedWords {
		if word != "" && strings.Contains(lower, word) {
			return word, true
		}
	}
	return "", false
}

func containsBannedWord(lower string, bannedWords map[string]struct{}) bool {
	for word := range bannedWords {
		if word != "" && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func hasEntity(entities []model.Entity, types ...model.EntityType) bool {
	for _, e := range entities {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}

func hasLatinLetter(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func isGif(doc *model.DocumentInfo) bool {
	if doc.MimeType == "image/gif" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(doc.FileName), ".gif")
}

package protection

import (
	"fmt"
	"strings"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
)

var noticeSubjects = map[enums.LockType]string{
	enums.LockBlockquote:   "quoted text",
	enums.LockPhoto:        "photos",
	enums.LockVideo:        "videos",
	enums.LockSticker:      "stickers",
	enums.LockVoice:        "voice messages",
	enums.LockAudio:        "audio files",
	enums.LockPoll:         "polls",
	enums.LockDice:         "dice",
	enums.LockGif:          "GIFs",
	enums.LockDocument:     "files",
	enums.LockContact:      "contacts",
	enums.LockGame:         "games",
	enums.LockLocation:     "locations",
	enums.LockSpoilerMedia: "spoiler media",
	enums.LockBots:         "bot accounts",
	enums.LockSwear:        "banned words",
	enums.LockSpoilerText:  "spoiler text",
	enums.LockLink:         "links",
	enums.LockMention:      "mentions",
	enums.LockMarkdown:     "formatted text",
	enums.LockInline:       "inline buttons",
	enums.LockEnglish:      "English text",
	enums.LockLongText:     "long messages",
	enums.LockEdit:         "edited messages",
}

var noticeSuffix = map[enums.Action]string{
	enums.ActionMute: " You have been muted.",
	enums.ActionBan:  " You have been banned.",
}

func violationNotice(lockType enums.LockType, action enums.Action) string {
	subject, ok := noticeSubjects[lockType]
	if !ok {
		subject = "this content"
	}
	return fmt.Sprintf("Sorry, %s are not allowed in this chat.%s", subject, noticeSuffix[action])
}

func forwardNotice(sources []string) string {
	var b strings.Builder
	b.WriteString("Forwarded messages are not allowed in this chat.")
	if len(sources) > 0 {
		b.WriteString(" Forwards are only accepted from:")
		for _, s := range sources {
			b.WriteString("\n- ")
			b.WriteString(s)
		}
	}
	return b.String()
}

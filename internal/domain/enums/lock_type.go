package enums

// LockType is a closed category of message content subject to protection.
// The zero value is not a valid lock type.
type LockType string

const (
	LockBlockquote   LockType = "blockquote"
	LockPhoto        LockType = "photo"
	LockVideo        LockType = "video"
	LockSticker      LockType = "sticker"
	LockVoice        LockType = "voice"
	LockAudio        LockType = "audio"
	LockPoll         LockType = "poll"
	LockDice         LockType = "dice"
	LockGif          LockType = "gif"
	LockDocument     LockType = "document"
	LockContact      LockType = "contact"
	LockGame         LockType = "game"
	LockLocation     LockType = "location"
	LockSpoilerMedia LockType = "spoiler_media"
	LockBots         LockType = "bots"
	LockSwear        LockType = "swear"
	LockSpoilerText  LockType = "spoiler_text"
	LockLink         LockType = "link"
	LockMention      LockType = "mention"
	LockMarkdown     LockType = "markdown"
	LockInline       LockType = "inline"
	LockEnglish      LockType = "english"
	LockLongText     LockType = "long_text"
	LockEdit         LockType = "edit"
)

// AllLockTypes lists every lock type in a stable order, used by the
// settings keyboard and the bulk lock/unlock commands.
var AllLockTypes = []LockType{
	LockBlockquote,
	LockPhoto,
	LockVideo,
	LockSticker,
	LockVoice,
	LockAudio,
	LockPoll,
	LockDice,
	LockGif,
	LockDocument,
	LockContact,
	LockGame,
	LockLocation,
	LockSpoilerMedia,
	LockBots,
	LockSwear,
	LockSpoilerText,
	LockLink,
	LockMention,
	LockMarkdown,
	LockInline,
	LockEnglish,
	LockLongText,
	LockEdit,
}

var lockTypeSet = func() map[LockType]struct{} {
	m := make(map[LockType]struct{}, len(AllLockTypes))
	for _, lt := range AllLockTypes {
		m[lt] = struct{}{}
	}
	return m
}()

// ParseLockType maps a stored string to a known lock type. Unknown keys
// report false so a misspelled row cannot silently configure a rule.
func ParseLockType(s string) (LockType, bool) {
	lt := LockType(s)
	_, ok := lockTypeSet[lt]
	if !ok {
		return "", false
	}
	return lt, true
}

func (lt LockType) String() string {
	return string(lt)
}

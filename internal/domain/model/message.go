package model

import "time"

// EntityType mirrors the host's formatting-entity kinds the classifier
// cares about. Unknown kinds are carried through and ignored.
type EntityType string

const (
	EntityURL      EntityType = "url"
	EntityTextLink EntityType = "text_link"
	EntityMention  EntityType = "mention"
	EntityBold     EntityType = "bold"
	EntityItalic   EntityType = "italic"
	EntityCode     EntityType = "code"
	EntityPre      EntityType = "pre"
	EntitySpoiler  EntityType = "spoiler"
)

// Entity is a formatting entity attached to a message's text or caption.
type Entity struct {
	Type EntityType
}

// ForwardOriginKind identifies where a forwarded message came from.
type ForwardOriginKind string

const (
	OriginChannel ForwardOriginKind = "channel"
	OriginChat    ForwardOriginKind = "chat"
	OriginUser    ForwardOriginKind = "user"
	OriginHidden  ForwardOriginKind = "hidden"
)

// ForwardOrigin describes the source of a forwarded message. ID is zero
// for hidden origins (users who disallow linking).
type ForwardOrigin struct {
	Kind ForwardOriginKind
	ID   int64
}

// DocumentInfo carries the attributes used to split generic documents
// into gif vs document lock types.
type DocumentInfo struct {
	MimeType string
	FileName string
}

// NewMember is one account added by a "new chat members" service event.
type NewMember struct {
	UserID int64
	IsBot  bool
}

// Message is the host-independent view of an inbound or edited message.
// The telegram adapter fills it from the raw update; the engine and the
// classifier never see host types.
type Message struct {
	ChatID    int64
	MessageID int
	UserID    int64

	SentAt   time.Time
	EditedAt time.Time // zero unless the event is an edit

	Text     string
	Caption  string
	Entities []Entity

	HasPhoto     bool
	HasVideo     bool
	HasVideoNote bool
	HasSticker   bool
	HasVoice     bool
	HasAudio     bool
	HasPoll      bool
	HasDice      bool
	HasContact   bool
	HasGame      bool
	HasLocation  bool
	SpoilerMedia bool

	Document   *DocumentInfo
	NewMembers []NewMember

	HasInlineKeyboard bool

	Forward *ForwardOrigin
}

// Content returns the message text, falling back to the media caption.
func (m Message) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// IsForwarded reports whether the message was forwarded from elsewhere.
func (m Message) IsForwarded() bool {
	return m.Forward != nil
}

// IsEdited reports whether the event is an edit of an earlier message.
func (m Message) IsEdited() bool {
	return !m.EditedAt.IsZero()
}

package classify

import (
	"strings"
	"testing"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

func TestMediaOutranksTextContent(t *testing.T) {
	msg := model.Message{
		HasPhoto: true,
		Caption:  "check https://example.com",
	}

	lt, ok := Classify(msg, Options{})
	if !ok || lt != enums.LockPhoto {
		t.Fatalf("photo with link caption should classify as photo, got %s ok=%v", lt, ok)
	}
}

func TestPriorityOrderAmongMediaKinds(t *testing.T) {
	msg := model.Message{
		HasPhoto:   true,
		HasVideo:   true,
		HasSticker: true,
	}
	if lt, _ := Classify(msg, Options{}); lt != enums.LockPhoto {
		t.Fatalf("photo should win over video and sticker, got %s", lt)
	}

	msg.HasPhoto = false
	if lt, _ := Classify(msg, Options{}); lt != enums.LockVideo {
		t.Fatalf("video should win over sticker, got %s", lt)
	}
}

func TestVideoNoteClassifiesAsVideo(t *testing.T) {
	if lt, _ := Classify(model.Message{HasVideoNote: true}, Options{}); lt != enums.LockVideo {
		t.Fatalf("video note should classify as video, got %s", lt)
	}
}

func TestBlockquoteIsCheckedFirst(t *testing.T) {
	msg := model.Message{Text: "> quoted https://example.com"}

	lt, ok := Classify(msg, Options{})
	if !ok || lt != enums.LockBlockquote {
		t.Fatalf("leading blockquote should win, got %s ok=%v", lt, ok)
	}

	lt, ok = Classify(msg, Options{SkipBlockquote: true})
	if !ok || lt != enums.LockLink {
		t.Fatalf("with blockquote skipped the link should match, got %s ok=%v", lt, ok)
	}
}

func TestDocumentGifSplit(t *testing.T) {
	cases := []struct {
		name string
		doc  model.DocumentInfo
		want enums.LockType
	}{
		{"gif mime", model.DocumentInfo{MimeType: "image/gif"}, enums.LockGif},
		{"gif filename", model.DocumentInfo{MimeType: "application/octet-stream", FileName: "Funny.GIF"}, enums.LockGif},
		{"plain document", model.DocumentInfo{MimeType: "application/pdf", FileName: "paper.pdf"}, enums.LockDocument},
	}

	for _, tc := range cases {
		doc := tc.doc
		lt, ok := Classify(model.Message{Document: &doc}, Options{})
		if !ok || lt != tc.want {
			t.Fatalf("%s: got %s ok=%v, want %s", tc.name, lt, ok, tc.want)
		}
	}
}

func TestNewMembersClassifyAsBotsOnlyWhenBotAdded(t *testing.T) {
	withBot := model.Message{NewMembers: []model.NewMember{{UserID: 1}, {UserID: 2, IsBot: true}}}
	if lt, ok := Classify(withBot, Options{}); !ok || lt != enums.LockBots {
		t.Fatalf("bot join should classify as bots, got %s ok=%v", lt, ok)
	}

	humansOnly := model.Message{NewMembers: []model.NewMember{{UserID: 1}}}
	if _, ok := Classify(humansOnly, Options{}); ok {
		t.Fatalf("human-only join should be unclassified")
	}
}

func TestSwearMatchIsCaseInsensitiveSubstring(t *testing.T) {
	opts := Options{BannedWords: map[string]struct{}{"badword": {}}}
	msg := model.Message{Text: "this is a BADWORD example"}

	lt, ok := Classify(msg, opts)
	if !ok || lt != enums.LockSwear {
		t.Fatalf("banned word should match case-insensitively, got %s ok=%v", lt, ok)
	}

	word, found := FindBannedWord(msg.Text, opts.BannedWords)
	if !found || word != "badword" {
		t.Fatalf("unexpected found word: %q found=%v", word, found)
	}
}

func TestSwearOutranksOtherTextCategories(t *testing.T) {
	opts := Options{BannedWords: map[string]struct{}{"spam": {}}}
	msg := model.Message{Text: "spam https://example.com @user"}

	if lt, _ := Classify(msg, opts); lt != enums.LockSwear {
		t.Fatalf("swear should outrank link and mention, got %s", lt)
	}
}

func TestTextSubOrder(t *testing.T) {
	cases := []struct {
		name string
		msg  model.Message
		want enums.LockType
	}{
		{"spoiler entity", model.Message{Text: "نص", Entities: []model.Entity{{Type: model.EntitySpoiler}}}, enums.LockSpoilerText},
		{"url entity", model.Message{Text: "نص", Entities: []model.Entity{{Type: model.EntityURL}}}, enums.LockLink},
		{"literal dot-com", model.Message{Text: "زوروا example.com"}, enums.LockLink},
		{"mention entity", model.Message{Text: "نص", Entities: []model.Entity{{Type: model.EntityMention}}}, enums.LockMention},
		{"literal at sign", model.Message{Text: "مرحبا @someone"}, enums.LockMention},
		{"bold entity", model.Message{Text: "نص", Entities: []model.Entity{{Type: model.EntityBold}}}, enums.LockMarkdown},
		{"inline keyboard", model.Message{Text: "نص", HasInlineKeyboard: true}, enums.LockInline},
		{"latin letters", model.Message{Text: "hello"}, enums.LockEnglish},
	}

	for _, tc := range cases {
		lt, ok := Classify(tc.msg, Options{})
		if !ok || lt != tc.want {
			t.Fatalf("%s: got %s ok=%v, want %s", tc.name, lt, ok, tc.want)
		}
	}
}

func TestLinkOutranksMentionAndMarkdown(t *testing.T) {
	msg := model.Message{
		Text:     "نص",
		Entities: []model.Entity{{Type: model.EntityBold}, {Type: model.EntityMention}, {Type: model.EntityTextLink}},
	}
	if lt, _ := Classify(msg, Options{}); lt != enums.LockLink {
		t.Fatalf("link should outrank mention and markdown, got %s", lt)
	}
}

func TestLongTextIsLastResort(t *testing.T) {
	long := strings.Repeat("ن", 50)

	lt, ok := Classify(model.Message{Text: long}, Options{MaxMessageLength: 10})
	if !ok || lt != enums.LockLongText {
		t.Fatalf("over-limit text should classify as long_text, got %s ok=%v", lt, ok)
	}

	// latin content wins over length
	lt, _ = Classify(model.Message{Text: strings.Repeat("a", 50)}, Options{MaxMessageLength: 10})
	if lt != enums.LockEnglish {
		t.Fatalf("english should outrank long_text, got %s", lt)
	}

	// no limit configured
	if _, ok := Classify(model.Message{Text: long}, Options{}); ok {
		t.Fatalf("text should be unclassified without a length limit")
	}
}

func TestLongTextCountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("ن", 10) // 10 runes, 20 bytes
	if _, ok := Classify(model.Message{Text: text}, Options{MaxMessageLength: 10}); ok {
		t.Fatalf("10 runes should not exceed a limit of 10")
	}
}

func TestUnclassifiedMessages(t *testing.T) {
	cases := []model.Message{
		{},
		{Text: "مرحبا"},
		{Caption: "تعليق"},
	}
	for i, msg := range cases {
		if lt, ok := Classify(msg, Options{}); ok {
			t.Fatalf("case %d: expected unclassified, got %s", i, lt)
		}
	}
}

func TestCaptionIsClassifiedLikeText(t *testing.T) {
	msg := model.Message{Caption: "see https://example.com"}
	if lt, _ := Classify(msg, Options{}); lt != enums.LockLink {
		t.Fatalf("caption link should classify as link, got %s", lt)
	}
}

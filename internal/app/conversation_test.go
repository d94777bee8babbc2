package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/yt-courier-go/internal/domain"
)

type conversationFixture struct {
	*downloadFixture
	sessions *SessionStore
	conv     *Conversation
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	f := newDownloadFixture(t)
	sessions := NewSessionStore(time.Minute)
	conv := NewConversation(sessions, f.service, f.ledger, f.users, f.transport, nil)
	return &conversationFixture{downloadFixture: f, sessions: sessions, conv: conv}
}

func (f *conversationFixture) send(chatID int64, text string) {
	f.conv.Handle(context.Background(), domain.InboundMessage{
		ChatID: chatID,
		Text:   text,
		From:   domain.ContactSnapshot{TelegramID: chatID, FirstName: "Test"},
	})
}

func TestConversation_StartSendsWelcomeAndSavesContact(t *testing.T) {
	f := newConversationFixture(t)

	f.send(7, "/start")

	require.Len(t, f.transport.texts, 1)
	assert.Contains(t, f.transport.texts[0], "YouTube Downloader Bot")
	assert.Equal(t, 1, f.users.contacts)
}

func TestConversation_URLThenFormatDownloads(t *testing.T) {
	f := newConversationFixture(t)
	url := "https://youtu.be/abc"

	f.send(7, url)
	assert.Equal(t, StateAwaitingFormat, f.sessions.Get(7).State)

	f.send(7, "MP4")

	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Len(t, f.transport.files, 1)
	assert.Equal(t, domain.FormatVideo, f.users.preferred[7])
}

func TestConversation_InvalidFormatAbortsWithoutSideEffects(t *testing.T) {
	f := newConversationFixture(t)

	f.send(7, "https://youtu.be/abc")
	f.send(7, "FLAC")

	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Empty(t, f.transport.files)
	assert.Empty(t, f.ledger.List(7))

	last := f.transport.texts[len(f.transport.texts)-1]
	assert.Contains(t, last, "MP3 or MP4")
}

func TestConversation_NonVideoTextIsIgnored(t *testing.T) {
	f := newConversationFixture(t)

	f.send(7, "hello there")

	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Empty(t, f.transport.texts)
}

func TestConversation_RetryWithEmptyLedger(t *testing.T) {
	f := newConversationFixture(t)

	f.send(7, "/retry")

	require.Len(t, f.transport.texts, 1)
	assert.Contains(t, f.transport.texts[0], "no failed downloads")
	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
}

func TestConversation_RetryAllFlow(t *testing.T) {
	f := newConversationFixture(t)
	f.ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})

	f.send(7, "/retry")
	assert.Equal(t, StateAwaitingRetryChoice, f.sessions.Get(7).State)

	f.send(7, optionRetryAll)

	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Empty(t, f.ledger.List(7))
	assert.Len(t, f.transport.files, 1)
}

func TestConversation_RetrySelectedFlow(t *testing.T) {
	f := newConversationFixture(t)
	f.ledger.Extend(7, []domain.FailedItem{
		{URL: "https://youtu.be/a", Format: domain.FormatVideo},
		{URL: "https://youtu.be/b", Format: domain.FormatVideo},
	})

	f.send(7, "/retry")
	f.send(7, optionRetrySelect)
	assert.Equal(t, StateAwaitingRetryIndices, f.sessions.Get(7).State)

	f.send(7, "2")

	items := f.ledger.List(7)
	require.Len(t, items, 1)
	assert.Equal(t, "https://youtu.be/a", items[0].URL)
}

func TestConversation_RetryIndicesMalformed(t *testing.T) {
	f := newConversationFixture(t)
	f.ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})

	f.send(7, "/retry")
	f.send(7, optionRetrySelect)
	f.send(7, "one, two")

	// aborted with guidance, ledger untouched
	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Len(t, f.ledger.List(7), 1)
	last := f.transport.texts[len(f.transport.texts)-1]
	assert.Contains(t, last, "selection")
}

func TestConversation_RetryCancel(t *testing.T) {
	f := newConversationFixture(t)
	f.ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})

	f.send(7, "/retry")
	f.send(7, optionCancel)

	assert.Equal(t, StateIdle, f.sessions.Get(7).State)
	assert.Len(t, f.ledger.List(7), 1)
}

func TestConversation_ContactConsent(t *testing.T) {
	f := newConversationFixture(t)

	f.conv.Handle(context.Background(), domain.InboundMessage{
		ChatID:       7,
		From:         domain.ContactSnapshot{TelegramID: 7},
		ContactPhone: "+5511999999999",
	})
	assert.True(t, f.users.consents[7])

	f.send(7, optionConsentDecline)
	assert.False(t, f.users.consents[7])
}

func TestParseIndices(t *testing.T) {
	indices, err := parseIndices("1, 3,5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, indices)

	_, err = parseIndices("a,b")
	assert.Error(t, err)

	_, err = parseIndices("  ")
	assert.Error(t, err)
}

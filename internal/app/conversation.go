package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

const welcomeText = "Welcome to the YouTube Downloader Bot! 🎥\n\n" +
	"Send a YouTube video or playlist link to get started.\n\n" +
	"Commands:\n" +
	"/download - Download a video or playlist\n" +
	"/retry - Retry failed downloads\n" +
	"/help - Show help"

const (
	optionRetryAll    = "Retry All"
	optionRetrySelect = "Select Items"
	optionCancel      = "Cancel"

	optionConsentDecline = "No, thanks"
)

// Conversation dispatches inbound messages through an explicit per-chat
// state machine: idle, awaiting format, awaiting retry choice, awaiting
// retry indices. One message is handled at a time per chat; distinct
// chats run concurrently.
type Conversation struct {
	sessions  *SessionStore
	downloads *DownloadService
	ledger    *FailedLedger
	users     domain.UserRepository
	transport domain.Transport
	logger    *zap.Logger

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

// NewConversation creates the conversation handler
func NewConversation(
	sessions *SessionStore,
	downloads *DownloadService,
	ledger *FailedLedger,
	users domain.UserRepository,
	transport domain.Transport,
	logger *zap.Logger,
) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		sessions:  sessions,
		downloads: downloads,
		ledger:    ledger,
		users:     users,
		transport: transport,
		logger:    logger,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// Handle processes one inbound message. It blocks for the duration of
// any download it triggers, serialized per chat.
func (c *Conversation) Handle(ctx context.Context, msg domain.InboundMessage) {
	lock := c.chatLock(msg.ChatID)
	lock.Lock()
	defer lock.Unlock()

	c.saveContact(msg.From)

	if msg.ContactPhone != "" {
		c.handleConsentShared(msg)
		return
	}

	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		c.sessions.Reset(msg.ChatID)
		c.reply(msg.ChatID, welcomeText)
		return
	case text == "/help":
		c.reply(msg.ChatID, welcomeText)
		return
	case text == "/download":
		c.sessions.Reset(msg.ChatID)
		c.reply(msg.ChatID, "Send me a YouTube video or playlist link.")
		return
	case text == "/retry":
		c.startRetry(msg.ChatID)
		return
	case text == optionConsentDecline:
		c.handleConsentDeclined(msg)
		return
	}

	session := c.sessions.Get(msg.ChatID)

	switch session.State {
	case StateAwaitingFormat:
		c.handleFormatChoice(ctx, msg.ChatID, session.PendingURL, text)
	case StateAwaitingRetryChoice:
		c.handleRetryChoice(ctx, msg.ChatID, text)
	case StateAwaitingRetryIndices:
		c.handleRetryIndices(ctx, msg.ChatID, text)
	default:
		c.handleURL(msg.ChatID, text)
	}
}

// handleURL starts a new download flow when the message carries a video URL
func (c *Conversation) handleURL(chatID int64, text string) {
	if !domain.IsVideoURL(text) {
		return
	}

	c.sessions.Set(chatID, StateAwaitingFormat, text)
	if err := c.transport.SendOptions(chatID, "Choose the download format:",
		[]string{string(domain.FormatAudio), string(domain.FormatVideo)}); err != nil {
		c.logger.Error("failed to send format options",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// handleFormatChoice validates the chosen format and dispatches the
// download. An invalid choice aborts the flow without side effects.
func (c *Conversation) handleFormatChoice(ctx context.Context, chatID int64, pendingURL, text string) {
	c.sessions.Reset(chatID)

	if pendingURL == "" {
		c.reply(chatID, "I lost track of the link. Please send it again.")
		return
	}

	format, err := domain.ParseFormat(text)
	if err != nil {
		c.reply(chatID, "Invalid format. Please choose MP3 or MP4, then send the link again.")
		return
	}

	c.savePreferredFormat(chatID, format)
	c.reply(chatID, "Downloading, this can take a while...")
	c.downloads.Dispatch(ctx, chatID, pendingURL, format)
}

// startRetry shows the failed list and the retry options keyboard
func (c *Conversation) startRetry(chatID int64) {
	items := c.ledger.List(chatID)
	if len(items) == 0 {
		c.reply(chatID, "There are no failed downloads to retry.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Choose a retry option.\n\nFailed downloads:")
	for i, item := range items {
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, item.URL, item.Format)
	}

	c.sessions.Set(chatID, StateAwaitingRetryChoice, "")
	if err := c.transport.SendOptions(chatID, sb.String(),
		[]string{optionRetryAll, optionRetrySelect, optionCancel}); err != nil {
		c.logger.Error("failed to send retry options",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (c *Conversation) handleRetryChoice(ctx context.Context, chatID int64, text string) {
	switch text {
	case optionRetryAll:
		c.sessions.Reset(chatID)
		c.downloads.RetryAll(ctx, chatID)
		c.reply(chatID, "Retry finished.")
	case optionRetrySelect:
		items := c.ledger.List(chatID)
		if len(items) == 0 {
			c.sessions.Reset(chatID)
			c.reply(chatID, "There are no failed downloads to retry.")
			return
		}
		var sb strings.Builder
		sb.WriteString("Send the numbers to retry, separated by commas:\n")
		for i, item := range items {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, item.URL, item.Format)
		}
		c.sessions.Set(chatID, StateAwaitingRetryIndices, "")
		c.reply(chatID, sb.String())
	case optionCancel:
		c.sessions.Reset(chatID)
		c.reply(chatID, "Retry cancelled.")
	default:
		c.sessions.Reset(chatID)
		c.reply(chatID, "Unknown option, retry cancelled. Use /retry to start again.")
	}
}

// handleRetryIndices parses the 1-based selection. Malformed input aborts
// the flow with guidance and no side effects.
func (c *Conversation) handleRetryIndices(ctx context.Context, chatID int64, text string) {
	c.sessions.Reset(chatID)

	indices, err := parseIndices(text)
	if err != nil {
		c.reply(chatID, "Could not read that selection. Use /retry and send numbers like: 1, 3")
		return
	}

	c.downloads.RetrySelected(ctx, chatID, indices)
	c.reply(chatID, "Retry finished.")
}

func (c *Conversation) handleConsentShared(msg domain.InboundMessage) {
	if c.users != nil {
		if err := c.users.SetConsent(msg.ChatID, true, msg.ContactPhone); err != nil {
			c.logger.Error("failed to save consent",
				zap.Int64("chat_id", msg.ChatID),
				zap.Error(err))
		}
	}
	c.reply(msg.ChatID, "✅ Thanks for sharing your contact! You will now receive updates.")
}

func (c *Conversation) handleConsentDeclined(msg domain.InboundMessage) {
	if c.users != nil {
		if err := c.users.SetConsent(msg.ChatID, false, ""); err != nil {
			c.logger.Error("failed to save consent",
				zap.Int64("chat_id", msg.ChatID),
				zap.Error(err))
		}
	}
	c.reply(msg.ChatID, "👍 No problem! We respect your privacy.")
}

func (c *Conversation) saveContact(contact domain.ContactSnapshot) {
	if c.users == nil || contact.TelegramID == 0 {
		return
	}
	if err := c.users.SaveContact(contact); err != nil {
		c.logger.Warn("failed to save user contact",
			zap.Int64("telegram_id", contact.TelegramID),
			zap.Error(err))
	}
}

func (c *Conversation) savePreferredFormat(chatID int64, format domain.Format) {
	if c.users == nil {
		return
	}
	if err := c.users.SetPreferredFormat(chatID, format); err != nil {
		c.logger.Warn("failed to save preferred format",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (c *Conversation) reply(chatID int64, text string) {
	if err := c.transport.SendText(chatID, text); err != nil {
		c.logger.Error("failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (c *Conversation) chatLock(chatID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		c.chatLocks[chatID] = lock
	}
	return lock
}

// parseIndices parses a comma-separated list of 1-based positions
func parseIndices(text string) ([]int, error) {
	parts := strings.Split(text, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		indices = append(indices, n)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	return indices, nil
}

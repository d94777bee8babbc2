package infrastructure

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

// TelegramTransport implements domain.Transport over the Telegram Bot
// API and feeds inbound updates to a handler.
type TelegramTransport struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

// NewTelegramTransport authenticates against the Bot API
func NewTelegramTransport(token string, pollTimeout int, logger *zap.Logger) (*TelegramTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}

	logger.Info("telegram bot authenticated", zap.String("username", bot.Self.UserName))

	return &TelegramTransport{
		bot:         bot,
		pollTimeout: pollTimeout,
		logger:      logger,
	}, nil
}

// SendText sends a plain text message, clearing any reply keyboard
func (t *TelegramTransport) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendOptions sends a text message with a one-time reply keyboard
func (t *TelegramTransport) SendOptions(chatID int64, text string, options []string) error {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(options))
	for _, option := range options {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(option))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	keyboard := tgbotapi.NewReplyKeyboard(buttons)
	keyboard.OneTimeKeyboard = true
	msg.ReplyMarkup = keyboard

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send options: %w", err)
	}
	return nil
}

// SendFile delivers a local file as a document
func (t *TelegramTransport) SendFile(chatID int64, path string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send file: %w", err)
	}
	return nil
}

// Listen runs the long-poll receive loop until the context is cancelled.
// Each inbound message is handed to the handler on its own goroutine;
// per-chat serialization is the handler's concern.
func (t *TelegramTransport) Listen(ctx context.Context, handler func(context.Context, domain.InboundMessage)) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = t.pollTimeout

	updates := t.bot.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			msg := toInboundMessage(update.Message)
			go handler(ctx, msg)
		}
	}
}

func toInboundMessage(m *tgbotapi.Message) domain.InboundMessage {
	msg := domain.InboundMessage{
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}
	if m.From != nil {
		msg.From = domain.ContactSnapshot{
			TelegramID:   m.From.ID,
			Username:     m.From.UserName,
			FirstName:    m.From.FirstName,
			LastName:     m.From.LastName,
			LanguageCode: m.From.LanguageCode,
		}
	}
	if m.Contact != nil {
		msg.ContactPhone = m.Contact.PhoneNumber
	}
	return msg
}

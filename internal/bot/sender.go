package bot

import (
	"context"
	"fmt"

	"biteiq-bot/internal/messages"
	"biteiq-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// Telegram allows roughly 30 messages per second per bot.
	sendRate  = 25
	sendBurst = 5
)

// Sender rate-limits every outbound Telegram call.
type Sender struct {
	api     botAPI
	limiter *rate.Limiter
	logger  *logger.Logger
}

func NewSender(api botAPI, l *logger.Logger) *Sender {
	return &Sender{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		logger:  l.Named("sender"),
	}
}

// Send delivers a message-producing request such as a new message.
func (s *Sender) Send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := s.api.Send(c); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Request delivers calls whose result is not a message (callback answers, chat actions, edits).
func (s *Sender) Request(ctx context.Context, c tgbotapi.Chattable) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := s.api.Request(c); err != nil {
		return fmt.Errorf("failed telegram request: %w", err)
	}
	return nil
}

// SendText sends MarkdownV2 text with an optional reply markup.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = messages.ParseMode
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return s.Send(ctx, msg)
}

// EditText replaces the text of a message the bot sent earlier.
func (s *Sender) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = messages.ParseMode
	return s.Request(ctx, edit)
}

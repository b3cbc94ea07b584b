package bot

import (
	"context"
	"errors"
	"strings"

	"biteiq-bot/internal/db"
	"biteiq-bot/internal/messages"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *TelegramBot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if err := t.sender.Request(ctx, tgbotapi.NewCallback(q.ID, "")); err != nil {
		t.logger.Warnw("Failed to answer callback", "error", err)
	}
	if q.From == nil {
		return
	}

	telegramID := q.From.ID
	chatID := telegramID
	messageID := 0
	if q.Message != nil {
		chatID = q.Message.Chat.ID
		messageID = q.Message.MessageID
	}

	if err := t.store.TouchUser(ctx, telegramID); err != nil {
		t.logger.Warnw("Failed to update last active", "telegram_id", telegramID, "error", err)
	}
	user, err := t.store.GetUser(ctx, telegramID)
	if errors.Is(err, db.ErrNotFound) {
		user, err = t.store.EnsureUser(ctx, telegramID, q.From.UserName, q.From.FirstName)
	}
	if err != nil {
		t.logger.Errorw("Failed to load user", "telegram_id", telegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}

	data := q.Data
	t.logger.Infow("Handling callback", "data", data, "telegram_id", telegramID)

	// edit rewrites the message carrying the button, or sends a new one when there is none.
	edit := func(text string) {
		if messageID == 0 {
			t.reply(ctx, chatID, text)
			return
		}
		if err := t.sender.EditText(ctx, chatID, messageID, text); err != nil {
			t.logger.Warnw("Failed to edit message", "chat_id", chatID, "error", err)
		}
	}

	switch {
	case data == messages.CallbackRemindersOn:
		if err := t.store.SetReminders(ctx, user.ID, true, models.DefaultReminderSlots); err != nil {
			t.logger.Errorw("Failed to enable reminders", "user_id", user.ID, "error", err)
			t.reply(ctx, chatID, messages.GenericError)
			return
		}
		edit(messages.RemindersEnabled(models.DefaultReminderSlots))

	case data == messages.CallbackRemindersOff:
		if err := t.store.SetReminders(ctx, user.ID, false, nil); err != nil {
			t.logger.Errorw("Failed to disable reminders", "user_id", user.ID, "error", err)
			t.reply(ctx, chatID, messages.GenericError)
			return
		}
		edit(messages.RemindersOff)

	case data == messages.CallbackTomorrow:
		if refusal, ok := t.premiumGate(ctx, user, "get tomorrow's plan", true); !ok {
			edit(refusal)
			return
		}
		t.sendTomorrow(ctx, user, chatID)

	case data == messages.CallbackAskRecipe:
		if refusal, ok := t.premiumGate(ctx, user, "get recipes", false); !ok {
			edit(refusal)
			return
		}
		t.setPending(ctx, telegramID, state.Recipe)
		t.reply(ctx, chatID, messages.AskRecipe)

	case strings.HasPrefix(data, messages.CallbackRecipePrefix):
		if refusal, ok := t.premiumGate(ctx, user, "get recipes", false); !ok {
			edit(refusal)
			return
		}
		t.sendRecipe(ctx, user, chatID, strings.TrimSpace(strings.TrimPrefix(data, messages.CallbackRecipePrefix)))

	case data == messages.CallbackAskQuestion:
		if refusal, ok := t.premiumGate(ctx, user, "ask questions", false); !ok {
			edit(refusal)
			return
		}
		t.setPending(ctx, telegramID, state.Question)
		t.reply(ctx, chatID, messages.AskQuestion)

	case data == messages.CallbackSubscribe:
		t.sendCheckout(ctx, telegramID, chatID)

	case data == messages.CallbackManage:
		t.sendPortal(ctx, user, chatID)

	case data == messages.CallbackForgetYes:
		// only a confirmation issued by /forget for this user may delete
		pending, err := t.pending.Take(ctx, telegramID)
		if err != nil || pending != state.Forget {
			t.logger.Warnw("Deletion without pending confirmation refused", "telegram_id", telegramID, "error", err)
			edit(messages.ForgetExpired)
			return
		}
		if err := t.store.DeleteUser(ctx, telegramID); err != nil && !errors.Is(err, db.ErrNotFound) {
			t.logger.Errorw("Failed to delete user", "telegram_id", telegramID, "error", err)
			t.reply(ctx, chatID, messages.GenericError)
			return
		}
		t.logger.Infow("User data deleted", "telegram_id", telegramID)
		edit(messages.ForgetDone)

	case data == messages.CallbackForgetNo:
		t.setPending(ctx, telegramID, state.None)
		edit(messages.ForgetCancelled)

	default:
		t.logger.Warnw("Unknown callback data", "data", data)
	}
}

func (t *TelegramBot) setPending(ctx context.Context, telegramID int64, p state.Pending) {
	if err := t.pending.Set(ctx, telegramID, p); err != nil {
		t.logger.Warnw("Failed to store pending input", "telegram_id", telegramID, "error", err)
	}
}

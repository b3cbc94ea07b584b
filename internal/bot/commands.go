package bot

import (
	"context"

	"biteiq-bot/internal/messages"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/planner"
	"biteiq-bot/internal/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *TelegramBot) handleCommand(ctx context.Context, user *models.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		t.reply(ctx, chatID, messages.Welcome(msg.From.FirstName))
		t.reply(ctx, chatID, messages.MenuHint)

	case "menu":
		t.sendMenu(ctx, user, chatID)

	case "help":
		t.reply(ctx, chatID, messages.Help)

	case "tomorrow":
		if text, ok := t.premiumGate(ctx, user, "get tomorrow's plan", true); !ok {
			t.reply(ctx, chatID, text)
			return
		}
		t.sendTomorrow(ctx, user, chatID)

	case "subscribe":
		t.sendCheckout(ctx, user.TelegramID, chatID)

	case "forget":
		t.setPending(ctx, user.TelegramID, state.Forget)
		t.replyWithMarkup(ctx, chatID, messages.ForgetConfirm, messages.ForgetKeyboard())

	default:
		t.reply(ctx, chatID, messages.Help)
	}
}

func (t *TelegramBot) sendMenu(ctx context.Context, user *models.User, chatID int64) {
	remindersOn, err := t.store.RemindersEnabled(ctx, user.ID)
	if err != nil {
		t.logger.Warnw("Failed to read reminder state", "user_id", user.ID, "error", err)
	}
	t.replyWithMarkup(ctx, chatID, messages.MenuTitle, messages.MenuKeyboard(remindersOn, t.isSubscribed(ctx, user)))
}

// premiumGate returns the refusal text when the user may not use a premium action.
func (t *TelegramBot) premiumGate(ctx context.Context, user *models.User, action string, needProfile bool) (string, bool) {
	if needProfile && !user.HasProfile() {
		return messages.ProfileFirst, false
	}
	if !t.isSubscribed(ctx, user) {
		return messages.Locked(action), false
	}
	return "", true
}

func (t *TelegramBot) isSubscribed(ctx context.Context, user *models.User) bool {
	if user == nil {
		return false
	}
	ok, err := t.store.HasActiveSubscription(ctx, user.TelegramID)
	if err != nil {
		t.logger.Errorw("Failed to check subscription", "telegram_id", user.TelegramID, "error", err)
		return false
	}
	return ok
}

func (t *TelegramBot) sendTomorrow(ctx context.Context, user *models.User, chatID int64) {
	t.typing(ctx, chatID)

	plan, err := t.planner.Generate(ctx, user, planner.Tomorrow)
	if err != nil {
		t.logger.Errorw("Failed to build tomorrow's plan", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}

	text := messages.FormatPlan(messages.PlanTitleTomorrow, user.DisplayName(), plan)
	t.replyWithMarkup(ctx, chatID, text, messages.RecipeKeyboard(plan.Meals))
}

func (t *TelegramBot) sendCheckout(ctx context.Context, telegramID, chatID int64) {
	url, err := t.billing.CreateCheckoutSession(telegramID)
	if err != nil {
		t.logger.Errorw("Stripe checkout error", "telegram_id", telegramID, "error", err)
		t.reply(ctx, chatID, messages.CheckoutError)
		return
	}
	t.reply(ctx, chatID, messages.CheckoutLink(url))
}

func (t *TelegramBot) sendPortal(ctx context.Context, user *models.User, chatID int64) {
	sub, err := t.store.GetSubscriptionByUser(ctx, user.ID)
	if err != nil || sub.StripeCustomerID == "" {
		t.reply(ctx, chatID, messages.NoSubscription)
		return
	}

	url, err := t.billing.CreatePortalSession(sub.StripeCustomerID)
	if err != nil {
		t.logger.Errorw("Stripe portal error", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.PortalError)
		return
	}
	t.reply(ctx, chatID, messages.PortalLink(url))
}

func (t *TelegramBot) reply(ctx context.Context, chatID int64, text string) {
	t.replyWithMarkup(ctx, chatID, text, nil)
}

func (t *TelegramBot) replyWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) {
	if err := t.sender.SendText(ctx, chatID, text, markup); err != nil {
		t.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (t *TelegramBot) typing(ctx context.Context, chatID int64) {
	if err := t.sender.Request(ctx, tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		t.logger.Debugw("Failed to send chat action", "chat_id", chatID, "error", err)
	}
}

package bot

import (
	"context"
	"strings"
	"time"

	"biteiq-bot/internal/messages"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/planner"
	"biteiq-bot/internal/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var dietKeywords = []string{
	"diet", "calorie", "protein", "carb", "fat", "meal", "weight", "nutrition", "kcal",
	"recipe", "breakfast", "lunch", "dinner",
}

// IsDietQuestion reports whether free text looks like a nutrition question.
func IsDietQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range dietKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// handleText resolves pending input first, then the profile form, then coach questions.
func (t *TelegramBot) handleText(ctx context.Context, user *models.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	pending, err := t.pending.Take(ctx, user.TelegramID)
	if err != nil {
		t.logger.Warnw("Failed to read pending input", "telegram_id", user.TelegramID, "error", err)
	}

	switch pending {
	case state.Recipe:
		if refusal, ok := t.premiumGate(ctx, user, "use recipes", false); !ok {
			t.reply(ctx, chatID, refusal)
			return
		}
		t.sendRecipe(ctx, user, chatID, text)
		return
	case state.Question:
		if refusal, ok := t.premiumGate(ctx, user, "ask questions", false); !ok {
			t.reply(ctx, chatID, refusal)
			return
		}
		t.sendAnswer(ctx, user, chatID, text)
		return
	}

	if profile, ok := ParseProfile(text); ok {
		t.saveProfile(ctx, user, chatID, profile)
		return
	}

	if !IsDietQuestion(text) {
		t.reply(ctx, chatID, messages.OnlyDiet)
		return
	}

	if refusal, ok := t.premiumGate(ctx, user, "chat with your coach", false); !ok {
		t.reply(ctx, chatID, refusal)
		return
	}
	t.sendAnswer(ctx, user, chatID, text)
}

func (t *TelegramBot) saveProfile(ctx context.Context, user *models.User, chatID int64, profile models.Profile) {
	if problems := ValidateProfile(profile); len(problems) > 0 {
		t.reply(ctx, chatID, messages.InvalidProfile(problems))
		return
	}

	updated, err := t.store.UpdateProfile(ctx, user.TelegramID, profile)
	if err != nil {
		t.logger.Errorw("Failed to save profile", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}
	t.logger.Infow("Profile saved", "telegram_id", user.TelegramID)

	t.reply(ctx, chatID, messages.Preparing(profile.Name))
	t.typing(ctx, chatID)

	plan, err := t.planner.Generate(ctx, updated, planner.Today)
	if err != nil {
		t.logger.Errorw("Failed to build first plan", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}

	t.replyWithMarkup(ctx, chatID, messages.FormatPlan(messages.PlanTitleToday, profile.Name, plan), messages.RecipeKeyboard(plan.Meals))
	t.replyWithMarkup(ctx, chatID, messages.RemindersPrompt, messages.RemindersKeyboard())
}

func (t *TelegramBot) sendRecipe(ctx context.Context, user *models.User, chatID int64, title string) {
	if title == "" {
		title = "Meal"
	}
	t.typing(ctx, chatID)

	var profile *models.Profile
	if user.HasProfile() {
		profile = &user.Profile
	}

	recipe, err := t.advisor.GenerateRecipe(ctx, title, profile)
	if err != nil {
		t.logger.Errorw("Failed to generate recipe", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}
	t.reply(ctx, chatID, messages.FormatRecipe(title, recipe))
}

func (t *TelegramBot) sendAnswer(ctx context.Context, user *models.User, chatID int64, question string) {
	t.typing(ctx, chatID)

	history, err := t.store.RecentConversation(ctx, user.ID, conversationTurns)
	if err != nil {
		t.logger.Warnw("Failed to load conversation", "user_id", user.ID, "error", err)
	}

	var profile *models.Profile
	if user.HasProfile() {
		profile = &user.Profile
	}

	answer, err := t.advisor.Answer(ctx, profile, history, question)
	if err != nil {
		t.logger.Errorw("Failed to answer question", "telegram_id", user.TelegramID, "error", err)
		t.reply(ctx, chatID, messages.GenericError)
		return
	}

	now := time.Now().UTC()
	err = t.store.AppendConversation(ctx, user.ID,
		models.ChatMessage{Role: models.RoleUser, Content: question, Timestamp: now},
		models.ChatMessage{Role: models.RoleAssistant, Content: answer, Timestamp: now},
	)
	if err != nil {
		t.logger.Warnw("Failed to store conversation", "user_id", user.ID, "error", err)
	}

	t.reply(ctx, chatID, messages.Answer(answer))
}

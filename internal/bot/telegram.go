package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"biteiq-bot/internal/messages"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/state"
	"biteiq-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// conversationTurns is how many stored messages accompany a coach question.
const conversationTurns = 10

// botAPI is the subset of *tgbotapi.BotAPI the bot talks to.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Store interface {
	EnsureUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error)
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, telegramID int64, p models.Profile) (*models.User, error)
	TouchUser(ctx context.Context, telegramID int64) error
	DeleteUser(ctx context.Context, telegramID int64) error
	HasActiveSubscription(ctx context.Context, telegramID int64) (bool, error)
	GetSubscriptionByUser(ctx context.Context, userID int64) (*models.Subscription, error)
	SetReminders(ctx context.Context, userID int64, enabled bool, slots []models.ReminderSlot) error
	RemindersEnabled(ctx context.Context, userID int64) (bool, error)
	AppendConversation(ctx context.Context, userID int64, msgs ...models.ChatMessage) error
	RecentConversation(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error)
}

type Advisor interface {
	GenerateRecipe(ctx context.Context, mealTitle string, profile *models.Profile) (string, error)
	Answer(ctx context.Context, profile *models.Profile, history []models.ChatMessage, question string) (string, error)
}

type Billing interface {
	CreateCheckoutSession(telegramID int64) (string, error)
	CreatePortalSession(customerID string) (string, error)
}

type Planner interface {
	Generate(ctx context.Context, user *models.User, offset int) (models.MealPlan, error)
}

type Deps struct {
	Store   Store
	Advisor Advisor
	Billing Billing
	Planner Planner
	Pending state.Store
}

type TelegramBot struct {
	api     botAPI
	sender  *Sender
	store   Store
	advisor Advisor
	billing Billing
	planner Planner
	pending state.Store
	logger  *logger.Logger

	mu            sync.Mutex
	wg            sync.WaitGroup
	closing       bool
	polling       bool
	webhookSecret string
	timeout       time.Duration
}

// NewBotAPI authorizes against Telegram.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	api.Debug = debug
	return api, nil
}

func NewTelegramBot(api botAPI, sender *Sender, deps Deps, l *logger.Logger) *TelegramBot {
	return &TelegramBot{
		api:     api,
		sender:  sender,
		store:   deps.Store,
		advisor: deps.Advisor,
		billing: deps.Billing,
		planner: deps.Planner,
		pending: deps.Pending,
		logger:  l.Named("telegram"),
		timeout: 90 * time.Second,
	}
}

var commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Set up your profile"},
	{Command: "menu", Description: "Open the main menu"},
	{Command: "tomorrow", Description: "Get tomorrow's plan"},
	{Command: "subscribe", Description: "Unlock premium features"},
	{Command: "help", Description: "What I can do"},
	{Command: "forget", Description: "Delete all your data"},
}

// SetCommands publishes the command menu shown by Telegram clients.
func (t *TelegramBot) SetCommands() error {
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// RegisterWebhook points Telegram at baseURL + "/webhook". Telegram sends secret back with every
// update and ServeHTTP rejects requests without it.
func (t *TelegramBot) RegisterWebhook(baseURL, secret string) error {
	if secret == "" {
		return errors.New("webhook secret is empty")
	}

	// WebhookConfig has no secret_token field, so the call is built by hand
	params := tgbotapi.Params{"url": baseURL + "/webhook"}
	params.AddNonEmpty("secret_token", secret)

	if _, err := t.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	t.mu.Lock()
	t.webhookSecret = secret
	t.mu.Unlock()

	t.logger.Infow("Telegram webhook registered", "url", baseURL+"/webhook")
	return nil
}

// StartPolling removes any webhook and starts receiving updates with long polling.
func (t *TelegramBot) StartPolling(ctx context.Context) error {
	t.logger.Infow("Removing any existing webhook")
	_, err := t.api.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := t.api.GetUpdatesChan(updateConfig)
	t.polling = true
	t.logger.Infow("Started receiving Telegram updates")

	go func() {
		for update := range updates {
			t.Dispatch(ctx, update)
		}
	}()
	return nil
}

// Dispatch handles one update in the background. Stop waits for it.
// Updates arriving after Stop has begun are dropped.
func (t *TelegramBot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		t.logger.Warnw("Dropping update during shutdown", "update_id", update.UpdateID)
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()
		t.HandleUpdate(ctx, update)
	}()
}

// HandleUpdate routes an update to the command, text or callback handler.
func (t *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorw("Recovered from panic while processing update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		user, err := t.store.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
		if err != nil {
			t.logger.Errorw("Failed to ensure user", "telegram_id", msg.From.ID, "error", err)
			t.reply(ctx, msg.Chat.ID, messages.GenericError)
			return
		}

		if msg.IsCommand() {
			t.logger.Infow("Handling command", "command", msg.Command(), "telegram_id", user.TelegramID)
			t.handleCommand(ctx, user, msg)
			return
		}
		if msg.Text != "" {
			t.handleText(ctx, user, msg)
		}

	case update.CallbackQuery != nil:
		t.handleCallback(ctx, update.CallbackQuery)
	}
}

// Stop stops polling and waits for in-flight updates.
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.mu.Lock()
	t.closing = true
	t.mu.Unlock()

	if t.polling {
		t.api.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// NotifySubscription tells the user their subscription changed.
func (t *TelegramBot) NotifySubscription(ctx context.Context, telegramID int64, status models.SubscriptionStatus) error {
	return t.sender.SendText(ctx, telegramID, messages.SubscriptionUpdate(status), nil)
}

package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"biteiq-bot/internal/db"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/state"
	"biteiq-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests map[string]tgbotapi.Params
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requests == nil {
		f.requests = map[string]tgbotapi.Params{}
	}
	f.requests[endpoint] = params
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

// texts returns the text of every message sent or edited, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

type fakeStore struct {
	mu           sync.Mutex
	users        map[int64]*models.User
	subscribed   map[int64]bool
	subs         map[int64]*models.Subscription
	reminders    map[int64]bool
	conversation map[int64][]models.ChatMessage
	touched      []int64
	failUpdate   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[int64]*models.User{},
		subscribed:   map[int64]bool{},
		subs:         map[int64]*models.Subscription{},
		reminders:    map[int64]bool{},
		conversation: map[int64][]models.ChatMessage{},
	}
}

func (f *fakeStore) EnsureUser(_ context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[telegramID]
	if !ok {
		u = &models.User{ID: telegramID * 10, TelegramID: telegramID, Username: username, FirstName: firstName}
		f.users[telegramID] = u
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUser(_ context.Context, telegramID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[telegramID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, telegramID int64, p models.Profile) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	u, ok := f.users[telegramID]
	if !ok {
		return nil, db.ErrNotFound
	}
	u.Profile = p
	cp := *u
	return &cp, nil
}

func (f *fakeStore) TouchUser(_ context.Context, telegramID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, telegramID)
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, telegramID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[telegramID]; !ok {
		return db.ErrNotFound
	}
	delete(f.users, telegramID)
	return nil
}

func (f *fakeStore) HasActiveSubscription(_ context.Context, telegramID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed[telegramID], nil
}

func (f *fakeStore) GetSubscriptionByUser(_ context.Context, userID int64) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) SetReminders(_ context.Context, userID int64, enabled bool, _ []models.ReminderSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[userID] = enabled
	return nil
}

func (f *fakeStore) RemindersEnabled(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reminders[userID], nil
}

func (f *fakeStore) AppendConversation(_ context.Context, userID int64, msgs ...models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversation[userID] = append(f.conversation[userID], msgs...)
	return nil
}

func (f *fakeStore) RecentConversation(_ context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.conversation[userID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type fakeAdvisor struct {
	recipeFor string
	history   []models.ChatMessage
}

func (f *fakeAdvisor) GenerateRecipe(_ context.Context, title string, _ *models.Profile) (string, error) {
	f.recipeFor = title
	return "Ingredients:\noats\nSteps:\ncook\nTip:\nenjoy", nil
}

func (f *fakeAdvisor) Answer(_ context.Context, _ *models.Profile, history []models.ChatMessage, _ string) (string, error) {
	f.history = history
	return "Eat more protein.", nil
}

type fakeBilling struct{ fail bool }

func (f *fakeBilling) CreateCheckoutSession(telegramID int64) (string, error) {
	if f.fail {
		return "", errors.New("stripe down")
	}
	return "https://checkout.example.com/s", nil
}

func (f *fakeBilling) CreatePortalSession(customerID string) (string, error) {
	return "https://portal.example.com/" + customerID, nil
}

type fakePlanner struct {
	offsets []int
}

func (f *fakePlanner) Generate(_ context.Context, _ *models.User, offset int) (models.MealPlan, error) {
	f.offsets = append(f.offsets, offset)
	return models.MealPlan{
		Meals:         []models.Meal{{Meal: "Breakfast", Title: "Oats", Calories: 300}},
		TotalCalories: 300,
	}, nil
}

type harness struct {
	bot     *TelegramBot
	api     *fakeAPI
	store   *fakeStore
	advisor *fakeAdvisor
	billing *fakeBilling
	planner *fakePlanner
	pending *state.MemoryStore
}

func newHarness() *harness {
	h := &harness{
		api:     &fakeAPI{},
		store:   newFakeStore(),
		advisor: &fakeAdvisor{},
		billing: &fakeBilling{},
		planner: &fakePlanner{},
		pending: state.NewMemoryStore(time.Minute),
	}
	l := logger.NewNop()
	h.bot = NewTelegramBot(h.api, NewSender(h.api, l), Deps{
		Store:   h.store,
		Advisor: h.advisor,
		Billing: h.billing,
		Planner: h.planner,
		Pending: h.pending,
	}, l)
	return h
}

func textUpdate(telegramID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: telegramID, FirstName: "Ann", UserName: "ann"},
		Chat:      &tgbotapi.Chat{ID: telegramID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(telegramID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: telegramID, FirstName: "Ann"},
			Message: &tgbotapi.Message{
				MessageID: 99,
				Chat:      &tgbotapi.Chat{ID: telegramID},
			},
			Data: data,
		},
	}
}

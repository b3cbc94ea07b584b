package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"biteiq-bot/internal/models"
	"biteiq-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeStore struct {
	users      []models.User
	subscribed map[int64]bool
	due        map[string][]models.DueReminder
}

func (f *fakeStore) ListProfiledUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeStore) HasActiveSubscription(_ context.Context, telegramID int64) (bool, error) {
	if telegramID == 13 {
		return false, errors.New("db hiccup")
	}
	return f.subscribed[telegramID], nil
}

func (f *fakeStore) DueReminders(_ context.Context, at string) ([]models.DueReminder, error) {
	return f.due[at], nil
}

type fakePlanner struct{ failFor int64 }

func (f *fakePlanner) Planned(_ context.Context, user *models.User, _ int) (models.MealPlan, error) {
	if user.TelegramID == f.failFor {
		return models.MealPlan{}, errors.New("api down")
	}
	return models.MealPlan{Meals: []models.Meal{{Meal: "Lunch", Title: "Soup", Calories: 400}}, TotalCalories: 400}, nil
}

type sentMessage struct {
	chatID int64
	text   string
	markup interface{}
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, markup interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID, text, markup})
	return nil
}

type fakeTipper struct{ calls int }

func (f *fakeTipper) QuickTip(context.Context) string {
	f.calls++
	return "Add lemon (zest) to water."
}

func newTestScheduler(t *testing.T, store *fakeStore, p *fakePlanner, sender *fakeSender) *Scheduler {
	t.Helper()
	s, err := New(store, p, sender, nil, time.UTC, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestJobsRegistered(t *testing.T) {
	s := newTestScheduler(t, &fakeStore{}, &fakePlanner{}, &fakeSender{})

	names := map[string]bool{}
	for _, j := range s.cron.Jobs() {
		names[j.Name()] = true
	}
	for _, want := range []string{"daily_plan", "reminder_08:00", "reminder_10:00", "reminder_13:00", "reminder_15:00", "reminder_18:00"} {
		if !names[want] {
			t.Errorf("job %s not registered (have %v)", want, names)
		}
	}
	if len(names) != 6 {
		t.Errorf("jobs = %d, want 6", len(names))
	}
}

func TestSendDailyPlansOnlyToSubscribers(t *testing.T) {
	store := &fakeStore{
		users: []models.User{
			{ID: 1, TelegramID: 11, Profile: models.Profile{Name: "Ann"}},
			{ID: 2, TelegramID: 12, Profile: models.Profile{Name: "Bob"}},
			{ID: 3, TelegramID: 13, Profile: models.Profile{Name: "Cy"}},
			{ID: 4, TelegramID: 14, Profile: models.Profile{Name: "Di"}},
		},
		subscribed: map[int64]bool{11: true, 14: true},
	}
	sender := &fakeSender{}
	s := newTestScheduler(t, store, &fakePlanner{failFor: 14}, sender)

	if n := s.SendDailyPlans(context.Background()); n != 1 {
		t.Fatalf("sent = %d, want 1", n)
	}
	if len(sender.sent) != 1 || sender.sent[0].chatID != 11 {
		t.Fatalf("sent = %+v", sender.sent)
	}
	msg := sender.sent[0]
	if !strings.Contains(msg.text, "Your Fresh Daily Plan") || !strings.Contains(msg.text, "*Ann*") {
		t.Errorf("text = %q", msg.text)
	}
	if _, ok := msg.markup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Errorf("markup = %#v", msg.markup)
	}
}

func TestSendReminders(t *testing.T) {
	due := func(tgID int64, typ models.ReminderType, name string) models.DueReminder {
		return models.DueReminder{Reminder: models.Reminder{Type: typ, ScheduleTime: "10:00", IsActive: true}, TelegramID: tgID, Name: name}
	}
	store := &fakeStore{
		subscribed: map[int64]bool{21: true, 23: true},
		due: map[string][]models.DueReminder{
			"10:00": {
				due(21, models.ReminderWater, "Ann"),
				due(21, models.ReminderWater, "Ann"),
				due(22, models.ReminderWater, "Bob"),
				due(23, models.ReminderExercise, ""),
			},
		},
	}
	sender := &fakeSender{}
	s := newTestScheduler(t, store, &fakePlanner{}, sender)

	if n := s.SendReminders(context.Background(), "10:00"); n != 2 {
		t.Fatalf("sent = %d, want 2", n)
	}
	if sender.sent[0].chatID != 21 || !strings.HasPrefix(sender.sent[0].text, "💧 Quick hydration check, Ann") {
		t.Errorf("first = %+v", sender.sent[0])
	}
	if sender.sent[1].chatID != 23 || !strings.Contains(sender.sent[1].text, "Hey there") {
		t.Errorf("second = %+v", sender.sent[1])
	}

	if n := s.SendReminders(context.Background(), "08:00"); n != 0 {
		t.Errorf("no due reminders sent %d", n)
	}
}

func TestCancelledContextStopsFanOut(t *testing.T) {
	store := &fakeStore{
		users:      []models.User{{TelegramID: 11, Profile: models.Profile{Name: "Ann"}}},
		subscribed: map[int64]bool{11: true},
	}
	sender := &fakeSender{}
	s := newTestScheduler(t, store, &fakePlanner{}, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if n := s.SendDailyPlans(ctx); n != 0 || len(sender.sent) != 0 {
		t.Fatalf("sent %d after cancel", n)
	}
}

func TestHydrationRemindersCarryTip(t *testing.T) {
	water := func(tgID int64) models.DueReminder {
		return models.DueReminder{Reminder: models.Reminder{Type: models.ReminderWater, ScheduleTime: "15:00", IsActive: true}, TelegramID: tgID, Name: "Ann"}
	}
	meal := models.DueReminder{Reminder: models.Reminder{Type: models.ReminderMeal, ScheduleTime: "18:00", IsActive: true}, TelegramID: 31, Name: "Ann"}
	store := &fakeStore{
		subscribed: map[int64]bool{31: true, 32: true},
		due: map[string][]models.DueReminder{
			"15:00": {water(31), water(32)},
			"18:00": {meal},
		},
	}
	sender := &fakeSender{}
	tipper := &fakeTipper{}
	s := newTestScheduler(t, store, &fakePlanner{}, sender)
	s.tipper = tipper

	if n := s.SendReminders(context.Background(), "15:00"); n != 2 {
		t.Fatalf("sent = %d, want 2", n)
	}
	for _, m := range sender.sent {
		if !strings.HasSuffix(m.text, "💡 Add lemon \\(zest\\) to water\\.") {
			t.Errorf("hydration text = %q", m.text)
		}
	}
	if tipper.calls != 1 {
		t.Errorf("tip fetched %d times, want 1", tipper.calls)
	}

	s.SendReminders(context.Background(), "18:00")
	if last := sender.sent[len(sender.sent)-1].text; strings.Contains(last, "💡") {
		t.Errorf("meal reminder got a tip: %q", last)
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"biteiq-bot/internal/models"
	"biteiq-bot/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// DailyPlanAt is the wall-clock time of the daily plan broadcast.
const DailyPlanAt = "06:00"

type Store interface {
	ListProfiledUsers(ctx context.Context) ([]models.User, error)
	HasActiveSubscription(ctx context.Context, telegramID int64) (bool, error)
	DueReminders(ctx context.Context, scheduleTime string) ([]models.DueReminder, error)
}

type Planner interface {
	Planned(ctx context.Context, user *models.User, offset int) (models.MealPlan, error)
}

// Tipper supplies the quick tip attached to hydration reminders.
type Tipper interface {
	QuickTip(ctx context.Context) string
}

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markup interface{}) error
}

type Scheduler struct {
	cron    gocron.Scheduler
	store   Store
	planner Planner
	sender  Messenger
	tipper  Tipper
	slots   []models.ReminderSlot
	logger  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the daily plan job and one job per reminder time, in loc. tipper may be nil.
func New(store Store, p Planner, sender Messenger, tipper Tipper, loc *time.Location, l *logger.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron,
		store:   store,
		planner: p,
		sender:  sender,
		tipper:  tipper,
		slots:   models.DefaultReminderSlots,
		logger:  l.Named("scheduler"),
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := s.addDaily("daily_plan", DailyPlanAt, func() { s.SendDailyPlans(s.ctx) }); err != nil {
		cancel()
		return nil, err
	}

	seen := map[string]bool{}
	for _, slot := range s.slots {
		if seen[slot.Time] {
			continue
		}
		seen[slot.Time] = true

		at := slot.Time
		if err := s.addDaily("reminder_"+at, at, func() { s.SendReminders(s.ctx, at) }); err != nil {
			cancel()
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) addDaily(name, at string, task func()) error {
	hm, err := time.Parse("15:04", at)
	if err != nil {
		return fmt.Errorf("invalid job time %q: %w", at, err)
	}

	_, err = s.cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hm.Hour()), uint(hm.Minute()), 0))),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}
	s.logger.Infow("Job registered", "job", name, "at", at)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("Reminder scheduler started", "jobs", len(s.cron.Jobs()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Infow("Reminder scheduler stopped")
	return nil
}

package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biteiq-bot/internal/db"
	"biteiq-bot/internal/models"
	"biteiq-bot/pkg/logger"
)

// RecentDays is how far back served meals are avoided in new plans.
const RecentDays = 7

const (
	Today    = 0
	Tomorrow = 1
)

type Store interface {
	GetPlan(ctx context.Context, userID int64, day time.Time) (*models.Plan, error)
	RecentMeals(ctx context.Context, userID int64, days int, today time.Time) ([]string, error)
	UpsertPlan(ctx context.Context, userID int64, day time.Time, plan models.MealPlan) error
	AddMeals(ctx context.Context, userID int64, titles []string, day time.Time) error
}

type Advisor interface {
	GeneratePlan(ctx context.Context, profile models.Profile, dayLabel string, avoid []string) (models.MealPlan, error)
}

// Service generates a plan, stores it for its date and records the meals it serves.
type Service struct {
	store   Store
	advisor Advisor
	loc     *time.Location
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(store Store, advisor Advisor, loc *time.Location, l *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   store,
		advisor: advisor,
		loc:     loc,
		logger:  l.Named("planner"),
		now:     time.Now,
	}
}

// Today returns the current date in the service's time zone.
func (s *Service) Today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Generate builds the plan for today (offset 0) or tomorrow (offset 1).
func (s *Service) Generate(ctx context.Context, user *models.User, offset int) (models.MealPlan, error) {
	if !user.HasProfile() {
		return models.MealPlan{}, errors.New("user has no profile")
	}

	today := s.Today()
	day := today.AddDate(0, 0, offset)
	label := "today"
	if offset == Tomorrow {
		label = "tomorrow"
	}

	recent, err := s.store.RecentMeals(ctx, user.ID, RecentDays, today)
	if err != nil {
		s.logger.Warnw("Failed to load recent meals", "user_id", user.ID, "error", err)
	}

	plan, err := s.advisor.GeneratePlan(ctx, user.Profile, label, recent)
	if err != nil {
		return models.MealPlan{}, fmt.Errorf("failed to generate plan: %w", err)
	}

	if err := s.store.UpsertPlan(ctx, user.ID, day, plan); err != nil {
		return models.MealPlan{}, err
	}
	if err := s.store.AddMeals(ctx, user.ID, plan.Titles(), day); err != nil {
		s.logger.Warnw("Failed to record meal history", "user_id", user.ID, "error", err)
	}

	s.logger.Infow("Plan generated", "user_id", user.ID, "day", day.Format("2006-01-02"), "meals", len(plan.Meals))
	return plan, nil
}

// Planned returns the plan already stored for the day, generating one when there is none.
// A plan fetched ahead with /tomorrow is the one delivered the next morning.
func (s *Service) Planned(ctx context.Context, user *models.User, offset int) (models.MealPlan, error) {
	day := s.Today().AddDate(0, 0, offset)

	stored, err := s.store.GetPlan(ctx, user.ID, day)
	switch {
	case err == nil && len(stored.Plan.Meals) > 0:
		return stored.Plan, nil
	case err != nil && !errors.Is(err, db.ErrNotFound):
		s.logger.Warnw("Failed to load stored plan", "user_id", user.ID, "error", err)
	}

	return s.Generate(ctx, user, offset)
}

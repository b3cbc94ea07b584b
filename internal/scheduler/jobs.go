package scheduler

import (
	"context"

	"biteiq-bot/internal/messages"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/planner"
)

// SendDailyPlans sends today's plan to every subscribed user with a profile. A plan already
// stored for today is reused, otherwise one is generated. Failures for one user are logged and skipped. It returns the number of plans sent.
func (s *Scheduler) SendDailyPlans(ctx context.Context) int {
	users, err := s.store.ListProfiledUsers(ctx)
	if err != nil {
		s.logger.Errorw("Failed to list users for daily plan", "error", err)
		return 0
	}

	sent := 0
	for i := range users {
		if ctx.Err() != nil {
			break
		}
		user := &users[i]

		active, err := s.store.HasActiveSubscription(ctx, user.TelegramID)
		if err != nil {
			s.logger.Errorw("Failed to check subscription", "telegram_id", user.TelegramID, "error", err)
			continue
		}
		if !active {
			continue
		}

		plan, err := s.planner.Planned(ctx, user, planner.Today)
		if err != nil {
			s.logger.Errorw("Failed to generate daily plan", "telegram_id", user.TelegramID, "error", err)
			continue
		}

		text := messages.FormatPlan(messages.PlanTitleDaily, user.DisplayName(), plan)
		if err := s.sender.SendText(ctx, user.TelegramID, text, messages.RecipeKeyboard(plan.Meals)); err != nil {
			s.logger.Errorw("Failed to send daily plan", "telegram_id", user.TelegramID, "error", err)
			continue
		}
		sent++
	}

	s.logger.Infow("Daily plans sent", "sent", sent, "candidates", len(users))
	return sent
}

// SendReminders sends the reminder due at "HH:MM" to every subscribed user with it active.
func (s *Scheduler) SendReminders(ctx context.Context, at string) int {
	due, err := s.store.DueReminders(ctx, at)
	if err != nil {
		s.logger.Errorw("Failed to load due reminders", "at", at, "error", err)
		return 0
	}

	sent := 0
	tip := ""
	notified := map[int64]bool{}
	for _, r := range due {
		if ctx.Err() != nil {
			break
		}
		if notified[r.TelegramID] {
			continue
		}
		notified[r.TelegramID] = true

		active, err := s.store.HasActiveSubscription(ctx, r.TelegramID)
		if err != nil {
			s.logger.Errorw("Failed to check subscription", "telegram_id", r.TelegramID, "error", err)
			continue
		}
		if !active {
			continue
		}

		text := messages.ReminderText(s.kindFor(at, r.Type), r.Name)
		if r.Type == models.ReminderWater && s.tipper != nil {
			// one tip per run, shared by every recipient
			if tip == "" {
				tip = s.tipper.QuickTip(ctx)
			}
			text = messages.WithTip(text, tip)
		}
		if err := s.sender.SendText(ctx, r.TelegramID, text, nil); err != nil {
			s.logger.Errorw("Failed to send reminder", "telegram_id", r.TelegramID, "at", at, "error", err)
			continue
		}
		sent++
	}

	s.logger.Infow("Reminders sent", "at", at, "sent", sent, "due", len(due))
	return sent
}

func (s *Scheduler) kindFor(at string, t models.ReminderType) string {
	for _, slot := range s.slots {
		if slot.Time == at && slot.Type == t {
			return slot.Kind
		}
	}
	if t == models.ReminderWater {
		return "hydration"
	}
	return ""
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biteiq-bot/internal/db"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/payment"

	"github.com/stripe/stripe-go/v72"
)

// handleSubscriptionChanged applies customer.subscription.updated and .deleted events.
// A subscription the database has not seen yet is created from its telegram_id metadata.
// The owner is told when the subscription is deleted or access is gained or lost.
func (h *Handler) handleSubscriptionChanged(ctx context.Context, sub *stripe.Subscription, deleted bool) error {
	if sub.ID == "" {
		return fmt.Errorf("%w: subscription event without id", errIgnored)
	}

	status := payment.NormalizeStatus(sub.Status)
	if deleted {
		status = models.SubscriptionCancelled
	}
	periodEnd := payment.PeriodEnd(sub.CurrentPeriodEnd)

	existing, err := h.store.GetSubscriptionByStripeID(ctx, sub.ID)
	if errors.Is(err, db.ErrNotFound) {
		return h.createFromMetadata(ctx, sub, status, periodEnd)
	}
	if err != nil {
		return err
	}

	err = h.store.UpdateSubscriptionStatus(ctx, sub.ID, status, periodEnd)
	if errors.Is(err, db.ErrNotFound) {
		return h.createFromMetadata(ctx, sub, status, periodEnd)
	}
	if err != nil {
		return err
	}
	h.logger.Infow("Subscription status updated", "subscription_id", sub.ID, "from", existing.Status, "to", status)

	updated := *existing
	updated.Status = status
	if periodEnd != nil {
		updated.CurrentPeriodEnd = periodEnd
	}
	now := time.Now()
	if deleted || existing.GrantsAccess(now) != updated.GrantsAccess(now) {
		h.notifyOwner(ctx, existing.UserID, sub.Metadata, status)
	}
	return nil
}

func (h *Handler) createFromMetadata(ctx context.Context, sub *stripe.Subscription, status models.SubscriptionStatus, periodEnd *time.Time) error {
	telegramID, idErr := telegramIDFromSessionOrMetadata("", sub.Metadata)
	if idErr != nil {
		return fmt.Errorf("%w: unknown subscription %s", errIgnored, sub.ID)
	}

	user, err := h.store.GetUser(ctx, telegramID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: unknown telegram user %d", errIgnored, telegramID)
	}
	if err != nil {
		return err
	}

	row := &models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: sub.ID,
		Status:               status,
		CurrentPeriodEnd:     periodEnd,
	}
	if sub.Customer != nil {
		row.StripeCustomerID = sub.Customer.ID
	}
	if err := h.store.UpsertSubscription(ctx, row); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return fmt.Errorf("%w: subscription %s belongs to another user", errIgnored, sub.ID)
		}
		return err
	}

	h.logger.Infow("Subscription created from update event", "subscription_id", sub.ID, "status", status)
	h.notify(ctx, telegramID, status)
	return nil
}

// notifyOwner resolves the Telegram id from metadata, falling back to the stored owner.
func (h *Handler) notifyOwner(ctx context.Context, userID int64, metadata map[string]string, status models.SubscriptionStatus) {
	if telegramID, err := telegramIDFromSessionOrMetadata("", metadata); err == nil {
		h.notify(ctx, telegramID, status)
		return
	}

	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.Warnw("Failed to resolve subscription owner", "user_id", userID, "error", err)
		return
	}
	h.notify(ctx, user.TelegramID, status)
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"biteiq-bot/internal/db"
	"biteiq-bot/internal/models"
	"biteiq-bot/internal/payment"

	"github.com/stripe/stripe-go/v72"
)

func (h *Handler) handleCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	if sess.Mode != "" && sess.Mode != stripe.CheckoutSessionModeSubscription {
		return fmt.Errorf("%w: checkout mode %s", errIgnored, sess.Mode)
	}

	telegramID, err := telegramIDFromSessionOrMetadata(sess.ClientReferenceID, sess.Metadata)
	if err != nil {
		return fmt.Errorf("%w: %v", errIgnored, err)
	}
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		return fmt.Errorf("%w: checkout session %s has no subscription", errIgnored, sess.ID)
	}

	user, err := h.store.GetUser(ctx, telegramID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: unknown telegram user %d", errIgnored, telegramID)
	}
	if err != nil {
		return err
	}

	subData, err := h.stripe.FetchSubscription(sess.Subscription.ID)
	if err != nil {
		return err
	}

	sub := &models.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: subData.ID,
		Status:               payment.NormalizeStatus(subData.Status),
		CurrentPeriodEnd:     payment.PeriodEnd(subData.CurrentPeriodEnd),
	}
	switch {
	case sess.Customer != nil && sess.Customer.ID != "":
		sub.StripeCustomerID = sess.Customer.ID
	case subData.Customer != nil:
		sub.StripeCustomerID = subData.Customer.ID
	}

	if err := h.store.UpsertSubscription(ctx, sub); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return fmt.Errorf("%w: subscription %s belongs to another user", errIgnored, sub.StripeSubscriptionID)
		}
		return err
	}

	h.logger.Infow("Subscription stored", "telegram_id", telegramID, "subscription_id", sub.StripeSubscriptionID, "status", sub.Status)
	h.notify(ctx, telegramID, sub.Status)
	return nil
}

func (h *Handler) notify(ctx context.Context, telegramID int64, status models.SubscriptionStatus) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifySubscription(ctx, telegramID, status); err != nil {
		h.logger.Warnw("Failed to notify user", "telegram_id", telegramID, "error", err)
	}
}

func telegramIDFromSessionOrMetadata(clientRef string, metadata map[string]string) (int64, error) {
	raw := clientRef
	if raw == "" && metadata != nil {
		raw = metadata[payment.MetadataTelegramID]
	}
	if raw == "" {
		return 0, errors.New("missing telegram id (client_reference_id or metadata.telegram_id)")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid telegram id %q", raw)
	}
	return id, nil
}

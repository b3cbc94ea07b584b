package payment

import (
	"strings"
	"time"

	"biteiq-bot/internal/models"

	"github.com/stripe/stripe-go/v72"
)

// NormalizeStatus maps a Stripe subscription status onto the statuses stored in the database.
func NormalizeStatus(s stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch strings.TrimSpace(string(s)) {
	case "active":
		return models.SubscriptionActive
	case "trialing":
		return models.SubscriptionTrialing
	case "canceled", "cancelled":
		return models.SubscriptionCancelled
	case "incomplete_expired":
		return models.SubscriptionExpired
	default:
		return models.SubscriptionInactive
	}
}

// PeriodEnd converts a Stripe unix timestamp; zero means unknown.
func PeriodEnd(unix int64) *time.Time {
	if unix <= 0 {
		return nil
	}
	t := time.Unix(unix, 0).UTC()
	return &t
}

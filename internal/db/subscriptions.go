package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biteiq-bot/internal/models"

	"github.com/jackc/pgx/v4"
)

const subscriptionColumns = `
        id, user_id, COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
        status, current_period_end, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var (
		s      models.Subscription
		status string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.StripeCustomerID, &s.StripeSubscriptionID,
		&status, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	s.Status = models.SubscriptionStatus(status)
	return &s, nil
}

// HasActiveSubscription is the premium gate: an active or trialing row whose period has not ended.
func (db *PostgresDB) HasActiveSubscription(ctx context.Context, telegramID int64) (bool, error) {
	var active bool
	if err := db.pool.QueryRow(ctx, `SELECT has_active_subscription($1)`, telegramID).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return active, nil
}

// UpsertSubscription inserts or refreshes the row for sub.StripeSubscriptionID.
// A Stripe subscription already owned by a different user yields ErrDuplicate.
func (db *PostgresDB) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.StripeSubscriptionID == "" {
		return errors.New("stripe subscription id is required")
	}
	if !sub.Status.Valid() {
		return fmt.Errorf("invalid subscription status %q", sub.Status)
	}

	query := `
        INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, status, current_period_end)
        VALUES ($1, NULLIF($2, ''), $3, $4, $5)
        ON CONFLICT (stripe_subscription_id) DO UPDATE
        SET stripe_customer_id = COALESCE(EXCLUDED.stripe_customer_id, subscriptions.stripe_customer_id),
            status = EXCLUDED.status,
            current_period_end = EXCLUDED.current_period_end,
            updated_at = NOW()
        WHERE subscriptions.user_id = EXCLUDED.user_id
        RETURNING id, created_at, updated_at
    `

	err := db.pool.QueryRow(ctx, query,
		sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID,
		string(sub.Status), sub.CurrentPeriodEnd,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// UpdateSubscriptionStatus changes the status of a known Stripe subscription.
// A nil periodEnd keeps the stored value.
func (db *PostgresDB) UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, periodEnd *time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("invalid subscription status %q", status)
	}

	query := `
        UPDATE subscriptions
        SET status = $2,
            current_period_end = COALESCE($3, current_period_end),
            updated_at = NOW()
        WHERE stripe_subscription_id = $1
    `

	tag, err := db.pool.Exec(ctx, query, stripeSubscriptionID, string(status), periodEnd)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSubscriptionByUser returns the most recently updated subscription of the user.
func (db *PostgresDB) GetSubscriptionByUser(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1
        ORDER BY updated_at DESC
        LIMIT 1`

	return scanSubscription(db.pool.QueryRow(ctx, query, userID))
}

func (db *PostgresDB) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE stripe_subscription_id = $1`

	return scanSubscription(db.pool.QueryRow(ctx, query, stripeSubscriptionID))
}

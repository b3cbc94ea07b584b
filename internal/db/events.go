package db

import (
	"context"
	"fmt"
)

// EventProcessed reports whether the billing event was already handled.
func (db *PostgresDB) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	query := `SELECT EXISTS (SELECT 1 FROM billing_events WHERE event_id = $1)`
	if err := db.pool.QueryRow(ctx, query, eventID).Scan(&seen); err != nil {
		return false, fmt.Errorf("failed to check billing event: %w", err)
	}
	return seen, nil
}

func (db *PostgresDB) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	query := `
        INSERT INTO billing_events (event_id, event_type)
        VALUES ($1, $2)
        ON CONFLICT (event_id) DO NOTHING
    `
	if _, err := db.pool.Exec(ctx, query, eventID, eventType); err != nil {
		return fmt.Errorf("failed to record billing event: %w", err)
	}
	return nil
}

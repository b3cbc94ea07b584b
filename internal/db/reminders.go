package db

import (
	"context"
	"fmt"

	"biteiq-bot/internal/models"

	"github.com/jackc/pgx/v4"
)

// SetReminders turns the given slots on for the user, or turns every reminder of the user off.
func (db *PostgresDB) SetReminders(ctx context.Context, userID int64, enabled bool, slots []models.ReminderSlot) error {
	if !enabled {
		_, err := db.pool.Exec(ctx, `UPDATE reminders SET is_active = FALSE WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to disable reminders: %w", err)
		}
		return nil
	}

	query := `
        INSERT INTO reminders (user_id, reminder_type, schedule_time, is_active)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (user_id, reminder_type, schedule_time) DO UPDATE
        SET is_active = TRUE
    `

	err := db.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		for _, slot := range slots {
			if _, err := tx.Exec(ctx, query, userID, string(slot.Type), slot.Time); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enable reminders: %w", err)
	}
	return nil
}

func (db *PostgresDB) RemindersEnabled(ctx context.Context, userID int64) (bool, error) {
	var enabled bool
	query := `SELECT EXISTS (SELECT 1 FROM reminders WHERE user_id = $1 AND is_active)`
	if err := db.pool.QueryRow(ctx, query, userID).Scan(&enabled); err != nil {
		return false, fmt.Errorf("failed to check reminders: %w", err)
	}
	return enabled, nil
}

// DueReminders lists active reminders scheduled at scheduleTime ("HH:MM") together with their users.
func (db *PostgresDB) DueReminders(ctx context.Context, scheduleTime string) ([]models.DueReminder, error) {
	query := `
        SELECT r.id, r.user_id, r.reminder_type, r.schedule_time, r.is_active, r.created_at,
               u.telegram_id, COALESCE(NULLIF(u.name, ''), u.first_name, '')
        FROM reminders r
        JOIN users u ON u.id = r.user_id
        WHERE r.is_active AND r.schedule_time = $1
        ORDER BY r.id
    `

	rows, err := db.pool.Query(ctx, query, scheduleTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []models.DueReminder
	for rows.Next() {
		var (
			d     models.DueReminder
			rtype string
		)
		if err := rows.Scan(
			&d.ID, &d.UserID, &rtype, &d.ScheduleTime, &d.IsActive, &d.CreatedAt,
			&d.TelegramID, &d.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		d.Type = models.ReminderType(rtype)
		due = append(due, d)
	}
	return due, rows.Err()
}

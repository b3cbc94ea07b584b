package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"biteiq-bot/internal/models"
)

// UpsertPlan stores the plan for (user, day), replacing any plan already stored for that day.
func (db *PostgresDB) UpsertPlan(ctx context.Context, userID int64, day time.Time, plan models.MealPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	query := `
        INSERT INTO plans (user_id, plan_date, plan_json)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, plan_date) DO UPDATE
        SET plan_json = EXCLUDED.plan_json, created_at = NOW()
    `

	if _, err := db.pool.Exec(ctx, query, userID, dateOnly(day), payload); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (db *PostgresDB) GetPlan(ctx context.Context, userID int64, day time.Time) (*models.Plan, error) {
	query := `
        SELECT user_id, plan_date, plan_json, created_at
        FROM plans
        WHERE user_id = $1 AND plan_date = $2
    `

	var (
		p   models.Plan
		raw []byte
	)
	err := db.pool.QueryRow(ctx, query, userID, dateOnly(day)).Scan(&p.UserID, &p.PlanDate, &raw, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &p.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &p, nil
}

// AddMeals records one meal-history row per non-empty title.
func (db *PostgresDB) AddMeals(ctx context.Context, userID int64, titles []string, day time.Time) error {
	clean := make([]string, 0, len(titles))
	for _, t := range titles {
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	query := `
        INSERT INTO meal_history (user_id, meal_title, seen_on)
        SELECT $1, title, $3
        FROM unnest($2::text[]) AS title
    `

	if _, err := db.pool.Exec(ctx, query, userID, clean, dateOnly(day)); err != nil {
		return fmt.Errorf("failed to add meal history: %w", err)
	}
	return nil
}

// RecentMeals returns the distinct titles seen in the last days before today (inclusive).
func (db *PostgresDB) RecentMeals(ctx context.Context, userID int64, days int, today time.Time) ([]string, error) {
	query := `
        SELECT DISTINCT meal_title
        FROM meal_history
        WHERE user_id = $1 AND seen_on >= $2
        ORDER BY meal_title
    `

	cutoff := dateOnly(today).AddDate(0, 0, -days)
	rows, err := db.pool.Query(ctx, query, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent meals: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

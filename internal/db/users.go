package db

import (
	"context"
	"fmt"

	"biteiq-bot/internal/models"

	"github.com/jackc/pgx/v4"
)

const userColumns = `
        id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
        COALESCE(name, ''), COALESCE(age, 0), COALESCE(gender, ''),
        COALESCE(height_cm, 0), COALESCE(weight_kg, 0), COALESCE(activity, ''),
        COALESCE(diet, ''), COALESCE(goal_kg, 0), created_at, last_active`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.Profile.Name, &u.Profile.Age, &u.Profile.Gender,
		&u.Profile.HeightCm, &u.Profile.WeightKg, &u.Profile.Activity,
		&u.Profile.Diet, &u.Profile.GoalKg, &u.CreatedAt, &u.LastActive,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// EnsureUser creates the user on first contact and refreshes names and last_active afterwards.
func (db *PostgresDB) EnsureUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	query := `
        INSERT INTO users (telegram_id, username, first_name)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
        ON CONFLICT (telegram_id) DO UPDATE
        SET username = COALESCE(EXCLUDED.username, users.username),
            first_name = COALESCE(EXCLUDED.first_name, users.first_name),
            last_active = NOW()
        RETURNING` + userColumns

	user, err := scanUser(db.pool.QueryRow(ctx, query, telegramID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return user, nil
}

func (db *PostgresDB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT` + userColumns + `
        FROM users
        WHERE telegram_id = $1`

	return scanUser(db.pool.QueryRow(ctx, query, telegramID))
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT` + userColumns + `
        FROM users
        WHERE id = $1`

	return scanUser(db.pool.QueryRow(ctx, query, id))
}

// ListProfiledUsers returns users that completed the profile form.
func (db *PostgresDB) ListProfiledUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT` + userColumns + `
        FROM users
        WHERE name IS NOT NULL AND name <> ''
        ORDER BY id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (db *PostgresDB) UpdateProfile(ctx context.Context, telegramID int64, p models.Profile) (*models.User, error) {
	query := `
        UPDATE users
        SET name = $2, age = $3, gender = $4, height_cm = $5, weight_kg = $6,
            activity = $7, diet = $8, goal_kg = $9, last_active = NOW()
        WHERE telegram_id = $1
        RETURNING` + userColumns

	return scanUser(db.pool.QueryRow(ctx, query,
		telegramID, p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg,
		p.Activity, p.Diet, p.GoalKg,
	))
}

// TouchUser sets last_active to now. Unknown users are a no-op.
func (db *PostgresDB) TouchUser(ctx context.Context, telegramID int64) error {
	_, err := db.pool.Exec(ctx, `SELECT update_user_last_active($1)`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// DeleteUser removes the user; foreign keys cascade to every child table.
func (db *PostgresDB) DeleteUser(ctx context.Context, telegramID int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package db

import (
	"context"
	"encoding/json"
	"fmt"

	"biteiq-bot/internal/models"
)

// AppendConversation adds messages to the user's conversation and keeps only the newest window.
func (db *PostgresDB) AppendConversation(ctx context.Context, userID int64, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > models.ConversationWindow {
		msgs = msgs[len(msgs)-models.ConversationWindow:]
	}

	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	query := `
        INSERT INTO conversation_history (user_id, messages)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE
        SET messages = (
                SELECT COALESCE(jsonb_agg(m.elem ORDER BY m.pos), '[]'::jsonb)
                FROM jsonb_array_elements(conversation_history.messages || EXCLUDED.messages)
                     WITH ORDINALITY AS m(elem, pos)
                WHERE m.pos > jsonb_array_length(conversation_history.messages || EXCLUDED.messages) - $3
            ),
            updated_at = NOW()
    `

	if _, err := db.pool.Exec(ctx, query, userID, payload, models.ConversationWindow); err != nil {
		return fmt.Errorf("failed to append conversation: %w", err)
	}
	return nil
}

// RecentConversation returns up to limit newest messages, oldest first.
func (db *PostgresDB) RecentConversation(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx, `SELECT messages FROM conversation_history WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var msgs []models.ChatMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/pkg/model"
)

// ChatRepository manages chat history records
type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// SaveExchange persists one user/assistant exchange as a single row
func (r *ChatRepository) SaveExchange(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	query := `
		INSERT INTO ai_chat_history (
			id, user_id, user_message, ai_response, topic, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		msg.ID,
		msg.UserID,
		msg.UserMessage,
		msg.AIResponse,
		msg.Topic,
	).Scan(&msg.CreatedAt)

	if err != nil {
		r.logger.Error("failed to save chat exchange",
			zap.Error(err),
			zap.String("user_id", msg.UserID),
		)
		return nil, fmt.Errorf("failed to save chat exchange: %w", err)
	}

	return msg, nil
}

// History retrieves a user's most recent exchanges in chronological
// order, oldest first, capped at limit rows.
func (r *ChatRepository) History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	query := `
		SELECT id, user_id, user_message, ai_response, topic, created_at
		FROM (
			SELECT id, user_id, user_message, ai_response, topic, created_at
			FROM ai_chat_history
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("failed to get chat history", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.UserMessage,
			&msg.AIResponse,
			&msg.Topic,
			&msg.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan chat message", zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating chat history", zap.Error(err))
		return nil, fmt.Errorf("error iterating chat history: %w", err)
	}

	return messages, nil
}

// Clear deletes a user's entire chat history and reports how many
// exchanges were removed
func (r *ChatRepository) Clear(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM ai_chat_history WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error("failed to clear chat history",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return 0, fmt.Errorf("failed to clear chat history: %w", err)
	}

	return result.RowsAffected(), nil
}

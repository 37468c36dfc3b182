package store

import (
	"context"

	"storefront-service/internal/models"
)

// CreateChatMessage appends a message to a shop conversation
func (s *Store) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (chat_id, sender, message, image_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id, created_at`

	return s.db.GetContext(ctx, msg, query,
		msg.ChatID, msg.Sender, msg.Message, msg.ImageURL)
}

// GetChatMessages retrieves a conversation in chronological order
func (s *Store) GetChatMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.SelectContext(ctx, &messages, `
		SELECT id, chat_id, sender,
		       COALESCE(message, '') AS message,
		       COALESCE(image_url, '') AS image_url,
		       created_at
		FROM chat_messages WHERE chat_id = $1 ORDER BY created_at`, chatID)
	return messages, err
}

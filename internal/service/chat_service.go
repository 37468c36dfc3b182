package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// DefaultChatID is the single shop conversation every customer writes
// into.
const DefaultChatID = "SHOP_CHAT"

// ChatService appends and lists shop conversation messages.
type ChatService struct {
	chats  ChatStore
	logger *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(chats ChatStore) *ChatService {
	return &ChatService{
		chats:  chats,
		logger: util.GetLogger(),
	}
}

// SendText appends a text message from the given sender.
func (s *ChatService) SendText(ctx context.Context, chatID, sender, text string) (*models.ChatMessage, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	msg := &models.ChatMessage{
		ChatID:  chatOrDefault(chatID),
		Sender:  sender,
		Message: text,
	}
	if err := s.chats.CreateChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// SendImage appends an image message referencing an already-stored
// image URL.
func (s *ChatService) SendImage(ctx context.Context, chatID, sender, imageURL string) (*models.ChatMessage, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("%w: empty image url", ErrInvalidInput)
	}

	msg := &models.ChatMessage{
		ChatID:   chatOrDefault(chatID),
		Sender:   sender,
		ImageURL: imageURL,
	}
	if err := s.chats.CreateChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send image message: %w", err)
	}
	return msg, nil
}

// GetMessages returns a conversation in chronological order.
func (s *ChatService) GetMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	messages, err := s.chats.GetChatMessages(ctx, chatOrDefault(chatID))
	if err != nil {
		s.logger.Error("Failed to fetch chat messages", zap.Error(err))
		return nil, err
	}
	return messages, nil
}

func chatOrDefault(chatID string) string {
	if chatID == "" {
		return DefaultChatID
	}
	return chatID
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// ChatMessageRepository persists chat messages. Readers operate on sets of
// swap request ids so the service can merge a user pair's history.
type ChatMessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByRequests(ctx context.Context, requestIDs []uint) ([]models.ChatMessage, error)
	MarkReadInRequests(ctx context.Context, requestIDs []uint, recipientID uint) error
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	UnreadCountInRequests(ctx context.Context, requestIDs []uint, recipientID uint) (int64, error)
}

type chatMessageRepository struct {
	db *gorm.DB
}

// NewChatMessageRepository constructs a chat message repository backed by GORM.
func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("FromUser").First(message, message.ID).Error
}

func (r *chatMessageRepository) ListByRequests(ctx context.Context, requestIDs []uint) ([]models.ChatMessage, error) {
	if len(requestIDs) == 0 {
		return []models.ChatMessage{}, nil
	}

	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("swap_request_id IN ?", requestIDs).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatMessageRepository) MarkReadInRequests(ctx context.Context, requestIDs []uint, recipientID uint) error {
	if len(requestIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("swap_request_id IN ? AND to_user_id = ? AND is_read = ?", requestIDs, recipientID, false).
		Update("is_read", true).Error
}

func (r *chatMessageRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("to_user_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *chatMessageRepository) UnreadCountInRequests(ctx context.Context, requestIDs []uint, recipientID uint) (int64, error) {
	if len(requestIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("swap_request_id IN ? AND to_user_id = ? AND is_read = ?", requestIDs, recipientID, false).
		Count(&count).Error
	return count, err
}

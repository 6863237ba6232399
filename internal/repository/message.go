package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func betweenUsers(db *gorm.DB, a, b uuid.UUID) *gorm.DB {
	return db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
}

// Thread returns every message exchanged between a and b, oldest first.
func (r *MessageRepository) Thread(ctx context.Context, a, b uuid.UUID) ([]*models.Message, error) {
	messages := make([]*models.Message, 0)
	if err := betweenUsers(r.db.WithContext(ctx), a, b).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// MarkRead flips every unread message from sender to receiver. It never
// clears the flag.
func (r *MessageRepository) MarkRead(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PeerIDs returns everyone userID has sent to or received from.
func (r *MessageRepository) PeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var received, sent []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ?", userID).
		Distinct().
		Pluck("sender_id", &received).Error; err != nil {
		return nil, fmt.Errorf("failed to get message senders: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ?", userID).
		Distinct().
		Pluck("receiver_id", &sent).Error; err != nil {
		return nil, fmt.Errorf("failed to get message receivers: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(received)+len(sent))
	peers := make([]uuid.UUID, 0, len(received)+len(sent))
	for _, id := range append(received, sent...) {
		if id == userID || seen[id] {
			continue
		}
		seen[id] = true
		peers = append(peers, id)
	}
	return peers, nil
}

// UnreadCounts returns the number of unread messages sent to userID, per sender.
func (r *MessageRepository) UnreadCounts(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		SenderID uuid.UUID
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS total").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Total
	}
	return counts, nil
}

func (r *MessageRepository) LastBetween(ctx context.Context, a, b uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := betweenUsers(r.db.WithContext(ctx), a, b).
		Order("created_at DESC").
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last message: %w", err)
	}
	return &message, nil
}

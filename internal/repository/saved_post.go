package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SavedPostRepository struct {
	db *gorm.DB
}

func NewSavedPostRepository(db *gorm.DB) *SavedPostRepository {
	return &SavedPostRepository{db: db}
}

// Toggle unsaves the post when saved, otherwise saves it. Returns the resulting state.
func (r *SavedPostRepository) Toggle(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.SavedPost{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			saved = false
			return nil
		}

		edge := &models.SavedPost{PostID: postID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error; err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved post: %w", err)
	}
	return saved, nil
}

// SavedSet reports which of postIDs userID has saved.
func (r *SavedPostRepository) SavedSet(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get saved posts: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListPostIDs returns the ids userID saved, most recently saved first.
func (r *SavedPostRepository) ListPostIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list saved posts: %w", err)
	}
	return ids, nil
}

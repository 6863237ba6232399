package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReelRepository struct {
	db *gorm.DB
}

func NewReelRepository(db *gorm.DB) *ReelRepository {
	return &ReelRepository{db: db}
}

func (r *ReelRepository) Create(ctx context.Context, reel *models.Reel) error {
	if err := r.db.WithContext(ctx).Create(reel).Error; err != nil {
		return fmt.Errorf("failed to create reel: %w", err)
	}
	return nil
}

func (r *ReelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reel, error) {
	var reel models.Reel
	if err := r.db.WithContext(ctx).First(&reel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reel: %w", err)
	}
	return &reel, nil
}

func (r *ReelRepository) List(ctx context.Context, limit int) ([]*models.Reel, error) {
	reels := make([]*models.Reel, 0)
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&reels).Error; err != nil {
		return nil, fmt.Errorf("failed to get reels: %w", err)
	}
	return reels, nil
}

// ToggleLike works like the follow toggle, moving likesCount only when an
// edge was actually removed or inserted.
func (r *ReelRepository) ToggleLike(ctx context.Context, reelID, userID uuid.UUID) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("reel_id = ? AND user_id = ?", reelID, userID).Delete(&models.ReelLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			liked = false
			return moveLikesCount(tx, reelID, -1)
		}

		liked = true
		like := &models.ReelLike{ReelID: reelID, UserID: userID}
		result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return moveLikesCount(tx, reelID, 1)
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle reel like: %w", err)
	}
	return liked, nil
}

func moveLikesCount(tx *gorm.DB, reelID uuid.UUID, delta int64) error {
	return tx.Model(&models.Reel{}).
		Where("id = ?", reelID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

// LikedSet reports which of reelIDs userID has liked.
func (r *ReelRepository) LikedSet(ctx context.Context, userID uuid.UUID, reelIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(reelIDs))
	if len(reelIDs) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.ReelLike{}).
		Where("user_id = ? AND reel_id IN ?", userID, reelIDs).
		Pluck("reel_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get reel likes: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *ReelRepository) RecountLikes(ctx context.Context, reelID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.Reel{}).
		Where("id = ?", reelID).
		UpdateColumn("likes_count", gorm.Expr("(SELECT COUNT(*) FROM reel_likes WHERE reel_likes.reel_id = reels.id)")).Error; err != nil {
		return fmt.Errorf("failed to recount reel likes: %w", err)
	}
	return nil
}

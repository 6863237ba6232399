package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
)

type StoryRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// ListActive returns stories by userIDs that have not expired at now, newest first.
func (r *StoryRepository) ListActive(ctx context.Context, userIDs []uuid.UUID, now time.Time, limit int) ([]*models.Story, error) {
	stories := make([]*models.Story, 0)
	if len(userIDs) == 0 {
		return stories, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id IN ? AND expires_at > ?", userIDs, now.UTC()).
		Order("created_at DESC").
		Limit(limit).
		Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to get stories: %w", err)
	}
	return stories, nil
}

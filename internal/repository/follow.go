package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Toggle removes the edge when present, otherwise creates it. Both users'
// counters move only when a row was actually deleted or inserted. The
// returned bool is the resulting follow state.
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := deleteFollow(tx, followerID, followingID)
		if err != nil {
			return err
		}
		if removed {
			following = false
			return nil
		}

		// a conflicting concurrent insert already moved the counters
		if _, err := insertFollow(tx, followerID, followingID); err != nil {
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle follow: %w", err)
	}
	return following, nil
}

// Remove deletes the edge if present and reports whether a row was removed.
func (r *FollowRepository) Remove(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = deleteFollow(tx, followerID, followingID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove follow: %w", err)
	}
	return removed, nil
}

func deleteFollow(tx *gorm.DB, followerID, followingID uuid.UUID) (bool, error) {
	result := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := moveFollowCounters(tx, followerID, followingID, -1); err != nil {
		return false, err
	}
	return true, nil
}

func insertFollow(tx *gorm.DB, followerID, followingID uuid.UUID) (bool, error) {
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := moveFollowCounters(tx, followerID, followingID, 1); err != nil {
		return false, err
	}
	return true, nil
}

func moveFollowCounters(tx *gorm.DB, followerID, followingID uuid.UUID, delta int64) error {
	if err := updateUserCounter(tx, followerID, "following_count", delta); err != nil {
		return err
	}
	return updateUserCounter(tx, followingID, "followers_count", delta)
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// FollowingIDs returns the ids userID follows.
func (r *FollowRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get following ids: %w", err)
	}
	return ids, nil
}

// FollowerIDs returns the ids following userID.
func (r *FollowRepository) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}
	return ids, nil
}

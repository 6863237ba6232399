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

// maxReactionAttempts bounds the retries when a concurrent toggle changes the
// edge between the conditional writes.
const maxReactionAttempts = 3

var errReactionContention = errors.New("reaction changed concurrently")

// ReactionChange describes one toggle. Previous and Current are nil when no
// reaction existed before or after.
type ReactionChange struct {
	Previous *string
	Current  *string
}

type ReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Toggle applies kind for userID on postID:
//
//	none      -> kind  insert edge, +1 kind
//	kind      -> none  delete edge, -1 kind
//	other     -> kind  update edge, -1 other, +1 kind
//
// Every step is a conditional write; counters only move when it hit a row.
func (r *ReactionRepository) Toggle(ctx context.Context, postID, userID uuid.UUID, kind string) (*ReactionChange, error) {
	var change *ReactionChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < maxReactionAttempts; attempt++ {
			c, err := toggleReaction(tx, postID, userID, kind)
			if errors.Is(err, errReactionContention) {
				continue
			}
			if err != nil {
				return err
			}
			change = c
			return nil
		}
		return errReactionContention
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle reaction: %w", err)
	}
	return change, nil
}

func toggleReaction(tx *gorm.DB, postID, userID uuid.UUID, kind string) (*ReactionChange, error) {
	result := tx.Where("post_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, kind).
		Delete(&models.Reaction{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		if err := moveReactionCounter(tx, postID, kind, -1); err != nil {
			return nil, err
		}
		return &ReactionChange{Previous: &kind}, nil
	}

	var existing models.Reaction
	err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	switch {
	case err == nil:
		previous := existing.ReactionType
		result := tx.Model(&models.Reaction{}).
			Where("id = ? AND reaction_type = ?", existing.ID, previous).
			Update("reaction_type", kind)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, errReactionContention
		}
		if err := moveReactionCounter(tx, postID, previous, -1); err != nil {
			return nil, err
		}
		if err := moveReactionCounter(tx, postID, kind, 1); err != nil {
			return nil, err
		}
		return &ReactionChange{Previous: &previous, Current: &kind}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := &models.Reaction{PostID: postID, UserID: userID, ReactionType: kind}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(reaction)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, errReactionContention
		}
		if err := moveReactionCounter(tx, postID, kind, 1); err != nil {
			return nil, err
		}
		return &ReactionChange{Current: &kind}, nil

	default:
		return nil, err
	}
}

func moveReactionCounter(tx *gorm.DB, postID uuid.UUID, kind string, delta int64) error {
	if !models.IsValidReaction(kind) {
		// unknown kinds have no counter column
		return nil
	}
	column := models.ReactionColumn(kind)
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// UserReactions returns userID's reaction kind per post for postIDs.
func (r *ReactionRepository) UserReactions(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	result := make(map[uuid.UUID]string, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var reactions []models.Reaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&reactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get user reactions: %w", err)
	}
	for _, reaction := range reactions {
		result[reaction.PostID] = reaction.ReactionType
	}
	return result, nil
}

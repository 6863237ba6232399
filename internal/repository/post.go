package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts the post and bumps the author's postsCount in one transaction.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return updateUserCounter(tx, post.AuthorID, "posts_count", 1)
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// GetByIDs batch-loads posts keyed by id.
func (r *PostRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Post, error) {
	result := make(map[uuid.UUID]*models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by IDs: %w", err)
	}
	for _, post := range posts {
		result[post.ID] = post
	}
	return result, nil
}

// Delete removes the post with its comments, reactions and saved edges, and
// decrements the author's postsCount when the post row was actually removed.
func (r *PostRepository) Delete(ctx context.Context, post *models.Post) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", post.ID).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		return updateUserCounter(tx, post.AuthorID, "posts_count", -1)
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return removed, nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by author: %w", err)
	}
	return posts, nil
}

// ListByAuthors returns one page of posts written by any of authorIDs, newest first.
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, offset, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	if len(authorIDs) == 0 {
		return posts, nil
	}
	if err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by authors: %w", err)
	}
	return posts, nil
}

// ListExcludingAuthors returns the newest posts written by anyone outside excluded.
func (r *PostRepository) ListExcludingAuthors(ctx context.Context, excluded []uuid.UUID, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	query := r.db.WithContext(ctx)
	if len(excluded) > 0 {
		query = query.Where("author_id NOT IN ?", excluded)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get explore posts: %w", err)
	}
	return posts, nil
}

// RecountCounters recomputes the reaction and comment counters of postID from
// the edge tables in a single UPDATE, so no concurrent delta falls between
// the count and the write.
func (r *PostRepository) RecountCounters(ctx context.Context, postID uuid.UUID) error {
	columns := map[string]interface{}{
		"comments_count": gorm.Expr("(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)"),
	}
	for _, kind := range models.ReactionKinds {
		columns[models.ReactionColumn(kind)] = gorm.Expr(
			"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = ?)", kind)
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumns(columns).Error; err != nil {
		return fmt.Errorf("failed to recount post counters: %w", err)
	}
	return nil
}

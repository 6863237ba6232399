package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
)

// Reconciler recomputes denormalized counters from the edge tables. The API
// keeps counters in step transactionally; this repairs drift left by manual
// writes or partial restores.
type Reconciler struct {
	postRepo  *repository.PostRepository
	userRepo  *repository.UserRepository
	reelRepo  *repository.ReelRepository
	following *FollowingSet
	logger    *logger.Logger
}

func NewReconciler(db *repository.Database, following *FollowingSet, logger *logger.Logger) *Reconciler {
	return &Reconciler{
		postRepo:  repository.NewPostRepository(db.DB),
		userRepo:  repository.NewUserRepository(db.DB),
		reelRepo:  repository.NewReelRepository(db.DB),
		following: following,
		logger:    logger,
	}
}

// RecountPost resets the reaction and comment counters of postID. A deleted
// post is a no-op.
func (r *Reconciler) RecountPost(ctx context.Context, postID uuid.UUID) error {
	before, err := r.postRepo.GetByID(ctx, postID)
	if err != nil || before == nil {
		return err
	}
	if err := r.postRepo.RecountCounters(ctx, postID); err != nil {
		return err
	}
	after, err := r.postRepo.GetByID(ctx, postID)
	if err != nil || after == nil {
		return err
	}

	if after.Reactions != before.Reactions || after.CommentsCount != before.CommentsCount {
		r.logger.WithFields(map[string]interface{}{
			"post_id":  postID,
			"comments": after.CommentsCount,
		}).Info("Post counters reconciled")
	}
	return nil
}

// RecountUser resets the follower, following and post counters of userID.
func (r *Reconciler) RecountUser(ctx context.Context, userID uuid.UUID) error {
	before, err := r.userRepo.GetByID(ctx, userID)
	if err != nil || before == nil {
		return err
	}
	if err := r.userRepo.RecountCounters(ctx, userID); err != nil {
		return err
	}
	after, err := r.userRepo.GetByID(ctx, userID)
	if err != nil || after == nil {
		return err
	}

	if after.FollowersCount != before.FollowersCount || after.FollowingCount != before.FollowingCount || after.PostsCount != before.PostsCount {
		r.logger.WithFields(map[string]interface{}{
			"user_id":   userID,
			"followers": after.FollowersCount,
			"following": after.FollowingCount,
			"posts":     after.PostsCount,
		}).Info("User counters reconciled")
	}
	return nil
}

func (r *Reconciler) RecountReel(ctx context.Context, reelID uuid.UUID) error {
	before, err := r.reelRepo.GetByID(ctx, reelID)
	if err != nil || before == nil {
		return err
	}
	if err := r.reelRepo.RecountLikes(ctx, reelID); err != nil {
		return err
	}
	after, err := r.reelRepo.GetByID(ctx, reelID)
	if err != nil || after == nil {
		return err
	}

	if after.LikesCount != before.LikesCount {
		r.logger.WithFields(map[string]interface{}{
			"reel_id": reelID,
			"likes":   after.LikesCount,
		}).Info("Reel counters reconciled")
	}
	return nil
}

// InvalidateFollowing drops the cached following set of userID.
func (r *Reconciler) InvalidateFollowing(ctx context.Context, userID uuid.UUID) {
	r.following.Invalidate(ctx, userID)
}

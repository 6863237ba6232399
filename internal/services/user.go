package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

const searchLimit = 20

type UserService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	following  *FollowingSet
	notifier   *NotificationService
	producer   queue.Publisher
	logger     *logger.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	following *FollowingSet,
	notifier *NotificationService,
	producer queue.Publisher,
	logger *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		following:  following,
		notifier:   notifier,
		producer:   producer,
		logger:     logger,
	}
}

// UpdateProfileRequest leaves absent fields untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" binding:"omitempty,min=1,max=50"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	Avatar      *string `json:"avatar"`
	Website     *string `json:"website"`
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	return s.userRepo.Search(ctx, query, searchLimit)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	fields := make(map[string]interface{})
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if len(fields) > 0 {
		publish(ctx, s.producer, s.logger, userID.String(), queue.EventUserUpdated, queue.UserEventData{
			UserID:   userID.String(),
			Username: user.Username,
		})
		s.logger.WithField("user_id", userID).Info("Profile updated")
	}
	return user, nil
}

// ToggleFollow follows targetID, or unfollows when actor already follows it.
func (s *UserService) ToggleFollow(ctx context.Context, actor *models.User, targetID string) (bool, error) {
	if targetID == actor.ID.String() {
		return false, ErrSelfFollow
	}
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target.ID == actor.ID {
		return false, ErrSelfFollow
	}

	following, err := s.followRepo.Toggle(ctx, actor.ID, target.ID)
	if err != nil {
		return false, err
	}
	s.afterFollowChange(ctx, actor, target, following)

	return following, nil
}

// Unfollow removes the edge if present. Calling it again is a no-op.
func (s *UserService) Unfollow(ctx context.Context, actor *models.User, targetID string) error {
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	removed, err := s.followRepo.Remove(ctx, actor.ID, target.ID)
	if err != nil {
		return err
	}
	if removed {
		s.afterFollowChange(ctx, actor, target, false)
	}
	return nil
}

func (s *UserService) afterFollowChange(ctx context.Context, actor, target *models.User, following bool) {
	s.following.Invalidate(ctx, actor.ID)

	data := queue.FollowEventData{
		FollowerID:  actor.ID.String(),
		FollowingID: target.ID.String(),
	}
	eventType := queue.EventFollowDeleted
	if following {
		eventType = queue.EventFollowCreated
		s.notifier.Notify(ctx, target.ID, actor, models.NotificationFollow, nil,
			fmt.Sprintf("%s started following you", actor.DisplayName))
	}
	publish(ctx, s.producer, s.logger, actor.ID.String(), eventType, data)

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  actor.ID,
		"following_id": target.ID,
		"following":    following,
	}).Info("Follow state changed")
}

func (s *UserService) Followers(ctx context.Context, userID string) ([]*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return []*models.User{}, nil
	}
	ids, err := s.followRepo.FollowerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.ListByIDs(ctx, ids)
}

func (s *UserService) Following(ctx context.Context, userID string) ([]*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return []*models.User{}, nil
	}
	ids, err := s.followRepo.FollowingIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.ListByIDs(ctx, ids)
}

func (s *UserService) IsFollowing(ctx context.Context, actorID uuid.UUID, targetID string) (bool, error) {
	id, err := uuid.Parse(targetID)
	if err != nil {
		return false, nil
	}
	return s.followRepo.Exists(ctx, actorID, id)
}

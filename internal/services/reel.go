package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

const reelListLimit = 50

type ReelService struct {
	reelRepo *repository.ReelRepository
	userRepo *repository.UserRepository
	producer queue.Publisher
	logger   *logger.Logger
}

func NewReelService(reelRepo *repository.ReelRepository, userRepo *repository.UserRepository, producer queue.Publisher, logger *logger.Logger) *ReelService {
	return &ReelService{
		reelRepo: reelRepo,
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type CreateReelRequest struct {
	VideoURL string  `json:"videoUrl" binding:"required"`
	Caption  *string `json:"caption"`
	Music    *string `json:"music"`
}

func (s *ReelService) CreateReel(ctx context.Context, author *models.User, req *CreateReelRequest) (*models.Reel, error) {
	reel := &models.Reel{
		AuthorID: author.ID,
		VideoURL: req.VideoURL,
		Caption:  req.Caption,
		Music:    req.Music,
	}
	if err := s.reelRepo.Create(ctx, reel); err != nil {
		return nil, err
	}
	reel.Author = author

	publish(ctx, s.producer, s.logger, reel.ID.String(), queue.EventReelCreated, queue.ReelEventData{
		ReelID: reel.ID.String(),
		UserID: author.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"reel_id": reel.ID,
		"user_id": author.ID,
	}).Info("Reel created")
	return reel, nil
}

// ListReels returns the newest reels with authors and the viewer's likes.
func (s *ReelService) ListReels(ctx context.Context, viewerID uuid.UUID) ([]*models.Reel, error) {
	reels, err := s.reelRepo.List(ctx, reelListLimit)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uuid.UUID, 0, len(reels))
	reelIDs := make([]uuid.UUID, 0, len(reels))
	for _, reel := range reels {
		authorIDs = append(authorIDs, reel.AuthorID)
		reelIDs = append(reelIDs, reel.ID)
	}

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.reelRepo.LikedSet(ctx, viewerID, reelIDs)
	if err != nil {
		return nil, err
	}
	for _, reel := range reels {
		reel.Author = authors[reel.AuthorID]
		reel.IsLiked = liked[reel.ID]
	}
	return reels, nil
}

func (s *ReelService) ToggleLike(ctx context.Context, userID uuid.UUID, reelID string) (bool, error) {
	id, err := parseID(reelID, ErrReelNotFound)
	if err != nil {
		return false, err
	}
	reel, err := s.reelRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if reel == nil {
		return false, ErrReelNotFound
	}

	liked, err := s.reelRepo.ToggleLike(ctx, reel.ID, userID)
	if err != nil {
		return false, err
	}

	eventType := queue.EventReelUnliked
	if liked {
		eventType = queue.EventReelLiked
	}
	publish(ctx, s.producer, s.logger, reel.ID.String(), eventType, queue.ReelEventData{
		ReelID: reel.ID.String(),
		UserID: userID.String(),
	})
	return liked, nil
}

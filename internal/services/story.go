package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
)

const storyListLimit = 100

type StoryService struct {
	storyRepo *repository.StoryRepository
	userRepo  *repository.UserRepository
	following *FollowingSet
	logger    *logger.Logger
	now       func() time.Time
}

func NewStoryService(storyRepo *repository.StoryRepository, userRepo *repository.UserRepository, following *FollowingSet, logger *logger.Logger) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		userRepo:  userRepo,
		following: following,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateStoryRequest struct {
	Text     *string `json:"text"`
	ImageURL *string `json:"imageUrl"`
	VideoURL *string `json:"videoUrl"`
}

func (s *StoryService) CreateStory(ctx context.Context, author *models.User, req *CreateStoryRequest) (*models.Story, error) {
	createdAt := s.now().UTC()
	story := &models.Story{
		UserID:    author.ID,
		Text:      req.Text,
		ImageURL:  req.ImageURL,
		VideoURL:  req.VideoURL,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(models.StoryLifetime),
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	story.User = author

	s.logger.WithFields(map[string]interface{}{
		"story_id": story.ID,
		"user_id":  author.ID,
	}).Info("Story created")
	return story, nil
}

// ListStories returns unexpired stories by the viewer and everyone they follow.
func (s *StoryService) ListStories(ctx context.Context, viewerID uuid.UUID) ([]*models.Story, error) {
	audience, err := s.following.Audience(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	stories, err := s.storyRepo.ListActive(ctx, audience, s.now(), storyListLimit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(stories))
	for _, story := range stories {
		userIDs = append(userIDs, story.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, story := range stories {
		story.User = users[story.UserID]
	}
	return stories, nil
}

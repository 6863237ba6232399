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

const commentListLimit = 100

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	userRepo    *repository.UserRepository
	notifier    *NotificationService
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
	producer queue.Publisher,
	logger *logger.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		producer:    producer,
		logger:      logger,
	}
}

type CreateCommentRequest struct {
	Text *string `json:"text" binding:"required"`
}

func (s *CommentService) CreateComment(ctx context.Context, author *models.User, postID string, req *CreateCommentRequest) (*models.Comment, error) {
	id, err := parseID(postID, ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.CommentsEnabled {
		return nil, ErrCommentsDisabled
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     deref(req.Text),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = author

	s.notifier.Notify(ctx, post.AuthorID, author, models.NotificationComment, &post.ID,
		fmt.Sprintf("%s commented on your post", author.DisplayName))
	s.notifier.NotifyMentions(ctx, author, post.ID, comment.Text)

	publish(ctx, s.producer, s.logger, post.ID.String(), queue.EventCommentCreated, queue.CommentEventData{
		CommentID: comment.ID.String(),
		PostID:    post.ID.String(),
		AuthorID:  author.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    post.ID,
		"user_id":    author.ID,
	}).Info("Comment created")
	return comment, nil
}

// ListComments returns the newest comments of the post with their authors.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return []*models.Comment{}, nil
	}

	comments, err := s.commentRepo.ListByPost(ctx, id, commentListLimit)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.AuthorID)
	}
	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		comment.Author = authors[comment.AuthorID]
	}
	return comments, nil
}

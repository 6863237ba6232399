package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/config"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

const (
	userPostsLimit  = 100
	savedPostsLimit = 100
)

type PostService struct {
	postRepo     *repository.PostRepository
	reactionRepo *repository.ReactionRepository
	savedRepo    *repository.SavedPostRepository
	userRepo     *repository.UserRepository
	following    *FollowingSet
	notifier     *NotificationService
	producer     queue.Publisher
	config       *config.FeedConfig
	logger       *logger.Logger
}

func NewPostService(
	postRepo *repository.PostRepository,
	reactionRepo *repository.ReactionRepository,
	savedRepo *repository.SavedPostRepository,
	userRepo *repository.UserRepository,
	following *FollowingSet,
	notifier *NotificationService,
	producer queue.Publisher,
	config *config.FeedConfig,
	logger *logger.Logger,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		savedRepo:    savedRepo,
		userRepo:     userRepo,
		following:    following,
		notifier:     notifier,
		producer:     producer,
		config:       config,
		logger:       logger,
	}
}

// CreatePostRequest requires the text field to be present; it may be empty
// for image-only posts.
type CreatePostRequest struct {
	Text            *string `json:"text" binding:"required"`
	ImageURL        *string `json:"imageUrl"`
	Mood            *string `json:"mood"`
	CommentsEnabled *bool   `json:"commentsEnabled"`
	IsAnonymous     bool    `json:"isAnonymous"`
}

type ReactRequest struct {
	ReactionType string `json:"reactionType" binding:"required,reaction"`
}

func (s *PostService) CreatePost(ctx context.Context, author *models.User, req *CreatePostRequest) (*models.Post, error) {
	commentsEnabled := true
	if req.CommentsEnabled != nil {
		commentsEnabled = *req.CommentsEnabled
	}

	post := &models.Post{
		AuthorID:        author.ID,
		Text:            deref(req.Text),
		ImageURL:        req.ImageURL,
		Mood:            req.Mood,
		CommentsEnabled: commentsEnabled,
		IsAnonymous:     req.IsAnonymous,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Author = author

	if !post.IsAnonymous {
		s.notifier.NotifyMentions(ctx, author, post.ID, post.Text)
	}

	publish(ctx, s.producer, s.logger, post.ID.String(), queue.EventPostCreated, queue.PostEventData{
		PostID:   post.ID.String(),
		AuthorID: author.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": author.ID,
	}).Info("Post created")
	return post, nil
}

func (s *PostService) getPost(ctx context.Context, postID string) (*models.Post, error) {
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
	return post, nil
}

// GetPost returns the post with its author resolved.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID uuid.UUID, postID string) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrNotAuthor
	}

	removed, err := s.postRepo.Delete(ctx, post)
	if err != nil {
		return err
	}
	if !removed {
		return ErrPostNotFound
	}

	publish(ctx, s.producer, s.logger, post.ID.String(), queue.EventPostDeleted, queue.PostEventData{
		PostID:   post.ID.String(),
		AuthorID: post.AuthorID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": userID,
	}).Info("Post deleted")
	return nil
}

// ListUserPosts returns the newest posts of authorID with authors and the
// viewer's reactions.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID uuid.UUID, authorID string) ([]*models.Post, error) {
	id, err := uuid.Parse(authorID)
	if err != nil {
		return []*models.Post{}, nil
	}

	posts, err := s.postRepo.ListByAuthor(ctx, id, userPostsLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetFeed pages through posts by the viewer and everyone they follow.
func (s *PostService) GetFeed(ctx context.Context, viewerID uuid.UUID, skip, limit int) ([]*models.Post, error) {
	skip, limit = s.pageBounds(skip, limit)

	audience, err := s.following.Audience(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthors(ctx, audience, skip, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	if err := s.attachSaved(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetExplore returns the newest posts from outside the viewer's audience.
func (s *PostService) GetExplore(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error) {
	audience, err := s.following.Audience(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListExcludingAuthors(ctx, audience, s.config.ExploreLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) pageBounds(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	return skip, limit
}

// React toggles the viewer's reaction of kind on the post.
func (s *PostService) React(ctx context.Context, actor *models.User, postID, kind string) error {
	if !models.IsValidReaction(kind) {
		return ErrInvalidReaction
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}

	change, err := s.reactionRepo.Toggle(ctx, post.ID, actor.ID, kind)
	if err != nil {
		return err
	}

	if change.Previous == nil && change.Current != nil {
		s.notifier.Notify(ctx, post.AuthorID, actor, models.NotificationLike, &post.ID,
			fmt.Sprintf("%s reacted to your post", actor.DisplayName))
	}

	data := queue.ReactionEventData{PostID: post.ID.String(), UserID: actor.ID.String()}
	if change.Previous != nil {
		data.Previous = *change.Previous
	}
	if change.Current != nil {
		data.Current = *change.Current
	}
	publish(ctx, s.producer, s.logger, post.ID.String(), queue.EventReactionChanged, data)

	return nil
}

func (s *PostService) ToggleSave(ctx context.Context, userID uuid.UUID, postID string) (bool, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return false, err
	}

	saved, err := s.savedRepo.Toggle(ctx, post.ID, userID)
	if err != nil {
		return false, err
	}

	eventType := queue.EventPostUnsaved
	if saved {
		eventType = queue.EventPostSaved
	}
	publish(ctx, s.producer, s.logger, post.ID.String(), eventType, queue.SaveEventData{
		PostID: post.ID.String(),
		UserID: userID.String(),
	})
	return saved, nil
}

// SavedPosts returns the viewer's saved posts, most recently saved first.
func (s *PostService) SavedPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	ids, err := s.savedRepo.ListPostIDs(ctx, userID, savedPostsLimit)
	if err != nil {
		return nil, err
	}
	byID, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			post.IsSaved = true
			posts = append(posts, post)
		}
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachAuthors resolves authors of non-anonymous posts in one lookup. Posts
// whose author no longer exists keep a nil author.
func (s *PostService) attachAuthors(ctx context.Context, posts []*models.Post) error {
	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		if !post.IsAnonymous {
			ids = append(ids, post.AuthorID)
		}
	}
	authors, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if !post.IsAnonymous {
			post.Author = authors[post.AuthorID]
		}
	}
	return nil
}

func (s *PostService) attachReactions(ctx context.Context, viewerID uuid.UUID, posts []*models.Post) error {
	reactions, err := s.reactionRepo.UserReactions(ctx, viewerID, postIDs(posts))
	if err != nil {
		return err
	}
	for _, post := range posts {
		if kind, ok := reactions[post.ID]; ok {
			kind := kind
			post.UserReaction = &kind
		}
	}
	return nil
}

func (s *PostService) attachSaved(ctx context.Context, viewerID uuid.UUID, posts []*models.Post) error {
	saved, err := s.savedRepo.SavedSet(ctx, viewerID, postIDs(posts))
	if err != nil {
		return err
	}
	for _, post := range posts {
		post.IsSaved = saved[post.ID]
	}
	return nil
}

func postIDs(posts []*models.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

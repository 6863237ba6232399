package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/instasocial/social-api/internal/config"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/internal/testutil"
	"github.com/instasocial/social-api/pkg/cache"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, value.(queue.Event))
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]queue.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// memCache is an in-process cache.Cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *memCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

type env struct {
	db        *repository.Database
	events    *recordingPublisher
	cache     *memCache
	following *services.FollowingSet

	auth          *services.AuthService
	users         *services.UserService
	posts         *services.PostService
	comments      *services.CommentService
	stories       *services.StoryService
	messages      *services.MessageService
	notifications *services.NotificationService
	reels         *services.ReelService
	reconciler    *services.Reconciler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDatabase(t)
	log := logger.NewNopLogger()
	events := &recordingPublisher{}
	mc := newMemCache()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)

	following := services.NewFollowingSet(followRepo, mc, time.Minute, log)
	notifications := services.NewNotificationService(repository.NewNotificationRepository(db.DB), userRepo, log)
	feedConfig := &config.FeedConfig{DefaultLimit: 10, MaxLimit: 100, ExploreLimit: 30}

	return &env{
		db:            db,
		events:        events,
		cache:         mc,
		following:     following,
		auth:          services.NewAuthService(userRepo, events, log),
		users:         services.NewUserService(userRepo, followRepo, following, notifications, events, log),
		posts:         services.NewPostService(postRepo, repository.NewReactionRepository(db.DB), repository.NewSavedPostRepository(db.DB), userRepo, following, notifications, events, feedConfig, log),
		comments:      services.NewCommentService(repository.NewCommentRepository(db.DB), postRepo, userRepo, notifications, events, log),
		stories:       services.NewStoryService(repository.NewStoryRepository(db.DB), userRepo, following, log),
		messages:      services.NewMessageService(repository.NewMessageRepository(db.DB), userRepo, events, log),
		notifications: notifications,
		reels:         services.NewReelService(repository.NewReelRepository(db.DB), userRepo, events, log),
		reconciler:    services.NewReconciler(db, following, log),
	}
}

func (e *env) user(t *testing.T, username string) *models.User {
	t.Helper()
	return testutil.CreateUser(t, e.db, username)
}

func (e *env) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), author, &services.CreatePostRequest{Text: ptr(text)})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	return post
}

func nopLogger() *logger.Logger {
	return logger.NewNopLogger()
}

func ptr(s string) *string {
	return &s
}

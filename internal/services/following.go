package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/cache"
	"github.com/instasocial/social-api/pkg/logger"
)

// FollowingSet serves "who does this user follow" from the cache, falling
// back to the follows table. Cache failures only cost a store read.
type FollowingSet struct {
	followRepo *repository.FollowRepository
	cache      cache.Cache
	ttl        time.Duration
	logger     *logger.Logger
}

func NewFollowingSet(followRepo *repository.FollowRepository, c cache.Cache, ttl time.Duration, logger *logger.Logger) *FollowingSet {
	return &FollowingSet{
		followRepo: followRepo,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

// A following set is cached under a key carrying the user's current version.
// Invalidate moves the version forward, so a set loaded before a follow change
// and written after it lands under a key nobody reads again.
const initialFollowingVersion = "0"

func followingVersionKey(userID uuid.UUID) string {
	return fmt.Sprintf("following:%s:version", userID)
}

func followingKey(userID uuid.UUID, version string) string {
	return fmt.Sprintf("following:%s:%s", userID, version)
}

func (f *FollowingSet) IDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	version, ok := f.version(ctx, userID)
	if !ok {
		return f.followRepo.FollowingIDs(ctx, userID)
	}
	key := followingKey(userID, version)

	var ids []uuid.UUID
	err := f.cache.GetJSON(ctx, key, &ids)
	if err == nil {
		return ids, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		f.logger.WithError(err).WithField("key", key).Warn("Failed to read following cache")
	}

	ids, err = f.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := f.cache.SetJSON(ctx, key, ids, f.ttl); err != nil {
		f.logger.WithError(err).WithField("key", key).Warn("Failed to write following cache")
	}
	return ids, nil
}

// version returns the current cache version of userID. ok is false when the
// cache cannot answer, in which case nothing should be cached.
func (f *FollowingSet) version(ctx context.Context, userID uuid.UUID) (string, bool) {
	var version string
	err := f.cache.GetJSON(ctx, followingVersionKey(userID), &version)
	switch {
	case err == nil:
		return version, true
	case errors.Is(err, cache.ErrMiss):
		return initialFollowingVersion, true
	default:
		f.logger.WithError(err).WithField("user_id", userID).Warn("Failed to read following cache version")
		return "", false
	}
}

// Audience is the following set plus the user.
func (f *FollowingSet) Audience(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := f.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	audience := make([]uuid.UUID, 0, len(ids)+1)
	audience = append(audience, ids...)
	return append(audience, userID), nil
}

// Invalidate retires every cached set of userID. Call it after the follow
// change has committed.
func (f *FollowingSet) Invalidate(ctx context.Context, userID uuid.UUID) {
	// the version key never expires; sets under older versions age out by ttl
	if err := f.cache.SetJSON(ctx, followingVersionKey(userID), uuid.NewString(), 0); err != nil {
		f.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate following cache")
	}
}

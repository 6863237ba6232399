package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/internal/testutil"
	"github.com/instasocial/social-api/pkg/queue"
)

func TestToggleFollow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	if _, err := e.users.ToggleFollow(ctx, bob, bob.ID.String()); !errors.Is(err, services.ErrSelfFollow) {
		t.Errorf("self follow error = %v, want ErrSelfFollow", err)
	}
	if _, err := e.users.ToggleFollow(ctx, bob, uuid.NewString()); !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("missing target error = %v, want ErrUserNotFound", err)
	}
	if _, err := e.users.ToggleFollow(ctx, bob, "not-a-uuid"); !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("malformed target error = %v, want ErrUserNotFound", err)
	}

	following, err := e.users.ToggleFollow(ctx, bob, alice.ID.String())
	if err != nil || !following {
		t.Fatalf("ToggleFollow() = %v, %v; want true", following, err)
	}
	isFollowing, err := e.users.IsFollowing(ctx, bob.ID, alice.ID.String())
	if err != nil || !isFollowing {
		t.Errorf("IsFollowing() = %v, %v; want true", isFollowing, err)
	}

	notifications, err := e.notifications.List(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationFollow || n.Text != "bob started following you" {
		t.Errorf("notification = %+v", n)
	}
	if n.Actor == nil || n.Actor.ID != bob.ID {
		t.Errorf("notification actor = %+v, want bob", n.Actor)
	}

	following, err = e.users.ToggleFollow(ctx, bob, alice.ID.String())
	if err != nil || following {
		t.Fatalf("second ToggleFollow() = %v, %v; want false", following, err)
	}
	if got := testutil.ReloadUser(t, e.db, alice.ID); got.FollowersCount != 0 {
		t.Errorf("FollowersCount = %d, want 0", got.FollowersCount)
	}
	if got := testutil.ReloadUser(t, e.db, bob.ID); got.FollowingCount != 0 {
		t.Errorf("FollowingCount = %d, want 0", got.FollowingCount)
	}

	want := []queue.EventType{queue.EventFollowCreated, queue.EventFollowDeleted}
	got := e.events.types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestUnfollowIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	if _, err := e.users.ToggleFollow(ctx, bob, alice.ID.String()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := e.users.Unfollow(ctx, bob, alice.ID.String()); err != nil {
			t.Fatalf("Unfollow() #%d error = %v", i, err)
		}
	}
	if got := testutil.ReloadUser(t, e.db, alice.ID); got.FollowersCount != 0 {
		t.Errorf("FollowersCount = %d, want 0", got.FollowersCount)
	}
}

func TestFollowersAndFollowing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	for _, follower := range []*models.User{bob, carol} {
		if _, err := e.users.ToggleFollow(ctx, follower, alice.ID.String()); err != nil {
			t.Fatal(err)
		}
	}

	followers, err := e.users.Followers(ctx, alice.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(followers) != 2 {
		t.Errorf("Followers() = %d users, want 2", len(followers))
	}

	following, err := e.users.Following(ctx, carol.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(following) != 1 || following[0].Username != "alice" {
		t.Errorf("Following() = %+v, want [alice]", following)
	}

	empty, err := e.users.Followers(ctx, "garbage")
	if err != nil || len(empty) != 0 {
		t.Errorf("Followers(garbage) = %v, %v; want empty", empty, err)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")

	bio := "night owl"
	site := "https://alice.example"
	user, err := e.users.UpdateProfile(ctx, alice.ID, &services.UpdateProfileRequest{Bio: &bio, Website: &site})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.Bio != bio || user.Website == nil || *user.Website != site {
		t.Errorf("UpdateProfile() = %+v", user)
	}
	if user.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want untouched", user.DisplayName)
	}
}

func TestFollowingSetCachesAndInvalidates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	ids, err := e.following.IDs(ctx, bob.ID)
	if err != nil || len(ids) != 0 {
		t.Fatalf("IDs() = %v, %v; want empty", ids, err)
	}
	if _, err := e.following.IDs(ctx, bob.ID); err != nil {
		t.Fatal(err)
	}
	if e.cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", e.cache.hits)
	}

	if _, err := e.users.ToggleFollow(ctx, bob, alice.ID.String()); err != nil {
		t.Fatal(err)
	}
	ids, err = e.following.IDs(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != alice.ID {
		t.Errorf("IDs() after follow = %v, want [alice]", ids)
	}
}

// beforeSetCache runs hook ahead of each SetJSON on the wrapped cache.
type beforeSetCache struct {
	*memCache
	hook func(key string)
}

func (c *beforeSetCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.hook(key)
	return c.memCache.SetJSON(ctx, key, value, expiration)
}

func TestFollowingSetDropsSetLoadedBeforeFollow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	// a follow commits and invalidates while bob's empty set is still in flight
	fired := false
	c := &beforeSetCache{memCache: e.cache}
	c.hook = func(key string) {
		if fired || strings.HasSuffix(key, ":version") {
			return
		}
		fired = true
		if _, err := e.users.ToggleFollow(ctx, bob, alice.ID.String()); err != nil {
			t.Fatal(err)
		}
	}
	set := services.NewFollowingSet(repository.NewFollowRepository(e.db.DB), c, time.Minute, nopLogger())

	ids, err := set.IDs(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("IDs() loaded before follow = %v, want empty", ids)
	}
	if !fired {
		t.Fatal("set was never written to the cache")
	}

	for _, s := range []*services.FollowingSet{set, e.following} {
		ids, err := s.IDs(ctx, bob.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 1 || ids[0] != alice.ID {
			t.Errorf("IDs() after follow = %v, want [alice]", ids)
		}
	}
}

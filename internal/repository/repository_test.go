package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/internal/testutil"
)

func TestFollowToggleIsInvolution(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	repo := repository.NewFollowRepository(db.DB)

	following, err := repo.Toggle(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !following {
		t.Fatalf("first Toggle() = false, want true")
	}
	if got := testutil.ReloadUser(t, db, alice.ID).FollowersCount; got != 1 {
		t.Errorf("alice.FollowersCount = %d, want 1", got)
	}
	if got := testutil.ReloadUser(t, db, bob.ID).FollowingCount; got != 1 {
		t.Errorf("bob.FollowingCount = %d, want 1", got)
	}

	following, err = repo.Toggle(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if following {
		t.Fatalf("second Toggle() = true, want false")
	}
	if got := testutil.ReloadUser(t, db, alice.ID).FollowersCount; got != 0 {
		t.Errorf("alice.FollowersCount = %d, want 0", got)
	}
	if got := testutil.ReloadUser(t, db, bob.ID).FollowingCount; got != 0 {
		t.Errorf("bob.FollowingCount = %d, want 0", got)
	}
}

func TestFollowRemoveOnlyMovesCountersOnce(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	repo := repository.NewFollowRepository(db.DB)

	if _, err := repo.Toggle(ctx, bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	for i, want := range []bool{true, false} {
		removed, err := repo.Remove(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if removed != want {
			t.Errorf("Remove() #%d = %v, want %v", i, removed, want)
		}
	}
	if got := testutil.ReloadUser(t, db, alice.ID).FollowersCount; got != 0 {
		t.Errorf("alice.FollowersCount = %d, want 0", got)
	}
}

func TestFollowListings(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	repo := repository.NewFollowRepository(db.DB)

	for _, follower := range []*models.User{bob, carol} {
		if _, err := repo.Toggle(ctx, follower.ID, alice.ID); err != nil {
			t.Fatal(err)
		}
	}

	followers, err := repo.FollowerIDs(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(followers) != 2 {
		t.Errorf("FollowerIDs() = %v, want 2 ids", followers)
	}

	following, err := repo.FollowingIDs(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(following) != 1 || following[0] != alice.ID {
		t.Errorf("FollowingIDs() = %v, want [%s]", following, alice.ID)
	}

	exists, err := repo.Exists(ctx, carol.ID, alice.ID)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true", exists, err)
	}
	exists, err = repo.Exists(ctx, alice.ID, carol.ID)
	if err != nil || exists {
		t.Errorf("Exists() reverse = %v, %v; want false", exists, err)
	}
}

func TestReactionToggleTransitions(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "hello")
	repo := repository.NewReactionRepository(db.DB)

	steps := []struct {
		kind  string
		want  models.ReactionCounts
		after string
	}{
		{models.ReactionBlackHeart, models.ReactionCounts{BlackHeart: 1}, models.ReactionBlackHeart},
		{models.ReactionHug, models.ReactionCounts{Hug: 1}, models.ReactionHug},
		{models.ReactionHug, models.ReactionCounts{}, ""},
		{models.ReactionMoon, models.ReactionCounts{Moon: 1}, models.ReactionMoon},
	}
	for i, step := range steps {
		change, err := repo.Toggle(ctx, post.ID, alice.ID, step.kind)
		if err != nil {
			t.Fatalf("step %d: Toggle() error = %v", i, err)
		}

		got := testutil.ReloadPost(t, db, post.ID).Reactions
		if got != step.want {
			t.Errorf("step %d: reactions = %+v, want %+v", i, got, step.want)
		}

		current := ""
		if change.Current != nil {
			current = *change.Current
		}
		if current != step.after {
			t.Errorf("step %d: current = %q, want %q", i, current, step.after)
		}

		var edges int64
		db.DB.Model(&models.Reaction{}).Where("post_id = ?", post.ID).Count(&edges)
		wantEdges := int64(1)
		if step.after == "" {
			wantEdges = 0
		}
		if edges != wantEdges {
			t.Errorf("step %d: reaction edges = %d, want %d", i, edges, wantEdges)
		}
	}
}

func TestUserReactionsBatch(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	first := testutil.CreatePost(t, db, alice, "one")
	second := testutil.CreatePost(t, db, alice, "two")
	repo := repository.NewReactionRepository(db.DB)

	if _, err := repo.Toggle(ctx, first.ID, alice.ID, models.ReactionHug); err != nil {
		t.Fatal(err)
	}

	reactions, err := repo.UserReactions(ctx, alice.ID, []uuid.UUID{first.ID, second.ID})
	if err != nil {
		t.Fatal(err)
	}
	if reactions[first.ID] != models.ReactionHug {
		t.Errorf("reaction on first = %q, want hug", reactions[first.ID])
	}
	if _, ok := reactions[second.ID]; ok {
		t.Errorf("unexpected reaction on second post")
	}
}

func TestPostDeleteCascades(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "bye")

	if got := testutil.ReloadUser(t, db, alice.ID).PostsCount; got != 1 {
		t.Fatalf("PostsCount after create = %d, want 1", got)
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "nice"}
	if err := repository.NewCommentRepository(db.DB).Create(ctx, comment); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ReloadPost(t, db, post.ID).CommentsCount; got != 1 {
		t.Errorf("CommentsCount = %d, want 1", got)
	}
	if _, err := repository.NewReactionRepository(db.DB).Toggle(ctx, post.ID, bob.ID, models.ReactionMoon); err != nil {
		t.Fatal(err)
	}
	if _, err := repository.NewSavedPostRepository(db.DB).Toggle(ctx, post.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	posts := repository.NewPostRepository(db.DB)
	removed, err := posts.Delete(ctx, post)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !removed {
		t.Fatalf("Delete() = false, want true")
	}
	removed, err = posts.Delete(ctx, post)
	if err != nil || removed {
		t.Errorf("second Delete() = %v, %v; want false", removed, err)
	}

	if got := testutil.ReloadUser(t, db, alice.ID).PostsCount; got != 0 {
		t.Errorf("PostsCount after delete = %d, want 0", got)
	}
	for name, model := range map[string]interface{}{
		"comments":    &models.Comment{},
		"reactions":   &models.Reaction{},
		"saved_posts": &models.SavedPost{},
	} {
		var count int64
		db.DB.Model(model).Where("post_id = ?", post.ID).Count(&count)
		if count != 0 {
			t.Errorf("%s left after delete = %d", name, count)
		}
	}
}

func TestFeedAndExploreQueries(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	older := testutil.CreatePost(t, db, alice, "older")
	time.Sleep(5 * time.Millisecond)
	newer := testutil.CreatePost(t, db, bob, "newer")
	time.Sleep(5 * time.Millisecond)
	other := testutil.CreatePost(t, db, carol, "other")

	repo := repository.NewPostRepository(db.DB)

	feed, err := repo.ListByAuthors(ctx, []uuid.UUID{alice.ID, bob.ID}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 || feed[0].ID != newer.ID || feed[1].ID != older.ID {
		t.Errorf("ListByAuthors() order wrong: %+v", feed)
	}

	page, err := repo.ListByAuthors(ctx, []uuid.UUID{alice.ID, bob.ID}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].ID != older.ID {
		t.Errorf("ListByAuthors(skip=1) = %+v, want [older]", page)
	}

	explore, err := repo.ListExcludingAuthors(ctx, []uuid.UUID{alice.ID, bob.ID}, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(explore) != 1 || explore[0].ID != other.ID {
		t.Errorf("ListExcludingAuthors() = %+v, want [other]", explore)
	}
}

func TestSavedPostToggle(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "keep")
	repo := repository.NewSavedPostRepository(db.DB)

	for i, want := range []bool{true, false, true} {
		saved, err := repo.Toggle(ctx, post.ID, alice.ID)
		if err != nil {
			t.Fatal(err)
		}
		if saved != want {
			t.Errorf("Toggle() #%d = %v, want %v", i, saved, want)
		}
	}

	set, err := repo.SavedSet(ctx, alice.ID, []uuid.UUID{post.ID, uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 || !set[post.ID] {
		t.Errorf("SavedSet() = %v, want only %s", set, post.ID)
	}

	ids, err := repo.ListPostIDs(ctx, alice.ID, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("ListPostIDs() = %v", ids)
	}
}

func TestStoryListActiveSkipsExpired(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	repo := repository.NewStoryRepository(db.DB)

	text := "now"
	live := &models.Story{UserID: alice.ID, Text: &text}
	if err := repo.Create(ctx, live); err != nil {
		t.Fatal(err)
	}
	past := time.Now().UTC().Add(-48 * time.Hour)
	expired := &models.Story{UserID: alice.ID, CreatedAt: past, ExpiresAt: past.Add(models.StoryLifetime)}
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatal(err)
	}

	stories, err := repo.ListActive(ctx, []uuid.UUID{alice.ID}, time.Now(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(stories) != 1 || stories[0].ID != live.ID {
		t.Errorf("ListActive() = %+v, want only the live story", stories)
	}
	if !live.ExpiresAt.Equal(live.CreatedAt.Add(24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want createdAt + 24h", live.ExpiresAt)
	}
}

func TestMessageThreadAndConversations(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	repo := repository.NewMessageRepository(db.DB)

	send := func(from, to *models.User, text string) {
		t.Helper()
		if err := repo.Create(ctx, &models.Message{SenderID: from.ID, ReceiverID: to.ID, Text: text}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	send(alice, bob, "hi")
	send(bob, alice, "hey")
	send(alice, bob, "how are you")
	send(carol, bob, "yo")

	thread, err := repo.Thread(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 3 || thread[0].Text != "hi" || thread[2].Text != "how are you" {
		t.Errorf("Thread() order wrong: %+v", thread)
	}

	unread, err := repo.UnreadCounts(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unread[alice.ID] != 2 || unread[carol.ID] != 1 {
		t.Errorf("UnreadCounts() = %v", unread)
	}

	marked, err := repo.MarkRead(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 2 {
		t.Errorf("MarkRead() = %d, want 2", marked)
	}
	unread, _ = repo.UnreadCounts(ctx, bob.ID)
	if unread[alice.ID] != 0 {
		t.Errorf("unread from alice after read = %d, want 0", unread[alice.ID])
	}
	// bob's message to alice stays unread
	unread, _ = repo.UnreadCounts(ctx, alice.ID)
	if unread[bob.ID] != 1 {
		t.Errorf("unread for alice = %d, want 1", unread[bob.ID])
	}

	peers, err := repo.PeerIDs(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(peers) != 2 {
		t.Errorf("PeerIDs() = %v, want alice and carol", peers)
	}

	last, err := repo.LastBetween(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Text != "how are you" {
		t.Errorf("LastBetween() = %+v", last)
	}
}

func TestReelToggleLike(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	repo := repository.NewReelRepository(db.DB)

	reel := &models.Reel{AuthorID: alice.ID, VideoURL: "https://cdn.example/v.mp4"}
	if err := repo.Create(ctx, reel); err != nil {
		t.Fatal(err)
	}

	liked, err := repo.ToggleLike(ctx, reel.ID, alice.ID)
	if err != nil || !liked {
		t.Fatalf("ToggleLike() = %v, %v; want true", liked, err)
	}
	got, _ := repo.GetByID(ctx, reel.ID)
	if got.LikesCount != 1 {
		t.Errorf("LikesCount = %d, want 1", got.LikesCount)
	}

	liked, err = repo.ToggleLike(ctx, reel.ID, alice.ID)
	if err != nil || liked {
		t.Fatalf("ToggleLike() = %v, %v; want false", liked, err)
	}
	got, _ = repo.GetByID(ctx, reel.ID)
	if got.LikesCount != 0 {
		t.Errorf("LikesCount = %d, want 0", got.LikesCount)
	}

	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestUserSearch(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "Alice_W")
	testutil.CreateUser(t, db, "bob")
	testutil.CreateUser(t, db, "malice")
	repo := repository.NewUserRepository(db.DB)

	tests := []struct {
		query string
		want  int
	}{
		{"alice", 2},
		{"ALI", 2},
		{"_w", 1},
		{"%", 0},
		{"zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			users, err := repo.Search(ctx, tt.query, 20)
			if err != nil {
				t.Fatal(err)
			}
			if len(users) != tt.want {
				t.Errorf("Search(%q) returned %d users, want %d", tt.query, len(users), tt.want)
			}
		})
	}
}

func TestRecountCountersRepairsDrift(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")

	if _, err := repository.NewFollowRepository(db.DB).Toggle(ctx, bob.ID, alice.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repository.NewReactionRepository(db.DB).Toggle(ctx, post.ID, bob.ID, models.ReactionHug); err != nil {
		t.Fatal(err)
	}
	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "hi"}
	if err := repository.NewCommentRepository(db.DB).Create(ctx, comment); err != nil {
		t.Fatal(err)
	}
	reels := repository.NewReelRepository(db.DB)
	reel := &models.Reel{AuthorID: alice.ID, VideoURL: "https://cdn.example/v.mp4"}
	if err := reels.Create(ctx, reel); err != nil {
		t.Fatal(err)
	}
	if _, err := reels.ToggleLike(ctx, reel.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	db.DB.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumns(map[string]interface{}{
		"reaction_hug": 7, "reaction_moon": 3, "comments_count": 0,
	})
	db.DB.Model(&models.User{}).Where("id = ?", alice.ID).UpdateColumns(map[string]interface{}{
		"followers_count": 9, "following_count": 4, "posts_count": 0,
	})
	db.DB.Model(&models.Reel{}).Where("id = ?", reel.ID).UpdateColumn("likes_count", 5)

	if err := repository.NewPostRepository(db.DB).RecountCounters(ctx, post.ID); err != nil {
		t.Fatalf("post RecountCounters() error = %v", err)
	}
	if err := repository.NewUserRepository(db.DB).RecountCounters(ctx, alice.ID); err != nil {
		t.Fatalf("user RecountCounters() error = %v", err)
	}
	if err := reels.RecountLikes(ctx, reel.ID); err != nil {
		t.Fatalf("RecountLikes() error = %v", err)
	}

	gotPost := testutil.ReloadPost(t, db, post.ID)
	if gotPost.Reactions != (models.ReactionCounts{Hug: 1}) || gotPost.CommentsCount != 1 {
		t.Errorf("post counters = %+v, %d; want hug only, 1 comment", gotPost.Reactions, gotPost.CommentsCount)
	}
	gotUser := testutil.ReloadUser(t, db, alice.ID)
	if gotUser.FollowersCount != 1 || gotUser.FollowingCount != 0 || gotUser.PostsCount != 1 {
		t.Errorf("user counters = %d/%d/%d, want 1/0/1",
			gotUser.FollowersCount, gotUser.FollowingCount, gotUser.PostsCount)
	}
	gotReel, _ := reels.GetByID(ctx, reel.ID)
	if gotReel.LikesCount != 1 {
		t.Errorf("LikesCount = %d, want 1", gotReel.LikesCount)
	}

	// the other user's row is left alone
	if other := testutil.ReloadUser(t, db, bob.ID); other.FollowingCount != 1 {
		t.Errorf("bob FollowingCount = %d, want 1", other.FollowingCount)
	}
}

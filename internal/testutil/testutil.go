// Package testutil provides an isolated in-memory store for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
)

// NewDatabase opens a fresh migrated in-memory database that is closed when
// the test ends. A single connection keeps every query on the same memory
// store, so transactions must only use their own handle.
func NewDatabase(t testing.TB) *repository.Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.Open(sqlite.Open(dsn), "silent")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// CreateUser inserts a user with derived email and display name. The
// password column holds a placeholder that never verifies.
func CreateUser(t testing.TB, db *repository.Database, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Password:    "x",
	}
	if err := db.DB.WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreatePost inserts a post authored by author through the repository so
// counters stay consistent.
func CreatePost(t testing.TB, db *repository.Database, author *models.User, text string) *models.Post {
	t.Helper()

	post := &models.Post{AuthorID: author.ID, Text: text, CommentsEnabled: true}
	if err := repository.NewPostRepository(db.DB).Create(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// ReloadUser reads the current row for id.
func ReloadUser(t testing.TB, db *repository.Database, id uuid.UUID) *models.User {
	t.Helper()

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}

// ReloadPost reads the current row for id.
func ReloadPost(t testing.TB, db *repository.Database, id uuid.UUID) *models.Post {
	t.Helper()

	var post models.Post
	if err := db.DB.First(&post, "id = ?", id).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	return &post
}

package services

import (
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors. Their messages are returned to clients as the error detail.
var (
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("User not found")
	ErrPostNotFound       = errors.New("Post not found")
	ErrReelNotFound       = errors.New("Reel not found")
	ErrSelfFollow         = errors.New("Cannot follow yourself")
	ErrNotAuthor          = errors.New("Not authorized")
	ErrInvalidReaction    = errors.New("Invalid reaction type")
	ErrCommentsDisabled   = errors.New("Comments are disabled for this post")
	ErrEmptyUpload        = errors.New("No image data provided")
)

// parseID parses a path identifier. Malformed ids cannot name any document,
// so they surface as notFound.
func parseID(id string, notFound error) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, notFound
	}
	return parsed, nil
}

package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventPostCreated     EventType = "post_created"
	EventPostDeleted     EventType = "post_deleted"
	EventFollowCreated   EventType = "follow_created"
	EventFollowDeleted   EventType = "follow_deleted"
	EventReactionChanged EventType = "reaction_changed"
	EventCommentCreated  EventType = "comment_created"
	EventPostSaved       EventType = "post_saved"
	EventPostUnsaved     EventType = "post_unsaved"
	EventMessageSent     EventType = "message_sent"
	EventReelCreated     EventType = "reel_created"
	EventReelLiked       EventType = "reel_liked"
	EventReelUnliked     EventType = "reel_unliked"
)

type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) Event {
	return Event{Type: eventType, Timestamp: time.Now().UTC(), Data: data}
}

// RawEvent is an Event whose payload has not been decoded yet.
type RawEvent struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func DecodeEvent(value []byte) (*RawEvent, error) {
	var event RawEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &event, nil
}

// DecodeData unmarshals the payload into dest.
func (e *RawEvent) DecodeData(dest interface{}) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

type UserEventData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type PostEventData struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

type FollowEventData struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

type ReactionEventData struct {
	PostID   string `json:"post_id"`
	UserID   string `json:"user_id"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
}

type CommentEventData struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
}

type SaveEventData struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

type MessageEventData struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

type ReelEventData struct {
	ReelID string `json:"reel_id"`
	UserID string `json:"user_id"`
}

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIsValidReaction(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{"black_heart", true},
		{"white_heart", true},
		{"hug", true},
		{"moon", true},
		{"", false},
		{"thumbs_up", false},
		{"Moon", false},
	}
	for _, tt := range tests {
		if got := IsValidReaction(tt.kind); got != tt.want {
			t.Errorf("IsValidReaction(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestPostJSONShape(t *testing.T) {
	post := Post{Text: "hello", CommentsEnabled: true, Reactions: ReactionCounts{Hug: 2}}
	data, err := json.Marshal(post)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	reactions, ok := decoded["reactions"].(map[string]interface{})
	if !ok {
		t.Fatalf("reactions = %T, want object", decoded["reactions"])
	}
	for _, kind := range ReactionKinds {
		if _, ok := reactions[kind]; !ok {
			t.Errorf("reactions missing %q", kind)
		}
	}
	if reactions["hug"].(float64) != 2 {
		t.Errorf("reactions.hug = %v, want 2", reactions["hug"])
	}
	if _, ok := decoded["author"]; ok {
		t.Errorf("author should be omitted when not resolved")
	}
	if v, ok := decoded["userReaction"]; !ok || v != nil {
		t.Errorf("userReaction = %v, want explicit null", v)
	}
}

func TestUserJSONHidesPassword(t *testing.T) {
	data, err := json.Marshal(User{Username: "a", Password: "$2a$hash"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hash") || strings.Contains(string(data), "password") {
		t.Errorf("password leaked: %s", data)
	}
}

func TestStoryExpired(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Story{CreatedAt: created, ExpiresAt: created.Add(StoryLifetime)}

	if s.Expired(created.Add(23 * time.Hour)) {
		t.Errorf("story expired too early")
	}
	if !s.Expired(created.Add(StoryLifetime)) {
		t.Errorf("story must be expired exactly at expiresAt")
	}
}

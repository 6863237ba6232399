package queue

import (
	"encoding/json"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	data, err := json.Marshal(NewEvent(EventFollowCreated, FollowEventData{FollowerID: "a", FollowingID: "b"}))
	if err != nil {
		t.Fatal(err)
	}

	event, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if event.Type != EventFollowCreated {
		t.Errorf("Type = %s, want %s", event.Type, EventFollowCreated)
	}

	var payload FollowEventData
	if err := event.DecodeData(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.FollowerID != "a" || payload.FollowingID != "b" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{"},
		{"missing type", `{"data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEvent([]byte(tt.value)); err == nil {
				t.Errorf("DecodeEvent(%q) error = nil, want error", tt.value)
			}
		})
	}
}

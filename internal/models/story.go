package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryLifetime is how long a story stays visible after creation.
const StoryLifetime = 24 * time.Hour

type Story struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Text      *string   `json:"text" gorm:"type:text"`
	ImageURL  *string   `json:"imageUrl" gorm:"type:text"`
	VideoURL  *string   `json:"videoUrl" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"-"`
}

func (Story) TableName() string {
	return "stories"
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(StoryLifetime)
	}
	return nil
}

// Expired reports whether the story is no longer visible at now.
func (s *Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

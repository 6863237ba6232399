package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
)

type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Type      string     `json:"type" gorm:"not null"`
	ActorID   uuid.UUID  `json:"actorId" gorm:"type:uuid;not null"`
	PostID    *uuid.UUID `json:"postId" gorm:"type:uuid"`
	Text      string     `json:"text" gorm:"type:text;not null"`
	IsRead    bool       `json:"isRead" gorm:"not null"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`

	Actor *User `json:"actor,omitempty" gorm:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SenderID   uuid.UUID `json:"senderId" gorm:"type:uuid;not null;index:idx_message_pair"`
	ReceiverID uuid.UUID `json:"receiverId" gorm:"type:uuid;not null;index:idx_message_pair;index"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	ImageURL   *string   `json:"imageUrl" gorm:"type:text"`
	IsRead     bool      `json:"isRead" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// Conversation summarizes the thread between the caller and one peer.
type Conversation struct {
	User            *User      `json:"user"`
	LastMessage     *string    `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	UnreadCount     int64      `json:"unreadCount"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

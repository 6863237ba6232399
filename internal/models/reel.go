package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reel struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	AuthorID      uuid.UUID `json:"authorId" gorm:"type:uuid;not null;index"`
	VideoURL      string    `json:"videoUrl" gorm:"type:text;not null"`
	Caption       *string   `json:"caption" gorm:"type:text"`
	Music         *string   `json:"music"`
	LikesCount    int64     `json:"likesCount" gorm:"default:0"`
	CommentsCount int64     `json:"commentsCount" gorm:"default:0"`
	ViewsCount    int64     `json:"viewsCount" gorm:"default:0"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`

	Author  *User `json:"author,omitempty" gorm:"-"`
	IsLiked bool  `json:"isLiked" gorm:"-"`
}

type ReelLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ReelID    uuid.UUID `json:"reelId" gorm:"type:uuid;not null;uniqueIndex:idx_reel_like_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_reel_like_user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Reel) TableName() string {
	return "reels"
}

func (ReelLike) TableName() string {
	return "reel_likes"
}

func (r *Reel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (l *ReelLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"not null"`
	DisplayName    string    `json:"displayName" gorm:"not null"`
	Bio            string    `json:"bio" gorm:"type:text;default:''"`
	Avatar         *string   `json:"avatar" gorm:"type:text"`
	Website        *string   `json:"website"`
	FollowersCount int64     `json:"followersCount" gorm:"default:0"`
	FollowingCount int64     `json:"followingCount" gorm:"default:0"`
	PostsCount     int64     `json:"postsCount" gorm:"default:0"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Follow is the edge from FollowerID to FollowingID. At most one per pair.
type Follow struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	FollowerID  uuid.UUID `json:"followerId" gorm:"type:uuid;not null;uniqueIndex:idx_follower_following"`
	FollowingID uuid.UUID `json:"followingId" gorm:"type:uuid;not null;uniqueIndex:idx_follower_following;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

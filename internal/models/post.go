package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction kinds. The set is fixed; each kind has its own counter column on posts.
const (
	ReactionBlackHeart = "black_heart"
	ReactionWhiteHeart = "white_heart"
	ReactionHug        = "hug"
	ReactionMoon       = "moon"
)

var ReactionKinds = []string{ReactionBlackHeart, ReactionWhiteHeart, ReactionHug, ReactionMoon}

func IsValidReaction(kind string) bool {
	for _, k := range ReactionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ReactionColumn returns the posts column holding the counter for kind.
// Callers must validate kind first.
func ReactionColumn(kind string) string {
	return "reaction_" + kind
}

// ReactionCounts serializes as the {kind: count} mapping clients expect.
type ReactionCounts struct {
	BlackHeart int64 `json:"black_heart" gorm:"column:black_heart;default:0"`
	WhiteHeart int64 `json:"white_heart" gorm:"column:white_heart;default:0"`
	Hug        int64 `json:"hug" gorm:"column:hug;default:0"`
	Moon       int64 `json:"moon" gorm:"column:moon;default:0"`
}

// Get returns the counter for kind, zero for unknown kinds.
func (r ReactionCounts) Get(kind string) int64 {
	switch kind {
	case ReactionBlackHeart:
		return r.BlackHeart
	case ReactionWhiteHeart:
		return r.WhiteHeart
	case ReactionHug:
		return r.Hug
	case ReactionMoon:
		return r.Moon
	}
	return 0
}

type Post struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	AuthorID        uuid.UUID      `json:"authorId" gorm:"type:uuid;not null;index"`
	Text            string         `json:"text" gorm:"type:text;not null"`
	ImageURL        *string        `json:"imageUrl" gorm:"type:text"`
	Mood            *string        `json:"mood"`
	CommentsEnabled bool           `json:"commentsEnabled" gorm:"not null"`
	IsAnonymous     bool           `json:"isAnonymous" gorm:"not null"`
	Reactions       ReactionCounts `json:"reactions" gorm:"embedded;embeddedPrefix:reaction_"`
	CommentsCount   int64          `json:"commentsCount" gorm:"default:0"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"index"`

	Author       *User   `json:"author,omitempty" gorm:"-"`
	UserReaction *string `json:"userReaction" gorm:"-"`
	IsSaved      bool    `json:"isSaved" gorm:"-"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`

	Author *User `json:"author,omitempty" gorm:"-"`
}

// Reaction is the single active reaction of UserID on PostID.
type Reaction struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	PostID       uuid.UUID `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user"`
	ReactionType string    `json:"reactionType" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SavedPost struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_saved_post_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_saved_post_user;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Post) TableName() string {
	return "posts"
}

func (Comment) TableName() string {
	return "comments"
}

func (Reaction) TableName() string {
	return "reactions"
}

func (SavedPost) TableName() string {
	return "saved_posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

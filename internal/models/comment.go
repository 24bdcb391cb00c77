package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConfessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"confession_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	TotalLikes   int64      `gorm:"not null;default:0" json:"total_likes"`
	IsApproved   bool       `gorm:"not null;index" json:"is_approved"`
	ModeratedBy  *uuid.UUID `gorm:"type:uuid" json:"moderated_by,omitempty"`
	ModeratedAt  *time.Time `json:"moderated_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User    *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

type CommentLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

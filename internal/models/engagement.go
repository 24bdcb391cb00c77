package models

import (
	"time"

	"github.com/google/uuid"
)

type Like struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_confession" json:"user_id"`
	ConfessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_confession;index" json:"confession_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Bookmark struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_confession" json:"user_id"`
	ConfessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_confession;index" json:"confession_id"`
	CreatedAt    time.Time `json:"created_at"`

	Confession *Confession `gorm:"foreignKey:ConfessionID" json:"confession,omitempty"`
}

type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	IconURL     string    `gorm:"size:500" json:"icon_url"`
	Color       string    `gorm:"size:20" json:"color"`
	// Criteria names the automatic rule that awards this badge; empty means manual only.
	Criteria  string    `gorm:"size:50" json:"criteria,omitempty"`
	Threshold int64     `gorm:"not null;default:0" json:"threshold,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserBadge struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_pair" json:"user_id"`
	BadgeID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_pair" json:"badge_id"`
	AwardedBy *uuid.UUID `gorm:"type:uuid" json:"awarded_by,omitempty"`
	Reason    string     `gorm:"size:500" json:"reason,omitempty"`
	AwardedAt time.Time  `gorm:"not null;autoCreateTime" json:"awarded_at"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

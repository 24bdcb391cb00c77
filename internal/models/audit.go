package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityLog records a user action that should appear in activity feeds.
type ActivityLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action     string            `gorm:"size:100;not null;index" json:"action"`
	TargetType string            `gorm:"size:50" json:"target_type"`
	TargetID   string            `gorm:"size:36" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`

	User *Profile `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// ModerationLog records every moderator or admin decision.
type ModerationLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ModeratorID uuid.UUID         `gorm:"type:uuid;not null;index" json:"moderator_id"`
	Action      string            `gorm:"size:100;not null;index" json:"action"`
	TargetType  string            `gorm:"size:50;not null" json:"target_type"`
	TargetID    string            `gorm:"size:36;not null;index" json:"target_id"`
	Reason      string            `gorm:"size:500" json:"reason,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`

	Moderator *Profile `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	return s == ReportPending || s == ReportResolved || s == ReportDismissed
}

// Report is a user complaint about a confession, comment or another user.
type Report struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ConfessionID   *uuid.UUID   `gorm:"type:uuid;index" json:"confession_id,omitempty"`
	CommentID      *uuid.UUID   `gorm:"type:uuid;index" json:"comment_id,omitempty"`
	ReportedUserID *uuid.UUID   `gorm:"type:uuid;index" json:"reported_user_id,omitempty"`
	Reason         string       `gorm:"not null;size:500" json:"reason"`
	Description    string       `gorm:"size:1000" json:"description,omitempty"`
	Status         ReportStatus `gorm:"not null;default:'pending';size:20;index" json:"status"`
	AdminNotes     string       `gorm:"size:1000" json:"admin_notes,omitempty"`
	ResolvedBy     *uuid.UUID   `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Reporter *Profile `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

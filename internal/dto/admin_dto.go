package dto

import "github.com/tausug-confession/confession-backend/internal/models"

type CreateReportRequest struct {
	ConfessionID   *string `json:"confession_id" validate:"omitempty,uuid"`
	CommentID      *string `json:"comment_id" validate:"omitempty,uuid"`
	ReportedUserID *string `json:"reported_user_id" validate:"omitempty,uuid"`
	Reason         string  `json:"reason" validate:"required,min=1,max=500"`
	Description    string  `json:"description" validate:"max=1000"`
}

type UpdateReportRequest struct {
	Status     string `json:"status" validate:"required,oneof=pending resolved dismissed"`
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user member moderator admin"`
}

type BanRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason" validate:"max=500"`
}

type ListUsersQuery struct {
	Page   int
	Limit  int
	Role   string
	Search string
	Banned string
}

type ModerateRequest struct {
	Action string `json:"action" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type ModerationQuery struct {
	Page   int
	Limit  int
	Type   string
	Status string
}

type PlatformStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalConfessions int64 `json:"total_confessions"`
	TotalComments    int64 `json:"total_comments"`
	TotalLikes       int64 `json:"total_likes"`
	TotalBookmarks   int64 `json:"total_bookmarks"`
	PendingReports   int64 `json:"pending_reports"`
	BannedUsers      int64 `json:"banned_users"`
	UserGrowth       int64 `json:"user_growth"`
}

type AdminDashboard struct {
	Stats             PlatformStats        `json:"stats"`
	RecentActivity    []models.ActivityLog `json:"recent_activity"`
	RecentUsers       []models.User        `json:"recent_users"`
	RecentConfessions []models.Confession  `json:"recent_confessions"`
}

type ModerationStats struct {
	PendingComments    int64 `json:"pending_comments"`
	PendingConfessions int64 `json:"pending_confessions"`
	TotalModerated     int64 `json:"total_moderated"`
	TodayModerated     int64 `json:"today_moderated"`
}

type ModeratorDashboard struct {
	Stats          ModerationStats        `json:"stats"`
	RecentActivity []models.ModerationLog `json:"recent_activity"`
}

// ModerationQueue is one page of the moderator review queue; only the
// slice matching Type is set.
type ModerationQueue struct {
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	Confessions []models.Confession `json:"confessions,omitempty"`
	Comments    []models.Comment    `json:"comments,omitempty"`
	Pagination  Pagination          `json:"pagination"`
}

package dto

import "github.com/tausug-confession/confession-backend/internal/models"

type AwardBadgeRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	BadgeID string `json:"badge_id" validate:"required,uuid"`
	Reason  string `json:"reason" validate:"max=500"`
}

type FollowResponse struct {
	Following bool `json:"following"`
}

// PublicProfile is what any caller may see about a user.
type PublicProfile struct {
	models.Profile
	Bio         string             `json:"bio"`
	CreatedAt   string             `json:"created_at"`
	Followers   int64              `json:"followers"`
	Following   int64              `json:"following"`
	Stories     int64              `json:"stories"`
	IsFollowing bool               `json:"is_following"`
	Badges      []models.UserBadge `json:"badges"`
}

type DashboardStats struct {
	TotalConfessions int64 `json:"total_confessions"`
	Published        int64 `json:"published"`
	TotalLikes       int64 `json:"total_likes"`
	TotalViews       int64 `json:"total_views"`
	TotalComments    int64 `json:"total_comments"`
	Bookmarks        int64 `json:"bookmarks"`
	Followers        int64 `json:"followers"`
	Following        int64 `json:"following"`
	Badges           int64 `json:"badges"`
}

type Dashboard struct {
	User          UserResponse         `json:"user"`
	Stats         DashboardStats       `json:"stats"`
	RecentStories []models.Confession  `json:"recent_stories"`
	Badges        []models.UserBadge   `json:"badges"`
	Activity      []models.ActivityLog `json:"activity"`
}

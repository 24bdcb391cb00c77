package dto

import "github.com/tausug-confession/confession-backend/internal/models"

type CreateConfessionRequest struct {
	Title         string   `json:"title" validate:"required,min=5,max=200"`
	Description   string   `json:"description" validate:"max=1000"`
	Category      string   `json:"category" validate:"omitempty,category"`
	Tags          []string `json:"tags" validate:"max=10,dive,min=1,max=30"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url,max=500"`
}

// UpdateConfessionRequest is the allow-list of author-editable fields.
// Absent fields are left unchanged.
type UpdateConfessionRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=5,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=1000"`
	Category      *string   `json:"category" validate:"omitempty,category"`
	Tags          *[]string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	CoverImageURL *string   `json:"cover_image_url" validate:"omitempty,url,max=500"`
	Status        *string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type ListConfessionsQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	SortBy   string
	UserID   string
}

type CreateChapterRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=50"`
}

type ConfessionDetail struct {
	*models.Confession
	Chapters []models.Chapter `json:"chapters"`
}

type LikeResponse struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"total_likes"`
}

type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

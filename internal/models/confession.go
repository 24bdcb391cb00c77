package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ConfessionStatus string

const (
	StatusDraft     ConfessionStatus = "draft"
	StatusPublished ConfessionStatus = "published"
	StatusArchived  ConfessionStatus = "archived"
	StatusRemoved   ConfessionStatus = "removed"
)

// AuthorSettable reports whether an author may move a confession into s.
// Removal is reserved for moderators.
func (s ConfessionStatus) AuthorSettable() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

type Category string

// Categories accepted on create and update.
var Categories = []Category{
	"general", "family", "love", "friendship",
	"school", "work", "personal", "culture",
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Confession struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"author_id"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Description   string           `gorm:"size:1000" json:"description"`
	Category      Category         `gorm:"size:30;not null;default:'general';index" json:"category"`
	Tags          pq.StringArray   `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	CoverImageURL string           `gorm:"size:500" json:"cover_image_url"`
	Status        ConfessionStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	TotalViews    int64            `gorm:"not null;default:0" json:"total_views"`
	TotalLikes    int64            `gorm:"not null;default:0" json:"total_likes"`
	TotalComments int64            `gorm:"not null;default:0" json:"total_comments"`
	TotalChapters int64            `gorm:"not null;default:0" json:"total_chapters"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Author   *Profile  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Chapters []Chapter `gorm:"foreignKey:ConfessionID" json:"chapters,omitempty"`

	// Set per request for the authenticated caller.
	IsLiked bool `gorm:"-" json:"is_liked"`
}

type Chapter struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConfessionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chapters_confession_number" json:"confession_id"`
	ChapterNumber int       `gorm:"not null;uniqueIndex:idx_chapters_confession_number" json:"chapter_number"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

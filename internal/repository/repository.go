// Package repository defines the persistence contract used by the services.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotProvisioned means the backing tables do not exist yet.
	ErrNotProvisioned = errors.New("storage not provisioned")
)

// Page is a resolved limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

type UserFilter struct {
	Role   models.Role
	Banned *bool
	// Search matches username, full name or email, case-insensitively.
	Search       string
	CreatedSince time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	// Delete removes the user and every row they own.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f UserFilter, p Page) ([]models.User, int64, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
}

// Sort columns accepted by ConfessionQuery.SortBy.
const (
	SortCreatedAt     = "created_at"
	SortTitle         = "title"
	SortTotalViews    = "total_views"
	SortTotalLikes    = "total_likes"
	SortTotalComments = "total_comments"
	SortUpdatedAt     = "updated_at"
)

type ConfessionQuery struct {
	AuthorID *uuid.UUID
	// Statuses restricts results; empty means any status.
	Statuses []models.ConfessionStatus
	Category models.Category
	// Search matches title or description, case-insensitively.
	Search       string
	SortBy       string
	Ascending    bool
	CreatedSince time.Time
}

// AuthorTotals aggregates counters across an author's confessions.
type AuthorTotals struct {
	Confessions int64
	Published   int64
	Views       int64
	Likes       int64
	Comments    int64
}

type ConfessionRepository interface {
	Create(ctx context.Context, c *models.Confession) error
	// FindByID loads the confession with its author profile.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Confession, error)
	Save(ctx context.Context, c *models.Confession) error
	// Delete removes the confession with its chapters, comments, likes and bookmarks.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q ConfessionQuery, p Page) ([]models.Confession, int64, error)
	Count(ctx context.Context, q ConfessionQuery) (int64, error)
	// IncrementViews atomically adds one view and returns the new total.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	TotalsForAuthor(ctx context.Context, authorID uuid.UUID) (AuthorTotals, error)
}

type ChapterRepository interface {
	// Create assigns the next chapter number for the confession and
	// refreshes its chapter counter in the same transaction.
	Create(ctx context.Context, ch *models.Chapter) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
	// Save updates title and content.
	Save(ctx context.Context, ch *models.Chapter) error
	ListByConfession(ctx context.Context, confessionID uuid.UUID) ([]models.Chapter, error)
}

// Comment orderings.
const (
	CommentsNewest  = "newest"
	CommentsOldest  = "oldest"
	CommentsPopular = "popular"
)

type CommentFilter struct {
	ConfessionID *uuid.UUID
	UserID       *uuid.UUID
	Approved     *bool
	CreatedSince time.Time
}

type CommentRepository interface {
	// Create inserts the comment and refreshes the confession's comment counter.
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Save(ctx context.Context, c *models.Comment) error
	// Delete removes the comment, its replies and their likes, then
	// refreshes the confession's comment counter.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListThreads returns approved top-level comments with approved replies attached.
	ListThreads(ctx context.Context, confessionID uuid.UUID, sort string, p Page) ([]models.Comment, int64, error)
	List(ctx context.Context, f CommentFilter, p Page) ([]models.Comment, int64, error)
	Count(ctx context.Context, f CommentFilter) (int64, error)
	// ToggleLike flips the caller's like and returns the new state and counter.
	ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (bool, int64, error)
}

type EngagementRepository interface {
	// ToggleLike flips the caller's like and returns the new state and counter.
	ToggleLike(ctx context.Context, userID, confessionID uuid.UUID) (bool, int64, error)
	// LikedAmong returns which of ids the user has liked.
	LikedAmong(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	// CountLikesGiven counts likes the user has placed.
	CountLikesGiven(ctx context.Context, userID uuid.UUID) (int64, error)
	CountLikes(ctx context.Context, since time.Time) (int64, error)
	ToggleBookmark(ctx context.Context, userID, confessionID uuid.UUID) (bool, error)
	// ListBookmarks returns bookmarks newest first with their confession attached.
	ListBookmarks(ctx context.Context, userID uuid.UUID, p Page) ([]models.Bookmark, int64, error)
	CountBookmarks(ctx context.Context, userID *uuid.UUID) (int64, error)
}

type FollowRepository interface {
	Create(ctx context.Context, f *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uuid.UUID) error
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID, p Page) ([]models.Profile, int64, error)
	Following(ctx context.Context, userID uuid.UUID, p Page) ([]models.Profile, int64, error)
}

type BadgeRepository interface {
	List(ctx context.Context) ([]models.Badge, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Badge, error)
	// Upsert inserts or updates a badge keyed by name.
	Upsert(ctx context.Context, b *models.Badge) error
	// Award returns ErrDuplicate when the user already holds the badge.
	Award(ctx context.Context, ub *models.UserBadge) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Save(ctx context.Context, r *models.Report) error
	List(ctx context.Context, status models.ReportStatus, p Page) ([]models.Report, int64, error)
	Count(ctx context.Context, status models.ReportStatus) (int64, error)
}

type ModerationLogFilter struct {
	ModeratorID  *uuid.UUID
	CreatedSince time.Time
}

type AuditRepository interface {
	LogActivity(ctx context.Context, l *models.ActivityLog) error
	LogModeration(ctx context.Context, l *models.ModerationLog) error
	RecentActivity(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error)
	ListModeration(ctx context.Context, f ModerationLogFilter, limit int) ([]models.ModerationLog, error)
	CountModeration(ctx context.Context, f ModerationLogFilter) (int64, error)
}

// Prober reports storage health for the status endpoints.
type Prober interface {
	Ping(ctx context.Context) error
	// MissingTables lists required tables that do not exist.
	MissingTables(ctx context.Context) ([]string, error)
}

// Store bundles every repository behind one value.
type Store struct {
	Users       UserRepository
	Confessions ConfessionRepository
	Chapters    ChapterRepository
	Comments    CommentRepository
	Engagement  EngagementRepository
	Follows     FollowRepository
	Badges      BadgeRepository
	Reports     ReportRepository
	Audit       AuditRepository
	Probe       Prober
}

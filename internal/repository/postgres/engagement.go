package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type engagementRepo struct{ db *gorm.DB }

// ToggleLike deletes the caller's like if present, otherwise inserts one,
// then recounts the confession's likes from the rows. The confession row
// lock serializes concurrent toggles.
func (r *engagementRepo) ToggleLike(ctx context.Context, userID, confessionID uuid.UUID) (bool, int64, error) {
	var liked bool
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, confessionID); err != nil {
			return err
		}
		removed := tx.Where("user_id = ? AND confession_id = ?", userID, confessionID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.Like{UserID: userID, ConfessionID: confessionID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Raw(`UPDATE confessions SET total_likes =
			(SELECT COUNT(*) FROM likes WHERE confession_id = ?)
			WHERE id = ? RETURNING total_likes`, confessionID, confessionID).Scan(&total).Error
	})
	return liked, total, translate(err)
}

func (r *engagementRepo) LikedAmong(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var liked []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND confession_id IN ?", userID, ids).
		Pluck("confession_id", &liked).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func (r *engagementRepo) CountLikesGiven(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Count(&n).Error
	return n, translate(err)
}

func (r *engagementRepo) CountLikes(ctx context.Context, from time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Scopes(since("created_at", from)).Count(&n).Error
	return n, translate(err)
}

func (r *engagementRepo) ToggleBookmark(ctx context.Context, userID, confessionID uuid.UUID) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, confessionID); err != nil {
			return err
		}
		removed := tx.Where("user_id = ? AND confession_id = ?", userID, confessionID).Delete(&models.Bookmark{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected > 0 {
			return nil
		}
		saved = true
		b := models.Bookmark{UserID: userID, ConfessionID: confessionID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&b).Error
	})
	return saved, translate(err)
}

func (r *engagementRepo) ListBookmarks(ctx context.Context, userID uuid.UUID, p repository.Page) ([]models.Bookmark, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	bookmarks := []models.Bookmark{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(paginate(p)).
		Preload("Confession").
		Preload("Confession.Author").
		Order("created_at DESC").
		Find(&bookmarks).Error
	return bookmarks, total, translate(err)
}

func (r *engagementRepo) CountBookmarks(ctx context.Context, userID *uuid.UUID) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&models.Bookmark{})
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	err := db.Count(&n).Error
	return n, translate(err)
}

type followRepo struct{ db *gorm.DB }

func (r *followRepo) Create(ctx context.Context, f *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *followRepo) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *followRepo) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	return n > 0, translate(err)
}

// edges lists the profiles on the other side of userID's follow edges.
func (r *followRepo) edges(ctx context.Context, matchColumn, otherColumn string, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error) {
	base := func(db *gorm.DB) *gorm.DB {
		return db.Table("follows").
			Joins("JOIN users ON users.id = follows."+otherColumn).
			Where("follows."+matchColumn+" = ?", userID)
	}
	var total int64
	if err := r.db.WithContext(ctx).Scopes(base).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	profiles := []models.Profile{}
	err := r.db.WithContext(ctx).Scopes(base, paginate(p)).
		Select("users.id, users.username, users.full_name, users.avatar_url, users.role").
		Order("follows.created_at DESC").
		Scan(&profiles).Error
	return profiles, total, translate(err)
}

func (r *followRepo) Followers(ctx context.Context, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error) {
	return r.edges(ctx, "following_id", "follower_id", userID, p)
}

func (r *followRepo) Following(ctx context.Context, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error) {
	return r.edges(ctx, "follower_id", "following_id", userID, p)
}

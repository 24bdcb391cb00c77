package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commentRepo struct{ db *gorm.DB }

func commentOrder(sort string) string {
	switch sort {
	case repository.CommentsOldest:
		return "created_at ASC"
	case repository.CommentsPopular:
		return "total_likes DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func commentScope(f repository.CommentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ConfessionID != nil {
			db = db.Where("confession_id = ?", *f.ConfessionID)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.Approved != nil {
			db = db.Where("is_approved = ?", *f.Approved)
		}
		return db.Scopes(since("created_at", f.CreatedSince))
	}
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, c.ConfessionID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return recountConfessions(tx, []uuid.UUID{c.ConfessionID})
	})
	if err != nil {
		return translate(err)
	}
	var author models.Profile
	if err := r.db.WithContext(ctx).First(&author, "id = ?", c.UserID).Error; err == nil {
		c.User = &author
	}
	return nil
}

func (r *commentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepo) Save(ctx context.Context, c *models.Comment) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, c.ConfessionID); err != nil {
			return err
		}
		result := tx.Model(c).
			Select("content", "is_approved", "moderated_by", "moderated_at", "updated_at").
			Updates(c)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return recountConfessions(tx, []uuid.UUID{c.ConfessionID})
	}))
}

func (r *commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Select("id", "confession_id").First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if err := lockConfession(tx, c.ConfessionID); err != nil {
			return err
		}
		tree, err := commentTree(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if err := deleteComments(tx, tree); err != nil {
			return err
		}
		return recountConfessions(tx, []uuid.UUID{c.ConfessionID})
	}))
}

func (r *commentRepo) ListThreads(ctx context.Context, confessionID uuid.UUID, sort string, p repository.Page) ([]models.Comment, int64, error) {
	thread := func(db *gorm.DB) *gorm.DB {
		return db.Where("confession_id = ? AND parent_id IS NULL AND is_approved = ?", confessionID, true)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Scopes(thread).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Scopes(thread, paginate(p)).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_approved = ?", true).Order("created_at ASC")
		}).
		Preload("Replies.User").
		Order(commentOrder(sort)).
		Find(&comments).Error
	return comments, total, translate(err)
}

func (r *commentRepo) List(ctx context.Context, f repository.CommentFilter, p repository.Page) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Scopes(commentScope(f)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Scopes(commentScope(f), paginate(p)).
		Preload("User").
		Order("created_at DESC").
		Find(&comments).Error
	return comments, total, translate(err)
}

func (r *commentRepo) Count(ctx context.Context, f repository.CommentFilter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Scopes(commentScope(f)).Count(&total).Error
	return total, translate(err)
}

func (r *commentRepo) ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (bool, int64, error) {
	var liked bool
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&c, "id = ?", commentID).Error; err != nil {
			return err
		}
		removed := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&models.CommentLike{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.CommentLike{UserID: userID, CommentID: commentID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Raw(`UPDATE comments SET total_likes =
			(SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?)
			WHERE id = ? RETURNING total_likes`, commentID, commentID).Scan(&total).Error
	})
	return liked, total, translate(err)
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
)

type userRepo struct{ db *gorm.DB }

func userScope(f repository.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Role != "" {
			db = db.Where("role = ?", f.Role)
		}
		if f.Banned != nil {
			db = db.Where("is_banned = ?", *f.Banned)
		}
		if f.Search != "" {
			like := "%" + f.Search + "%"
			db = db.Where("(username ILIKE ? OR full_name ILIKE ? OR email ILIKE ?)", like, like, like)
		}
		return db.Scopes(since("created_at", f.CreatedSince))
	}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepo) Save(ctx context.Context, u *models.User) error {
	result := r.db.WithContext(ctx).Model(u).
		Select("email", "password", "username", "full_name", "bio", "avatar_url", "role",
			"is_banned", "ban_reason", "login_count", "last_login_at", "updated_at").
		Updates(u)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []uuid.UUID
		if err := tx.Model(&models.Confession{}).Where("author_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}
		if err := deleteConfessions(tx, owned); err != nil {
			return err
		}

		var touched, more, likedComments, authored []uuid.UUID
		if err := tx.Model(&models.Like{}).Where("user_id = ?", id).Distinct().Pluck("confession_id", &touched).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Distinct().Pluck("confession_id", &more).Error; err != nil {
			return err
		}
		touched = append(touched, more...)
		if err := tx.Model(&models.CommentLike{}).Where("user_id = ?", id).Pluck("comment_id", &likedComments).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Pluck("id", &authored).Error; err != nil {
			return err
		}
		tree, err := commentTree(tx, authored)
		if err != nil {
			return err
		}
		if err := deleteComments(tx, tree); err != nil {
			return err
		}

		cleanup := []struct {
			model interface{}
			where string
			args  []interface{}
		}{
			{&models.Like{}, "user_id = ?", []interface{}{id}},
			{&models.CommentLike{}, "user_id = ?", []interface{}{id}},
			{&models.Bookmark{}, "user_id = ?", []interface{}{id}},
			{&models.Follow{}, "follower_id = ? OR following_id = ?", []interface{}{id, id}},
			{&models.UserBadge{}, "user_id = ?", []interface{}{id}},
			{&models.ActivityLog{}, "user_id = ?", []interface{}{id}},
		}
		for _, c := range cleanup {
			if err := tx.Where(c.where, c.args...).Delete(c.model).Error; err != nil {
				return err
			}
		}

		if err := recountComments(tx, likedComments); err != nil {
			return err
		}
		if err := recountConfessions(tx, touched); err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	}))
}

func (r *userRepo) List(ctx context.Context, f repository.UserFilter, p repository.Page) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(userScope(f)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var users []models.User
	err := r.db.WithContext(ctx).Scopes(userScope(f), paginate(p)).
		Order("created_at DESC").
		Find(&users).Error
	return users, total, translate(err)
}

func (r *userRepo) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(userScope(f)).Count(&total).Error
	return total, translate(err)
}

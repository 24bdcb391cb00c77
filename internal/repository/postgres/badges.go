package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type badgeRepo struct{ db *gorm.DB }

func (r *badgeRepo) List(ctx context.Context) ([]models.Badge, error) {
	badges := []models.Badge{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&badges).Error
	return badges, translate(err)
}

func (r *badgeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Badge, error) {
	var b models.Badge
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *badgeRepo) Upsert(ctx context.Context, b *models.Badge) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "icon_url", "color", "criteria", "threshold"}),
	}).Create(b).Error
	return translate(err)
}

func (r *badgeRepo) Award(ctx context.Context, ub *models.UserBadge) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(ub).Error)
}

func (r *badgeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	owned := []models.UserBadge{}
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&owned).Error
	return owned, translate(err)
}

type reportRepo struct{ db *gorm.DB }

func (r *reportRepo) Create(ctx context.Context, rp *models.Report) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rp).Error)
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var rp models.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").First(&rp, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rp, nil
}

func (r *reportRepo) Save(ctx context.Context, rp *models.Report) error {
	result := r.db.WithContext(ctx).Model(rp).
		Select("status", "admin_notes", "resolved_by", "resolved_at", "updated_at").
		Updates(rp)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func reportScope(status models.ReportStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}
}

func (r *reportRepo) List(ctx context.Context, status models.ReportStatus, p repository.Page) ([]models.Report, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).Scopes(reportScope(status)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	reports := []models.Report{}
	err := r.db.WithContext(ctx).
		Scopes(reportScope(status), paginate(p)).
		Preload("Reporter").
		Order("created_at DESC").
		Find(&reports).Error
	return reports, total, translate(err)
}

func (r *reportRepo) Count(ctx context.Context, status models.ReportStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Scopes(reportScope(status)).Count(&total).Error
	return total, translate(err)
}

type auditRepo struct{ db *gorm.DB }

func (r *auditRepo) LogActivity(ctx context.Context, l *models.ActivityLog) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *auditRepo) LogModeration(ctx context.Context, l *models.ModerationLog) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *auditRepo) RecentActivity(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error) {
	logs := []models.ActivityLog{}
	db := r.db.WithContext(ctx).Preload("User")
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Order("created_at DESC").Find(&logs).Error
	return logs, translate(err)
}

func moderationScope(f repository.ModerationLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ModeratorID != nil {
			db = db.Where("moderator_id = ?", *f.ModeratorID)
		}
		return db.Scopes(since("created_at", f.CreatedSince))
	}
}

func (r *auditRepo) ListModeration(ctx context.Context, f repository.ModerationLogFilter, limit int) ([]models.ModerationLog, error) {
	logs := []models.ModerationLog{}
	db := r.db.WithContext(ctx).Scopes(moderationScope(f)).Preload("Moderator")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Order("created_at DESC").Find(&logs).Error
	return logs, translate(err)
}

func (r *auditRepo) CountModeration(ctx context.Context, f repository.ModerationLogFilter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ModerationLog{}).Scopes(moderationScope(f)).Count(&n).Error
	return n, translate(err)
}

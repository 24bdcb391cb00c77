package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[string]bool{
	repository.SortCreatedAt:     true,
	repository.SortTitle:         true,
	repository.SortTotalViews:    true,
	repository.SortTotalLikes:    true,
	repository.SortTotalComments: true,
	repository.SortUpdatedAt:     true,
}

type confessionRepo struct{ db *gorm.DB }

func confessionScope(q repository.ConfessionQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.AuthorID != nil {
			db = db.Where("author_id = ?", *q.AuthorID)
		}
		if len(q.Statuses) > 0 {
			db = db.Where("status IN ?", q.Statuses)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.Search != "" {
			like := "%" + q.Search + "%"
			db = db.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
		}
		return db.Scopes(since("created_at", q.CreatedSince))
	}
}

func (r *confessionRepo) Create(ctx context.Context, c *models.Confession) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(c).Error; err != nil {
		return translate(err)
	}
	var author models.Profile
	if err := db.First(&author, "id = ?", c.AuthorID).Error; err == nil {
		c.Author = &author
	}
	return nil
}

func (r *confessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Confession, error) {
	var c models.Confession
	if err := r.db.WithContext(ctx).Preload("Author").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Save writes the author-editable columns; counters are never overwritten here.
func (r *confessionRepo) Save(ctx context.Context, c *models.Confession) error {
	result := r.db.WithContext(ctx).Model(c).
		Select("title", "description", "category", "tags", "cover_image_url", "status", "updated_at").
		Updates(c)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *confessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, id); err != nil {
			return err
		}
		return deleteConfessions(tx, []uuid.UUID{id})
	}))
}

func (r *confessionRepo) List(ctx context.Context, q repository.ConfessionQuery, p repository.Page) ([]models.Confession, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Confession{}).Scopes(confessionScope(q)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	column := q.SortBy
	if !sortColumns[column] {
		column = repository.SortCreatedAt
	}
	var list []models.Confession
	err := r.db.WithContext(ctx).
		Scopes(confessionScope(q), paginate(p)).
		Preload("Author").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: !q.Ascending}).
		Order("created_at DESC").
		Find(&list).Error
	return list, total, translate(err)
}

func (r *confessionRepo) Count(ctx context.Context, q repository.ConfessionQuery) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Confession{}).Scopes(confessionScope(q)).Count(&total).Error
	return total, translate(err)
}

func (r *confessionRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	result := r.db.WithContext(ctx).
		Raw("UPDATE confessions SET total_views = total_views + 1 WHERE id = ? RETURNING total_views", id).
		Scan(&views)
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, repository.ErrNotFound
	}
	return views, nil
}

func (r *confessionRepo) TotalsForAuthor(ctx context.Context, authorID uuid.UUID) (repository.AuthorTotals, error) {
	var t repository.AuthorTotals
	err := r.db.WithContext(ctx).Model(&models.Confession{}).
		Select(`COUNT(*) AS confessions,
			COUNT(*) FILTER (WHERE status = ?) AS published,
			COALESCE(SUM(total_views), 0) AS views,
			COALESCE(SUM(total_likes), 0) AS likes,
			COALESCE(SUM(total_comments), 0) AS comments`, models.StatusPublished).
		Where("author_id = ?", authorID).
		Scan(&t).Error
	return t, translate(err)
}

type chapterRepo struct{ db *gorm.DB }

func (r *chapterRepo) Create(ctx context.Context, ch *models.Chapter) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConfession(tx, ch.ConfessionID); err != nil {
			return err
		}
		var last int
		if err := tx.Model(&models.Chapter{}).
			Where("confession_id = ?", ch.ConfessionID).
			Select("COALESCE(MAX(chapter_number), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		ch.ChapterNumber = last + 1
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		return recountConfessions(tx, []uuid.UUID{ch.ConfessionID})
	}))
}

func (r *chapterRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	var ch models.Chapter
	if err := r.db.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ch, nil
}

func (r *chapterRepo) Save(ctx context.Context, ch *models.Chapter) error {
	result := r.db.WithContext(ctx).Model(ch).Select("title", "content", "updated_at").Updates(ch)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *chapterRepo) ListByConfession(ctx context.Context, confessionID uuid.UUID) ([]models.Chapter, error) {
	chapters := []models.Chapter{}
	err := r.db.WithContext(ctx).
		Where("confession_id = ?", confessionID).
		Order("chapter_number ASC").
		Find(&chapters).Error
	return chapters, translate(err)
}

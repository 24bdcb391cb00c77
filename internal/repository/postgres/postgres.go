// Package postgres implements the repository contract on gorm and PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// New wires every repository to db.
func New(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:       &userRepo{db},
		Confessions: &confessionRepo{db},
		Chapters:    &chapterRepo{db},
		Comments:    &commentRepo{db},
		Engagement:  &engagementRepo{db},
		Follows:     &followRepo{db},
		Badges:      &badgeRepo{db},
		Reports:     &reportRepo{db},
		Audit:       &auditRepo{db},
		Probe:       &prober{db},
	}
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrDuplicate
		case pgUndefinedTable:
			return fmt.Errorf("%w: %s", repository.ErrNotProvisioned, pgErr.Message)
		}
	}
	return err
}

func paginate(p repository.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Limit > 0 {
			db = db.Limit(p.Limit)
		}
		return db.Offset(p.Offset)
	}
}

func since(column string, t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t.IsZero() {
			return db
		}
		return db.Where(column+" >= ?", t)
	}
}

// lockConfession takes a row lock so concurrent writers on the same
// confession serialize their counter refreshes.
func lockConfession(tx *gorm.DB, id uuid.UUID) error {
	var c models.Confession
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&c, "id = ?", id).Error
}

// recountConfessions rewrites the denormalized counters from their rows.
func recountConfessions(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Exec(`UPDATE confessions c SET
		total_likes = (SELECT COUNT(*) FROM likes l WHERE l.confession_id = c.id),
		total_comments = (SELECT COUNT(*) FROM comments m WHERE m.confession_id = c.id AND m.is_approved),
		total_chapters = (SELECT COUNT(*) FROM chapters h WHERE h.confession_id = c.id)
		WHERE c.id IN ?`, ids).Error
}

func recountComments(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Exec(`UPDATE comments c SET
		total_likes = (SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id)
		WHERE c.id IN ?`, ids).Error
}

// commentTree returns ids plus every transitive reply beneath them.
func commentTree(tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	all := append([]uuid.UUID(nil), ids...)
	frontier := ids
	for len(frontier) > 0 {
		var children []uuid.UUID
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

func deleteComments(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
}

func deleteConfessions(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var commentIDs []uuid.UUID
	if err := tx.Model(&models.Comment{}).Where("confession_id IN ?", ids).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteComments(tx, commentIDs); err != nil {
		return err
	}
	for _, m := range []interface{}{&models.Chapter{}, &models.Like{}, &models.Bookmark{}} {
		if err := tx.Where("confession_id IN ?", ids).Delete(m).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", ids).Delete(&models.Confession{}).Error
}

type prober struct{ db *gorm.DB }

func (p *prober) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *prober) MissingTables(ctx context.Context) ([]string, error) {
	if err := p.Ping(ctx); err != nil {
		return nil, err
	}
	migrator := p.db.WithContext(ctx).Migrator()
	var missing []string
	for _, name := range models.TableNames {
		if !migrator.HasTable(name) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// pageOf clamps page/limit and converts them to an offset window.
func pageOf(page, limit, fallback int) (repository.Page, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return repository.Page{Limit: limit, Offset: (page - 1) * limit}, page, limit
}

// auditor writes activity and moderation rows. Failures are logged and
// swallowed: the primary write has already succeeded.
type auditor struct {
	repo repository.AuditRepository
}

func (a auditor) activity(ctx context.Context, userID uuid.UUID, action, targetType string, targetID uuid.UUID, meta datatypes.JSONMap) {
	entry := &models.ActivityLog{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID.String(),
		Metadata:   meta,
	}
	if err := a.repo.LogActivity(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "activity log write failed", "action", action, "user_id", userID.String(), "error", err)
	}
}

func (a auditor) moderation(ctx context.Context, moderatorID uuid.UUID, action, targetType string, targetID uuid.UUID, reason string, meta datatypes.JSONMap) {
	entry := &models.ModerationLog{
		ModeratorID: moderatorID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID.String(),
		Reason:      reason,
		Metadata:    meta,
	}
	if err := a.repo.LogModeration(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "moderation log write failed", "action", action, "user_id", moderatorID.String(), "error", err)
	}
}

// requireRole re-reads the actor so a stale token role is never trusted.
func requireRole(ctx context.Context, users repository.UserRepository, actorID uuid.UUID, allowed models.RoleSet, denied *Error) (*models.User, error) {
	actor, err := users.FindByID(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, ErrInvalidToken, "load actor")
	}
	if actor.IsBanned {
		return nil, ErrAccountSuspended
	}
	if !allowed.Allows(actor.Role) {
		return nil, denied
	}
	return actor, nil
}

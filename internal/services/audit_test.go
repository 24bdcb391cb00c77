package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
)

type failingAudit struct {
	mock.Mock
}

func (m *failingAudit) LogActivity(ctx context.Context, l *models.ActivityLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *failingAudit) LogModeration(ctx context.Context, l *models.ModerationLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *failingAudit) RecentActivity(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.ActivityLog), args.Error(1)
}

func (m *failingAudit) ListModeration(ctx context.Context, f repository.ModerationLogFilter, limit int) ([]models.ModerationLog, error) {
	args := m.Called(ctx, f, limit)
	return args.Get(0).([]models.ModerationLog), args.Error(1)
}

func (m *failingAudit) CountModeration(ctx context.Context, f repository.ModerationLogFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func TestAuditFailureDoesNotFailPrimaryWrite(t *testing.T) {
	f := newFixture(t)
	audit := &failingAudit{}
	down := errors.New("audit table locked")
	audit.On("LogActivity", mock.Anything, mock.MatchedBy(func(l *models.ActivityLog) bool {
		return l.Action == "confession_created"
	})).Return(down).Once()
	audit.On("LogModeration", mock.Anything, mock.Anything).Return(down).Once()

	store := *f.store
	store.Audit = audit
	badges := NewBadgeService(&store)
	confessions := NewConfessionService(&store, badges)
	moderation := NewModeratorService(&store, badges)

	author := f.user(t, "author", models.RoleUser)
	mod := f.user(t, "mod", models.RoleModerator)

	c, err := confessions.Create(f.ctx, author, &dto.CreateConfessionRequest{Title: "Hello World"})
	require.NoError(t, err)
	stored, err := f.store.Confessions.FindByID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)

	published, err := moderation.ModerateConfession(f.ctx, mod.ID, c.ID, &dto.ModerateRequest{Action: ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.Status)

	audit.AssertExpectations(t)
}

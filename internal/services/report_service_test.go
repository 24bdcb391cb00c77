package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func TestReportNeedsTarget(t *testing.T) {
	f := newFixture(t)
	reporter := f.user(t, "reporter", models.RoleUser)

	_, err := f.reports.Create(f.ctx, reporter, &dto.CreateReportRequest{Reason: "spam"})
	assert.ErrorIs(t, err, ErrReportTarget)

	missing := uuid.NewString()
	_, err = f.reports.Create(f.ctx, reporter, &dto.CreateReportRequest{ConfessionID: &missing, Reason: "spam"})
	assert.ErrorIs(t, err, ErrConfessionNotFound)

	_, err = f.reports.Create(f.ctx, reporter, &dto.CreateReportRequest{ReportedUserID: &missing, Reason: "   "})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestReportLifecycle(t *testing.T) {
	f := newFixture(t)
	reporter := f.user(t, "reporter", models.RoleUser)
	author := f.user(t, "author", models.RoleMember)
	mod := f.user(t, "mod", models.RoleModerator)
	c := f.confession(t, author, "Hello World", models.StatusPublished)

	target := c.ID.String()
	report, err := f.reports.Create(f.ctx, reporter, &dto.CreateReportRequest{ConfessionID: &target, Reason: "harassment"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)

	_, err = f.reports.List(f.ctx, reporter.ID, "", 1, 10)
	assert.ErrorIs(t, err, ErrModeratorRequired)

	pending, err := f.reports.List(f.ctx, mod.ID, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, pending.Data, 1)

	_, err = f.reports.List(f.ctx, mod.ID, "escalated", 1, 10)
	assert.Equal(t, KindValidation, KindOf(err))

	resolved, err := f.reports.Update(f.ctx, mod.ID, report.ID, &dto.UpdateReportRequest{Status: "resolved", AdminNotes: "removed the post"})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, mod.ID, *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	pending, err = f.reports.List(f.ctx, mod.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pending.Data)
	all, err := f.reports.List(f.ctx, mod.ID, "all", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all.Data, 1)

	reopened, err := f.reports.Update(f.ctx, mod.ID, report.ID, &dto.UpdateReportRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedBy)

	_, err = f.reports.Update(f.ctx, mod.ID, uuid.New(), &dto.UpdateReportRequest{Status: "dismissed"})
	assert.ErrorIs(t, err, ErrReportNotFound)
}

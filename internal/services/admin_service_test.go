package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func TestAdminCannotTargetSelf(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)

	_, err := f.admin.UpdateRole(f.ctx, admin.ID, admin.ID, &dto.UpdateRoleRequest{Role: "user"})
	assert.ErrorIs(t, err, ErrSelfRoleChange)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.admin.SetBan(f.ctx, admin.ID, admin.ID, &dto.BanRequest{Banned: true})
	assert.ErrorIs(t, err, ErrSelfBan)

	// self-targeting wins over a malformed body
	_, err = f.admin.UpdateRole(f.ctx, admin.ID, admin.ID, &dto.UpdateRoleRequest{Role: "owner"})
	assert.ErrorIs(t, err, ErrSelfRoleChange)
	_, err = f.admin.SetBan(f.ctx, admin.ID, uuid.New(), &dto.BanRequest{Banned: true})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = f.admin.DeleteUser(f.ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrSelfDelete)

	stored, err := f.store.Users.FindByID(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.False(t, stored.IsBanned)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	mod := f.user(t, "mod", models.RoleModerator)
	target := f.user(t, "target", models.RoleUser)

	_, err := f.admin.UpdateRole(f.ctx, mod.ID, target.ID, &dto.UpdateRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, ErrAdminRequired)
	_, err = f.admin.Dashboard(f.ctx, mod.ID)
	assert.ErrorIs(t, err, ErrAdminRequired)
	_, err = f.admin.Users(f.ctx, mod.ID, dto.ListUsersQuery{})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestUpdateRoleIsLogged(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)
	target := f.user(t, "target", models.RoleUser)

	_, err := f.admin.UpdateRole(f.ctx, admin.ID, target.ID, &dto.UpdateRoleRequest{Role: "superuser"})
	assert.Equal(t, KindValidation, KindOf(err))

	updated, err := f.admin.UpdateRole(f.ctx, admin.ID, target.ID, &dto.UpdateRoleRequest{Role: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)

	logs, err := f.store.Audit.ListModeration(f.ctx, repositoryModerator(admin), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "user_role_updated", logs[0].Action)
	assert.Equal(t, "user", logs[0].Metadata["previous_role"])
	assert.Equal(t, "moderator", logs[0].Metadata["new_role"])
}

func TestBanBlocksLoginUntilLifted(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)
	reg, err := f.auth.Register(f.ctx, &dto.RegisterRequest{
		Email: "carol@example.com", Password: "secret1", Username: "carol", FullName: "Carol",
	})
	require.NoError(t, err)

	banned, err := f.admin.SetBan(f.ctx, admin.ID, reg.User.ID, &dto.BanRequest{Banned: true, Reason: " spam "})
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)
	assert.Equal(t, "spam", banned.BanReason)

	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "secret1"})
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindForbidden, se.Kind)
	assert.Equal(t, "Account suspended", se.Message)
	assert.Equal(t, "spam", se.Fields["reason"])

	_, err = f.auth.Authenticate(f.ctx, reg.User.ID)
	assert.ErrorIs(t, err, ErrAccountSuspended)

	lifted, err := f.admin.SetBan(f.ctx, admin.ID, reg.User.ID, &dto.BanRequest{Banned: false})
	require.NoError(t, err)
	assert.Empty(t, lifted.BanReason)
	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestAdminUsersFilterAndDashboard(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)
	f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleMember)
	_, err := f.admin.SetBan(f.ctx, admin.ID, bob.ID, &dto.BanRequest{Banned: true})
	require.NoError(t, err)

	banned, err := f.admin.Users(f.ctx, admin.ID, dto.ListUsersQuery{Banned: "banned"})
	require.NoError(t, err)
	require.Len(t, banned.Data, 1)
	assert.Equal(t, "bob", banned.Data[0].Username)

	members, err := f.admin.Users(f.ctx, admin.ID, dto.ListUsersQuery{Role: "member"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, members.Pagination.Total)

	_, err = f.admin.Users(f.ctx, admin.ID, dto.ListUsersQuery{Role: "owner"})
	assert.Equal(t, KindValidation, KindOf(err))

	dash, err := f.admin.Dashboard(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Stats.TotalUsers)
	assert.EqualValues(t, 1, dash.Stats.BannedUsers)
	assert.EqualValues(t, 3, dash.Stats.UserGrowth)
	assert.Len(t, dash.RecentUsers, 3)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root", models.RoleAdmin)
	gone := f.user(t, "gone", models.RoleMember)
	f.confession(t, gone, "Their only story", models.StatusPublished)

	require.NoError(t, f.admin.DeleteUser(f.ctx, admin.ID, gone.ID))
	_, err := f.store.Users.FindByID(f.ctx, gone.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, f.admin.DeleteUser(f.ctx, admin.ID, gone.ID), ErrUserNotFound)
}

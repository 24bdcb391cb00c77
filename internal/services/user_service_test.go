package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func TestSelfFollowRejectedForEveryRole(t *testing.T) {
	f := newFixture(t)
	for _, role := range []models.Role{models.RoleUser, models.RoleMember, models.RoleModerator, models.RoleAdmin} {
		u := f.user(t, "self_"+string(role), role)
		_, err := f.users.Follow(f.ctx, u, u.ID)
		assert.ErrorIs(t, err, ErrSelfFollow, string(role))
	}
}

func TestFollowLifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleMember)

	resp, err := f.users.Follow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, resp.Following)

	_, err = f.users.Follow(f.ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	_, err = f.users.Follow(f.ctx, alice, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	followers, err := f.users.Followers(f.ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, followers.Data, 1)
	assert.Equal(t, "alice", followers.Data[0].Username)

	following, err := f.users.Following(f.ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following.Pagination.Total)

	profile, err := f.users.ProfileByUsername(f.ctx, alice, "bob")
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.EqualValues(t, 1, profile.Followers)

	resp, err = f.users.Unfollow(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.False(t, resp.Following)
	_, err = f.users.Unfollow(f.ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestPublicProfileHidesDrafts(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	stranger := f.user(t, "stranger", models.RoleUser)
	f.confession(t, author, "Published one", models.StatusPublished)
	f.confession(t, author, "Secret draft", models.StatusDraft)

	profile, err := f.users.ProfileByID(f.ctx, nil, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.Stories)
	assert.False(t, profile.IsFollowing)

	theirs, err := f.users.Confessions(f.ctx, stranger, author.ID, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, theirs.Data, 1)
	assert.Equal(t, "Published one", theirs.Data[0].Title)

	mine, err := f.users.Confessions(f.ctx, author, author.ID, "all", 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine.Data, 2)

	_, err = f.users.ProfileByUsername(f.ctx, nil, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDashboardTotals(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	fan := f.user(t, "fan", models.RoleUser)
	pub := f.confession(t, author, "Published one", models.StatusPublished)
	f.confession(t, author, "Secret draft", models.StatusDraft)

	_, err := f.engagement.ToggleLike(f.ctx, fan.ID, pub.ID)
	require.NoError(t, err)
	_, err = f.users.Follow(f.ctx, fan, author.ID)
	require.NoError(t, err)

	dash, err := f.users.Dashboard(f.ctx, author)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dash.Stats.TotalConfessions)
	assert.EqualValues(t, 1, dash.Stats.Published)
	assert.EqualValues(t, 1, dash.Stats.TotalLikes)
	assert.EqualValues(t, 1, dash.Stats.Followers)
	assert.EqualValues(t, 0, dash.Stats.Following)
	assert.Len(t, dash.RecentStories, 2)
}

package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	b := f.user(t, "bob", models.RoleUser)
	x := f.confession(t, author, "Hello World", models.StatusPublished)

	first, err := f.engagement.ToggleLike(f.ctx, b.ID, x.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.EqualValues(t, 1, first.TotalLikes)

	second, err := f.engagement.ToggleLike(f.ctx, b.ID, x.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.EqualValues(t, 0, second.TotalLikes)

	stored, err := f.store.Confessions.FindByID(f.ctx, x.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stored.TotalLikes)
}

func TestEngagementRequiresPublishedConfession(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	b := f.user(t, "bob", models.RoleUser)
	draft := f.confession(t, author, "Draft story", models.StatusDraft)

	_, err := f.engagement.ToggleLike(f.ctx, b.ID, draft.ID)
	assert.ErrorIs(t, err, ErrUnpublishedEngagement)
	_, err = f.engagement.ToggleBookmark(f.ctx, b.ID, draft.ID)
	assert.ErrorIs(t, err, ErrUnpublishedEngagement)
	_, err = f.engagement.ToggleLike(f.ctx, b.ID, b.ID)
	assert.ErrorIs(t, err, ErrConfessionNotFound)
}

func TestBookmarksListed(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	b := f.user(t, "bob", models.RoleUser)
	x := f.confession(t, author, "Hello World", models.StatusPublished)
	y := f.confession(t, author, "Second story", models.StatusPublished)

	for _, id := range []models.Confession{*x, *y} {
		resp, err := f.engagement.ToggleBookmark(f.ctx, b.ID, id.ID)
		require.NoError(t, err)
		assert.True(t, resp.Bookmarked)
	}
	resp, err := f.engagement.ToggleBookmark(f.ctx, b.ID, y.ID)
	require.NoError(t, err)
	assert.False(t, resp.Bookmarked)

	list, err := f.engagement.Bookmarks(f.ctx, b.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	require.NotNil(t, list.Data[0].Confession)
	assert.Equal(t, "Hello World", list.Data[0].Confession.Title)
}

func TestLikesGivenBadgeUsesThresholdNotExactCount(t *testing.T) {
	f := newFixture(t)
	f.seedBadges(t, "badges:\n  - name: Engaged Member\n    criteria: likes_given\n    threshold: 2\n")
	author := f.user(t, "author", models.RoleMember)
	fan := f.user(t, "fan", models.RoleUser)

	var stories []*models.Confession
	for i := 0; i < 3; i++ {
		stories = append(stories, f.confession(t, author, fmt.Sprintf("Story number %d", i), models.StatusPublished))
	}

	_, err := f.engagement.ToggleLike(f.ctx, fan.ID, stories[0].ID)
	require.NoError(t, err)
	assert.Empty(t, f.heldBadges(t, fan))

	// an award missed at exactly the threshold is still granted above it
	_, _, err = f.store.Engagement.ToggleLike(f.ctx, fan.ID, stories[1].ID)
	require.NoError(t, err)
	_, err = f.engagement.ToggleLike(f.ctx, fan.ID, stories[2].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Engaged Member"}, f.heldBadges(t, fan))

	// unliking and liking again does not award twice
	_, err = f.engagement.ToggleLike(f.ctx, fan.ID, stories[2].ID)
	require.NoError(t, err)
	_, err = f.engagement.ToggleLike(f.ctx, fan.ID, stories[2].ID)
	require.NoError(t, err)
	assert.Len(t, f.heldBadges(t, fan), 1)
}

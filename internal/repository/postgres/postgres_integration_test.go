//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/database"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"golang.org/x/sync/errgroup"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func openStore(t *testing.T) (*repository.Store, *gorm.DB) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db), db
}

func newUser(t *testing.T, store *repository.Store) *models.User {
	t.Helper()
	name := "u" + uuid.NewString()[:12]
	u := &models.User{Email: name + "@test.local", Username: name, FullName: name, Password: "x", Role: models.RoleMember}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func newConfession(t *testing.T, store *repository.Store, author *models.User) *models.Confession {
	t.Helper()
	c := &models.Confession{
		AuthorID: author.ID,
		Title:    "A story worth telling",
		Category: models.Category("general"),
		Tags:     pq.StringArray{},
		Status:   models.StatusPublished,
	}
	require.NoError(t, store.Confessions.Create(context.Background(), c))
	return c
}

func reload(t *testing.T, store *repository.Store, id uuid.UUID) *models.Confession {
	t.Helper()
	c, err := store.Confessions.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func TestToggleLikeTwiceRestoresCounter(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	author, fan := newUser(t, store), newUser(t, store)
	c := newConfession(t, store, author)

	liked, total, err := store.Engagement.ToggleLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, total)

	liked, total, err = store.Engagement.ToggleLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, total)
	assert.EqualValues(t, 0, reload(t, store, c.ID).TotalLikes)

	saved, err := store.Engagement.ToggleBookmark(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = store.Engagement.ToggleBookmark(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, saved)
	n, err := store.Engagement.CountBookmarks(ctx, &fan.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentLikeToggleRestoresCounter(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	author, fan := newUser(t, store), newUser(t, store)
	c := newConfession(t, store, author)
	comment := &models.Comment{ConfessionID: c.ID, UserID: author.ID, Content: "thanks for reading", IsApproved: true}
	require.NoError(t, store.Comments.Create(ctx, comment))
	assert.EqualValues(t, 1, reload(t, store, c.ID).TotalComments)

	liked, total, err := store.Comments.ToggleLike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, total)

	liked, total, err = store.Comments.ToggleLike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, total)
}

func TestConcurrentLikesAndViewsAreCounted(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	c := newConfession(t, store, newUser(t, store))

	const n = 12
	fans := make([]*models.User, n)
	for i := range fans {
		fans[i] = newUser(t, store)
	}

	var g errgroup.Group
	for _, fan := range fans {
		g.Go(func() error {
			_, _, err := store.Engagement.ToggleLike(ctx, fan.ID, c.ID)
			return err
		})
		g.Go(func() error {
			_, err := store.Confessions.IncrementViews(ctx, c.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	got := reload(t, store, c.ID)
	assert.EqualValues(t, n, got.TotalLikes)
	assert.EqualValues(t, n, got.TotalViews)

	_, err := store.Confessions.IncrementViews(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChaptersNumberedUnderConcurrentWrites(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	c := newConfession(t, store, newUser(t, store))

	const n = 6
	chapters := make([]*models.Chapter, n)
	var g errgroup.Group
	for i := range chapters {
		chapters[i] = &models.Chapter{ConfessionID: c.ID, Title: "Part", Content: "it went on"}
		ch := chapters[i]
		g.Go(func() error { return store.Chapters.Create(ctx, ch) })
	}
	require.NoError(t, g.Wait())

	seen := map[int]bool{}
	for _, ch := range chapters {
		seen[ch.ChapterNumber] = true
	}
	for want := 1; want <= n; want++ {
		assert.True(t, seen[want], "chapter %d missing", want)
	}
	assert.EqualValues(t, n, reload(t, store, c.ID).TotalChapters)
}

func TestBadgeAwardStampsTime(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	u := newUser(t, store)
	badge := &models.Badge{Name: "Badge " + uuid.NewString()[:8], Description: "for testing"}
	require.NoError(t, store.Badges.Upsert(ctx, badge))

	before := time.Now().Add(-time.Minute)
	require.NoError(t, store.Badges.Award(ctx, &models.UserBadge{UserID: u.ID, BadgeID: badge.ID}))
	err := store.Badges.Award(ctx, &models.UserBadge{UserID: u.ID, BadgeID: badge.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	owned, err := store.Badges.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.True(t, owned[0].AwardedAt.After(before), "awarded_at = %v", owned[0].AwardedAt)
	require.NotNil(t, owned[0].Badge)
	assert.Equal(t, badge.Name, owned[0].Badge.Name)
}

func TestDeleteUserCascadesAndRecounts(t *testing.T) {
	store, db := openStore(t)
	ctx := context.Background()
	author, fan := newUser(t, store), newUser(t, store)
	c := newConfession(t, store, author)
	fanStory := newConfession(t, store, fan)

	_, _, err := store.Engagement.ToggleLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	_, err = store.Engagement.ToggleBookmark(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	root := &models.Comment{ConfessionID: c.ID, UserID: author.ID, Content: "welcome", IsApproved: true}
	require.NoError(t, store.Comments.Create(ctx, root))
	reply := &models.Comment{ConfessionID: c.ID, UserID: fan.ID, ParentID: &root.ID, Content: "glad to be here", IsApproved: true}
	require.NoError(t, store.Comments.Create(ctx, reply))
	_, _, err = store.Comments.ToggleLike(ctx, fan.ID, root.ID)
	require.NoError(t, err)
	require.NoError(t, store.Follows.Create(ctx, &models.Follow{FollowerID: fan.ID, FollowingID: author.ID}))

	require.NoError(t, store.Users.Delete(ctx, fan.ID))

	got := reload(t, store, c.ID)
	assert.Zero(t, got.TotalLikes)
	assert.EqualValues(t, 1, got.TotalComments)

	remaining, err := store.Comments.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Zero(t, remaining.TotalLikes)

	_, err = store.Comments.FindByID(ctx, reply.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Confessions.FindByID(ctx, fanStory.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	following, err := store.Follows.Exists(ctx, fan.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	var orphans int64
	require.NoError(t, db.Model(&models.Bookmark{}).Where("user_id = ?", fan.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	assert.ErrorIs(t, store.Users.Delete(ctx, fan.ID), repository.ErrNotFound)
}

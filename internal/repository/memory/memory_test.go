package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
)

func seedUser(t *testing.T, s *repository.Store, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Username: name, FullName: name, Password: "x"}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	assert.Equal(t, models.RoleUser, alice.Role)

	err := s.Users.Create(ctx, &models.User{Email: "ALICE@example.com", Username: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	err = s.Users.Create(ctx, &models.User{Email: "new@example.com", Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := s.Users.FindByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = s.Users.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountersFollowRows(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := seedUser(t, s, "author")
	fan := seedUser(t, s, "fan")
	c := &models.Confession{AuthorID: author.ID, Title: "Hello World", Status: models.StatusPublished}
	require.NoError(t, s.Confessions.Create(ctx, c))

	liked, total, err := s.Engagement.ToggleLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, total)

	require.NoError(t, s.Comments.Create(ctx, &models.Comment{ConfessionID: c.ID, UserID: fan.ID, Content: "hi", IsApproved: true}))
	require.NoError(t, s.Comments.Create(ctx, &models.Comment{ConfessionID: c.ID, UserID: fan.ID, Content: "held", IsApproved: false}))
	require.NoError(t, s.Chapters.Create(ctx, &models.Chapter{ConfessionID: c.ID, Title: "One", Content: "..."}))

	got, err := s.Confessions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.TotalLikes)
	assert.EqualValues(t, 1, got.TotalComments, "only approved comments count")
	assert.EqualValues(t, 1, got.TotalChapters)

	// a stale copy cannot overwrite counters
	c.Title = "Hello Again"
	require.NoError(t, s.Confessions.Save(ctx, c))
	got, err = s.Confessions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello Again", got.Title)
	assert.EqualValues(t, 1, got.TotalLikes)

	_, _, err = s.Engagement.ToggleLike(ctx, fan.ID, author.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConcurrentViews(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := seedUser(t, s, "author")
	c := &models.Confession{AuthorID: author.ID, Title: "Hello World", Status: models.StatusPublished}
	require.NoError(t, s.Confessions.Create(ctx, c))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Confessions.IncrementViews(ctx, c.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Confessions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.TotalViews)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := seedUser(t, s, "author")
	fan := seedUser(t, s, "fan")
	c := &models.Confession{AuthorID: author.ID, Title: "Hello World", Status: models.StatusPublished}
	require.NoError(t, s.Confessions.Create(ctx, c))
	_, _, err := s.Engagement.ToggleLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: fan.ID, FollowingID: author.ID}))

	require.NoError(t, s.Users.Delete(ctx, fan.ID))

	got, err := s.Confessions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.TotalLikes)
	_, followers, err := s.Follows.Followers(ctx, author.ID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, followers)

	require.NoError(t, s.Users.Delete(ctx, author.ID))
	_, err = s.Confessions.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Users.Delete(ctx, author.ID), repository.ErrNotFound)
}

func TestFollowDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedUser(t, s, "a_user")
	b := seedUser(t, s, "b_user")
	require.NoError(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	assert.ErrorIs(t, s.Follows.Create(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Follows.Delete(ctx, b.ID, a.ID), repository.ErrNotFound)
}

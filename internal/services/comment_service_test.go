package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func TestCommentOnDraftRejected(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	draft := f.confession(t, author, "Draft story", models.StatusDraft)

	_, err := f.comments.Create(f.ctx, author, draft.ID, &dto.CreateCommentRequest{Content: "First!"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnpublishedConfession)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Cannot comment on unpublished confession", ErrUnpublishedConfession.Message)
}

func TestRepliesStayOneLevelDeep(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	reader := f.user(t, "reader", models.RoleUser)
	c := f.confession(t, author, "Hello World", models.StatusPublished)

	root, err := f.comments.Create(f.ctx, reader, c.ID, &dto.CreateCommentRequest{Content: "Lovely story"})
	require.NoError(t, err)
	assert.True(t, root.IsApproved)

	rootID := root.ID.String()
	reply, err := f.comments.Create(f.ctx, author, c.ID, &dto.CreateCommentRequest{Content: "Thank you", ParentID: &rootID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	replyID := reply.ID.String()
	nested, err := f.comments.Create(f.ctx, reader, c.ID, &dto.CreateCommentRequest{Content: "You're welcome", ParentID: &replyID})
	require.NoError(t, err)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, root.ID, *nested.ParentID, "reply to a reply attaches to the root")

	threads, err := f.comments.Threads(f.ctx, nil, c.ID, dto.ListCommentsQuery{})
	require.NoError(t, err)
	require.Len(t, threads.Data, 1)
	assert.Len(t, threads.Data[0].Replies, 2)

	stored, err := f.store.Confessions.FindByID(f.ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored.TotalComments)
}

func TestParentMustBelongToConfession(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	one := f.confession(t, author, "Story one", models.StatusPublished)
	two := f.confession(t, author, "Story two", models.StatusPublished)

	parent, err := f.comments.Create(f.ctx, author, one.ID, &dto.CreateCommentRequest{Content: "On story one"})
	require.NoError(t, err)

	parentID := parent.ID.String()
	_, err = f.comments.Create(f.ctx, author, two.ID, &dto.CreateCommentRequest{Content: "Misplaced", ParentID: &parentID})
	assert.ErrorIs(t, err, ErrParentMismatch)
}

func TestFlaggedCommentHeldForReview(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	spammer := f.user(t, "spammer", models.RoleUser)
	mod := f.user(t, "mod", models.RoleModerator)
	c := f.confession(t, author, "Hello World", models.StatusPublished)

	held, err := f.comments.Create(f.ctx, spammer, c.ID, &dto.CreateCommentRequest{Content: "visit https://example.com now"})
	require.NoError(t, err)
	assert.False(t, held.IsApproved)

	threads, err := f.comments.Threads(f.ctx, nil, c.ID, dto.ListCommentsQuery{})
	require.NoError(t, err)
	assert.Empty(t, threads.Data)

	approved, err := f.moderator.ModerateComment(f.ctx, mod.ID, held.ID, &dto.ModerateRequest{Action: ActionApprove})
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ModeratedBy)
	assert.Equal(t, mod.ID, *approved.ModeratedBy)

	threads, err = f.comments.Threads(f.ctx, nil, c.ID, dto.ListCommentsQuery{})
	require.NoError(t, err)
	assert.Len(t, threads.Data, 1)
}

func TestCommentEditAndDeletePermissions(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	writer := f.user(t, "writer", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	mod := f.user(t, "mod", models.RoleModerator)
	c := f.confession(t, author, "Hello World", models.StatusPublished)

	comment, err := f.comments.Create(f.ctx, writer, c.ID, &dto.CreateCommentRequest{Content: "Original"})
	require.NoError(t, err)

	_, err = f.comments.Update(f.ctx, other, c.ID, comment.ID, &dto.UpdateCommentRequest{Content: "Edited"})
	assert.ErrorIs(t, err, ErrNotCommentOwner)
	_, err = f.comments.Update(f.ctx, mod, c.ID, comment.ID, &dto.UpdateCommentRequest{Content: "Edited"})
	assert.ErrorIs(t, err, ErrNotCommentOwner, "moderators do not edit other people's words")

	edited, err := f.comments.Update(f.ctx, writer, c.ID, comment.ID, &dto.UpdateCommentRequest{Content: "Edited"})
	require.NoError(t, err)
	assert.Equal(t, "Edited", edited.Content)

	assert.ErrorIs(t, f.comments.Delete(f.ctx, other, c.ID, comment.ID), ErrNotCommentOwner)
	require.NoError(t, f.comments.Delete(f.ctx, mod, c.ID, comment.ID))
	_, err = f.store.Comments.FindByID(f.ctx, comment.ID)
	assert.Error(t, err)
}

func TestCommentLikeToggle(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", models.RoleMember)
	reader := f.user(t, "reader", models.RoleUser)
	c := f.confession(t, author, "Hello World", models.StatusPublished)
	comment, err := f.comments.Create(f.ctx, author, c.ID, &dto.CreateCommentRequest{Content: "Pinned note"})
	require.NoError(t, err)

	on, err := f.comments.ToggleLike(f.ctx, reader, c.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, on.Liked)
	assert.EqualValues(t, 1, on.TotalLikes)

	off, err := f.comments.ToggleLike(f.ctx, reader, c.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, off.Liked)
	assert.EqualValues(t, 0, off.TotalLikes)
}

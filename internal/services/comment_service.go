package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/datatypes"
)

type CommentService struct {
	store  *repository.Store
	filter *ContentFilter
	audit  auditor
}

func NewCommentService(store *repository.Store, filter *ContentFilter) *CommentService {
	return &CommentService{store: store, filter: filter, audit: auditor{store.Audit}}
}

// Threads lists approved top-level comments, each carrying its approved replies.
func (s *CommentService) Threads(ctx context.Context, viewer *models.User, confessionID uuid.UUID, q dto.ListCommentsQuery) (*dto.ListResponse[models.Comment], error) {
	c, err := s.store.Confessions.FindByID(ctx, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if !canView(c, viewer) {
		return nil, ErrConfessionForbidden
	}

	sort := q.Sort
	switch sort {
	case repository.CommentsNewest, repository.CommentsOldest, repository.CommentsPopular:
	default:
		sort = repository.CommentsNewest
	}
	window, page, limit := pageOf(q.Page, q.Limit, 20)
	items, total, err := s.store.Comments.ListThreads(ctx, confessionID, sort, window)
	if err != nil {
		return nil, storeErr(err, nil, "list comments")
	}
	return &dto.ListResponse[models.Comment]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// Create posts a comment or a reply. Replies to replies attach to the
// thread's root so threads stay one level deep. Text the content filter
// flags is stored unapproved and waits for a moderator.
func (s *CommentService) Create(ctx context.Context, actor *models.User, confessionID uuid.UUID, req *dto.CreateCommentRequest) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.store.Confessions.FindByID(ctx, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if c.Status != models.StatusPublished {
		return nil, ErrUnpublishedConfession
	}

	comment := &models.Comment{
		ConfessionID: confessionID,
		UserID:       actor.ID,
		Content:      req.Content,
	}
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, _ := uuid.Parse(*req.ParentID)
		parent, err := s.store.Comments.FindByID(ctx, parentID)
		if err != nil {
			return nil, storeErr(err, ErrParentMismatch, "load parent comment")
		}
		if parent.ConfessionID != confessionID {
			return nil, ErrParentMismatch
		}
		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		comment.ParentID = &root
	}

	ok, reason := s.filter.Check(comment.Content)
	comment.IsApproved = ok
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "create comment")
	}
	comment.User = actor.Profile()

	meta := datatypes.JSONMap{"confession_id": confessionID.String()}
	if !ok {
		meta["held_for_review"] = reason
	}
	s.audit.activity(ctx, actor.ID, "comment_created", "comment", comment.ID, meta)
	return comment, nil
}

// load fetches a comment and checks it belongs to confessionID.
func (s *CommentService) load(ctx context.Context, confessionID, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, ErrCommentNotFound, "load comment")
	}
	if comment.ConfessionID != confessionID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// Update edits a comment's text. Only its author may do so. Edited text is
// filtered again.
func (s *CommentService) Update(ctx context.Context, actor *models.User, confessionID, commentID uuid.UUID, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, confessionID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID {
		return nil, ErrNotCommentOwner
	}
	comment.Content = req.Content
	if ok, _ := s.filter.Check(req.Content); !ok {
		comment.IsApproved = false
	}
	if err := s.store.Comments.Save(ctx, comment); err != nil {
		return nil, storeErr(err, ErrCommentNotFound, "save comment")
	}
	comment.User = actor.Profile()
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *models.User, confessionID, commentID uuid.UUID) error {
	comment, err := s.load(ctx, confessionID, commentID)
	if err != nil {
		return err
	}
	owner := comment.UserID == actor.ID
	if !owner && !canModerate(actor) {
		return ErrNotCommentOwner
	}
	if err := s.store.Comments.Delete(ctx, commentID); err != nil {
		return storeErr(err, ErrCommentNotFound, "delete comment")
	}
	if !owner {
		s.audit.moderation(ctx, actor.ID, "comment_deleted", "comment", commentID, "", datatypes.JSONMap{
			"confession_id": confessionID.String(),
			"author_id":     comment.UserID.String(),
		})
	}
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, actor *models.User, confessionID, commentID uuid.UUID) (*dto.LikeResponse, error) {
	if _, err := s.load(ctx, confessionID, commentID); err != nil {
		return nil, err
	}
	liked, total, err := s.store.Comments.ToggleLike(ctx, actor.ID, commentID)
	if err != nil {
		return nil, storeErr(err, ErrCommentNotFound, "toggle comment like")
	}
	return &dto.LikeResponse{Liked: liked, TotalLikes: total}, nil
}

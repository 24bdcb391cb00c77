package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Moderation actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionArchive = "archive"
)

// logged maps an action to the verb recorded in the moderation log.
var logged = map[string]string{
	ActionApprove: "approved",
	ActionReject:  "rejected",
	ActionArchive: "archived",
}

var ErrInvalidTransition = newError(KindValidation, "Only draft or published confessions can be approved")

type ModeratorService struct {
	store  *repository.Store
	badges *BadgeService
	audit  auditor
}

func NewModeratorService(store *repository.Store, badges *BadgeService) *ModeratorService {
	return &ModeratorService{store: store, badges: badges, audit: auditor{store.Audit}}
}

func (s *ModeratorService) moderator(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	return requireRole(ctx, s.store.Users, actorID, models.ModeratorOrAdmin, ErrModeratorRequired)
}

// Queue lists content for review. Comments default to the unapproved ones,
// confessions to drafts.
func (s *ModeratorService) Queue(ctx context.Context, actorID uuid.UUID, q dto.ModerationQuery) (*dto.ModerationQueue, error) {
	if _, err := s.moderator(ctx, actorID); err != nil {
		return nil, err
	}
	window, page, limit := pageOf(q.Page, q.Limit, 20)
	out := &dto.ModerationQueue{Type: q.Type, Status: q.Status}

	switch q.Type {
	case "", "comments":
		out.Type = "comments"
		filter := repository.CommentFilter{}
		switch q.Status {
		case "", "pending":
			out.Status = "pending"
			pending := false
			filter.Approved = &pending
		case "approved":
			approved := true
			filter.Approved = &approved
		case "all":
		default:
			return nil, invalid("status must be one of: pending, approved, all")
		}
		items, total, err := s.store.Comments.List(ctx, filter, window)
		if err != nil {
			return nil, storeErr(err, nil, "list comments")
		}
		out.Comments = items
		out.Pagination = dto.NewPagination(page, limit, total)

	case "confessions":
		query := repository.ConfessionQuery{SortBy: repository.SortCreatedAt}
		switch q.Status {
		case "", "pending":
			out.Status = string(models.StatusDraft)
			query.Statuses = []models.ConfessionStatus{models.StatusDraft}
		case "all":
		default:
			st := models.ConfessionStatus(q.Status)
			if !st.AuthorSettable() && st != models.StatusRemoved {
				return nil, invalid("status must be one of: draft, published, archived, removed, all")
			}
			query.Statuses = []models.ConfessionStatus{st}
		}
		items, total, err := s.store.Confessions.List(ctx, query, window)
		if err != nil {
			return nil, storeErr(err, nil, "list confessions")
		}
		out.Confessions = items
		out.Pagination = dto.NewPagination(page, limit, total)

	default:
		return nil, invalid("type must be one of: confessions, comments")
	}
	return out, nil
}

// ModerateComment approves or rejects a comment.
func (s *ModeratorService) ModerateComment(ctx context.Context, actorID, commentID uuid.UUID, req *dto.ModerateRequest) (*models.Comment, error) {
	actor, err := s.moderator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Action != ActionApprove && req.Action != ActionReject {
		return nil, ErrInvalidAction
	}
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, ErrCommentNotFound, "load comment")
	}

	was := comment.IsApproved
	now := time.Now().UTC()
	comment.IsApproved = req.Action == ActionApprove
	comment.ModeratedBy = &actor.ID
	comment.ModeratedAt = &now
	if err := s.store.Comments.Save(ctx, comment); err != nil {
		return nil, storeErr(err, ErrCommentNotFound, "save comment")
	}

	s.audit.moderation(ctx, actor.ID, "comment_"+logged[req.Action], "comment", comment.ID, strings.TrimSpace(req.Reason), datatypes.JSONMap{
		"confession_id":     comment.ConfessionID.String(),
		"previous_approved": was,
		"approved":          comment.IsApproved,
	})
	return comment, nil
}

// ModerateConfession moves a confession through the moderation state
// machine: approve publishes a draft or published confession, reject
// removes and archive archives from any state.
func (s *ModeratorService) ModerateConfession(ctx context.Context, actorID, confessionID uuid.UUID, req *dto.ModerateRequest) (*models.Confession, error) {
	actor, err := s.moderator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.store.Confessions.FindByID(ctx, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}

	previous := c.Status
	switch req.Action {
	case ActionApprove:
		if previous != models.StatusDraft && previous != models.StatusPublished {
			return nil, ErrInvalidTransition
		}
		c.Status = models.StatusPublished
	case ActionReject:
		c.Status = models.StatusRemoved
	case ActionArchive:
		c.Status = models.StatusArchived
	default:
		return nil, ErrInvalidAction
	}
	if err := s.store.Confessions.Save(ctx, c); err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "save confession")
	}

	s.audit.moderation(ctx, actor.ID, "confession_"+logged[req.Action], "confession", c.ID, strings.TrimSpace(req.Reason), datatypes.JSONMap{
		"previous_status": string(previous),
		"new_status":      string(c.Status),
		"author_id":       c.AuthorID.String(),
	})
	if c.Status == models.StatusPublished && previous != models.StatusPublished {
		s.badges.Evaluate(ctx, c.AuthorID, TriggerPublished)
	}
	return c, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *ModeratorService) Dashboard(ctx context.Context, actorID uuid.UUID) (*dto.ModeratorDashboard, error) {
	actor, err := s.moderator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := &dto.ModeratorDashboard{}
	st := &out.Stats
	pending := false
	mine := repository.ModerationLogFilter{ModeratorID: &actor.ID}
	today := repository.ModerationLogFilter{ModeratorID: &actor.ID, CreatedSince: startOfDay(time.Now())}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.PendingComments, err = s.store.Comments.Count(gctx, repository.CommentFilter{Approved: &pending})
		return err
	})
	g.Go(func() (err error) {
		st.PendingConfessions, err = s.store.Confessions.Count(gctx, repository.ConfessionQuery{
			Statuses: []models.ConfessionStatus{models.StatusDraft},
		})
		return err
	})
	g.Go(func() (err error) {
		st.TotalModerated, err = s.store.Audit.CountModeration(gctx, mine)
		return err
	})
	g.Go(func() (err error) {
		st.TodayModerated, err = s.store.Audit.CountModeration(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivity, err = s.store.Audit.ListModeration(gctx, repository.ModerationLogFilter{}, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, nil, "load moderation stats")
	}
	return out, nil
}

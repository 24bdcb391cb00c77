package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/datatypes"
)

type ReportService struct {
	store *repository.Store
	audit auditor
}

func NewReportService(store *repository.Store) *ReportService {
	return &ReportService{store: store, audit: auditor{store.Audit}}
}

func parseOptionalID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}

// Create files a report against a confession, a comment or a user. Every
// referenced target must exist.
func (s *ReportService) Create(ctx context.Context, actor *models.User, req *dto.CreateReportRequest) (*models.Report, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	r := &models.Report{
		ReporterID:     actor.ID,
		ConfessionID:   parseOptionalID(req.ConfessionID),
		CommentID:      parseOptionalID(req.CommentID),
		ReportedUserID: parseOptionalID(req.ReportedUserID),
		Reason:         req.Reason,
		Description:    strings.TrimSpace(req.Description),
		Status:         models.ReportPending,
	}
	if r.ConfessionID == nil && r.CommentID == nil && r.ReportedUserID == nil {
		return nil, ErrReportTarget
	}
	if r.ConfessionID != nil {
		if _, err := s.store.Confessions.FindByID(ctx, *r.ConfessionID); err != nil {
			return nil, storeErr(err, ErrConfessionNotFound, "load confession")
		}
	}
	if r.CommentID != nil {
		if _, err := s.store.Comments.FindByID(ctx, *r.CommentID); err != nil {
			return nil, storeErr(err, ErrCommentNotFound, "load comment")
		}
	}
	if r.ReportedUserID != nil {
		if _, err := s.store.Users.FindByID(ctx, *r.ReportedUserID); err != nil {
			return nil, storeErr(err, ErrUserNotFound, "load user")
		}
	}

	if err := s.store.Reports.Create(ctx, r); err != nil {
		return nil, storeErr(err, nil, "create report")
	}
	s.audit.activity(ctx, actor.ID, "report_created", "report", r.ID, datatypes.JSONMap{"reason": r.Reason})
	return r, nil
}

// List defaults to pending reports; status "all" returns every report.
func (s *ReportService) List(ctx context.Context, actorID uuid.UUID, status string, page, limit int) (*dto.ListResponse[models.Report], error) {
	if _, err := requireRole(ctx, s.store.Users, actorID, models.ModeratorOrAdmin, ErrModeratorRequired); err != nil {
		return nil, err
	}
	filter := models.ReportPending
	switch status {
	case "":
	case "all":
		filter = ""
	default:
		filter = models.ReportStatus(status)
		if !filter.Valid() {
			return nil, invalid("status must be one of: pending, resolved, dismissed, all")
		}
	}
	window, page, limit := pageOf(page, limit, 20)
	items, total, err := s.store.Reports.List(ctx, filter, window)
	if err != nil {
		return nil, storeErr(err, nil, "list reports")
	}
	return &dto.ListResponse[models.Report]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

func (s *ReportService) Update(ctx context.Context, actorID, reportID uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	actor, err := requireRole(ctx, s.store.Users, actorID, models.ModeratorOrAdmin, ErrModeratorRequired)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	r, err := s.store.Reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, storeErr(err, ErrReportNotFound, "load report")
	}

	previous := r.Status
	r.Status = models.ReportStatus(req.Status)
	r.AdminNotes = strings.TrimSpace(req.AdminNotes)
	if r.Status == models.ReportPending {
		r.ResolvedBy, r.ResolvedAt = nil, nil
	} else {
		now := time.Now().UTC()
		r.ResolvedBy, r.ResolvedAt = &actor.ID, &now
	}
	if err := s.store.Reports.Save(ctx, r); err != nil {
		return nil, storeErr(err, ErrReportNotFound, "save report")
	}

	meta := datatypes.JSONMap{
		"previous_status": string(previous),
		"new_status":      string(r.Status),
	}
	s.audit.activity(ctx, actor.ID, "report_status_updated", "report", r.ID, meta)
	s.audit.moderation(ctx, actor.ID, "report_"+string(r.Status), "report", r.ID, r.AdminNotes, meta)
	return r, nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/datatypes"
)

type EngagementService struct {
	store  *repository.Store
	badges *BadgeService
	audit  auditor
}

func NewEngagementService(store *repository.Store, badges *BadgeService) *EngagementService {
	return &EngagementService{store: store, badges: badges, audit: auditor{store.Audit}}
}

var ErrUnpublishedEngagement = newError(KindValidation, "Only published confessions can be liked or bookmarked")

func (s *EngagementService) published(ctx context.Context, confessionID uuid.UUID) (*models.Confession, error) {
	c, err := s.store.Confessions.FindByID(ctx, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if c.Status != models.StatusPublished {
		return nil, ErrUnpublishedEngagement
	}
	return c, nil
}

// ToggleLike flips the caller's like and reports the resulting state.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, confessionID uuid.UUID) (*dto.LikeResponse, error) {
	c, err := s.published(ctx, confessionID)
	if err != nil {
		return nil, err
	}
	liked, total, err := s.store.Engagement.ToggleLike(ctx, userID, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "toggle like")
	}

	if liked {
		s.audit.activity(ctx, userID, "confession_liked", "confession", confessionID, datatypes.JSONMap{
			"author_id": c.AuthorID.String(),
		})
		s.badges.Evaluate(ctx, userID, TriggerLiked)
	}
	return &dto.LikeResponse{Liked: liked, TotalLikes: total}, nil
}

func (s *EngagementService) ToggleBookmark(ctx context.Context, userID, confessionID uuid.UUID) (*dto.BookmarkResponse, error) {
	if _, err := s.published(ctx, confessionID); err != nil {
		return nil, err
	}
	saved, err := s.store.Engagement.ToggleBookmark(ctx, userID, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "toggle bookmark")
	}
	return &dto.BookmarkResponse{Bookmarked: saved}, nil
}

func (s *EngagementService) Bookmarks(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.ListResponse[models.Bookmark], error) {
	window, page, limit := pageOf(page, limit, defaultPageSize)
	items, total, err := s.store.Engagement.ListBookmarks(ctx, userID, window)
	if err != nil {
		return nil, storeErr(err, nil, "list bookmarks")
	}
	return &dto.ListResponse[models.Bookmark]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

type UserService struct {
	store *repository.Store
	audit auditor
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store, audit: auditor{store.Audit}}
}

func (s *UserService) ProfileByID(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.PublicProfile, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	return s.publicProfile(ctx, viewer, user)
}

func (s *UserService) ProfileByUsername(ctx context.Context, viewer *models.User, username string) (*dto.PublicProfile, error) {
	user, err := s.store.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	return s.publicProfile(ctx, viewer, user)
}

func (s *UserService) publicProfile(ctx context.Context, viewer *models.User, user *models.User) (*dto.PublicProfile, error) {
	out := &dto.PublicProfile{
		Profile:   *user.Profile(),
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
	published := []models.ConfessionStatus{models.StatusPublished}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		_, out.Followers, err = s.store.Follows.Followers(gctx, user.ID, repository.Page{Limit: 1})
		return err
	})
	g.Go(func() (err error) {
		_, out.Following, err = s.store.Follows.Following(gctx, user.ID, repository.Page{Limit: 1})
		return err
	})
	g.Go(func() (err error) {
		out.Stories, err = s.store.Confessions.Count(gctx, repository.ConfessionQuery{AuthorID: &user.ID, Statuses: published})
		return err
	})
	g.Go(func() (err error) {
		out.Badges, err = s.store.Badges.ListForUser(gctx, user.ID)
		return err
	})
	if viewer != nil && viewer.ID != user.ID {
		g.Go(func() (err error) {
			out.IsFollowing, err = s.store.Follows.Exists(gctx, viewer.ID, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, nil, "load profile counts")
	}
	return out, nil
}

// Confessions lists a user's confessions. Other callers only ever see the
// published ones; the user and moderators may filter by any status.
func (s *UserService) Confessions(ctx context.Context, viewer *models.User, userID uuid.UUID, status string, page, limit int) (*dto.ListResponse[models.Confession], error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	query := repository.ConfessionQuery{AuthorID: &userID, SortBy: repository.SortCreatedAt}
	privileged := viewer != nil && (viewer.ID == userID || canModerate(viewer))
	switch {
	case !privileged:
		query.Statuses = []models.ConfessionStatus{models.StatusPublished}
	case status != "" && status != "all":
		query.Statuses = []models.ConfessionStatus{models.ConfessionStatus(status)}
	}

	window, page, limit := pageOf(page, limit, defaultPageSize)
	items, total, err := s.store.Confessions.List(ctx, query, window)
	if err != nil {
		return nil, storeErr(err, nil, "list user confessions")
	}
	return &dto.ListResponse[models.Confession]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

func (s *UserService) Follow(ctx context.Context, actor *models.User, targetID uuid.UUID) (*dto.FollowResponse, error) {
	if actor.ID == targetID {
		return nil, ErrSelfFollow
	}
	target, err := s.store.Users.FindByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	err = s.store.Follows.Create(ctx, &models.Follow{FollowerID: actor.ID, FollowingID: targetID})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrAlreadyFollowing
	}
	if err != nil {
		return nil, storeErr(err, nil, "follow user")
	}
	s.audit.activity(ctx, actor.ID, "user_followed", "user", targetID, datatypes.JSONMap{
		"username": target.Username,
	})
	return &dto.FollowResponse{Following: true}, nil
}

func (s *UserService) Unfollow(ctx context.Context, actor *models.User, targetID uuid.UUID) (*dto.FollowResponse, error) {
	if err := s.store.Follows.Delete(ctx, actor.ID, targetID); err != nil {
		return nil, storeErr(err, ErrNotFollowing, "unfollow user")
	}
	s.audit.activity(ctx, actor.ID, "user_unfollowed", "user", targetID, nil)
	return &dto.FollowResponse{Following: false}, nil
}

func (s *UserService) Followers(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.ListResponse[models.Profile], error) {
	return s.edges(ctx, userID, page, limit, s.store.Follows.Followers)
}

func (s *UserService) Following(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.ListResponse[models.Profile], error) {
	return s.edges(ctx, userID, page, limit, s.store.Follows.Following)
}

type edgeLister func(ctx context.Context, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error)

func (s *UserService) edges(ctx context.Context, userID uuid.UUID, page, limit int, list edgeLister) (*dto.ListResponse[models.Profile], error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	window, page, limit := pageOf(page, limit, 20)
	items, total, err := list(ctx, userID, window)
	if err != nil {
		return nil, storeErr(err, nil, "list follows")
	}
	return &dto.ListResponse[models.Profile]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// Dashboard gathers the caller's own statistics with independent reads
// issued concurrently.
func (s *UserService) Dashboard(ctx context.Context, actor *models.User) (*dto.Dashboard, error) {
	out := &dto.Dashboard{User: dto.NewUserResponse(actor)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.store.Confessions.TotalsForAuthor(gctx, actor.ID)
		if err != nil {
			return err
		}
		out.Stats.TotalConfessions = totals.Confessions
		out.Stats.Published = totals.Published
		out.Stats.TotalViews = totals.Views
		out.Stats.TotalLikes = totals.Likes
		out.Stats.TotalComments = totals.Comments
		return nil
	})
	g.Go(func() (err error) {
		out.Stats.Bookmarks, err = s.store.Engagement.CountBookmarks(gctx, &actor.ID)
		return err
	})
	g.Go(func() (err error) {
		_, out.Stats.Followers, err = s.store.Follows.Followers(gctx, actor.ID, repository.Page{Limit: 1})
		return err
	})
	g.Go(func() (err error) {
		_, out.Stats.Following, err = s.store.Follows.Following(gctx, actor.ID, repository.Page{Limit: 1})
		return err
	})
	g.Go(func() (err error) {
		out.RecentStories, _, err = s.store.Confessions.List(gctx, repository.ConfessionQuery{
			AuthorID: &actor.ID,
			SortBy:   repository.SortCreatedAt,
		}, repository.Page{Limit: 5})
		return err
	})
	g.Go(func() (err error) {
		out.Badges, err = s.store.Badges.ListForUser(gctx, actor.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Activity, err = s.store.Audit.RecentActivity(gctx, &actor.ID, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, nil, "load dashboard")
	}
	out.Stats.Badges = int64(len(out.Badges))
	return out, nil
}

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

const growthWindow = 30 * 24 * time.Hour

type AdminService struct {
	store *repository.Store
	audit auditor
}

func NewAdminService(store *repository.Store) *AdminService {
	return &AdminService{store: store, audit: auditor{store.Audit}}
}

func (s *AdminService) admin(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	return requireRole(ctx, s.store.Users, actorID, models.AdminOnly, ErrAdminRequired)
}

// Dashboard returns platform totals plus the latest activity, users and
// confessions. All reads run concurrently.
func (s *AdminService) Dashboard(ctx context.Context, actorID uuid.UUID) (*dto.AdminDashboard, error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	out := &dto.AdminDashboard{}
	st := &out.Stats
	banned := true
	recent := repository.Page{Limit: 5}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalUsers, err = s.store.Users.Count(gctx, repository.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		st.BannedUsers, err = s.store.Users.Count(gctx, repository.UserFilter{Banned: &banned})
		return err
	})
	g.Go(func() (err error) {
		st.UserGrowth, err = s.store.Users.Count(gctx, repository.UserFilter{CreatedSince: time.Now().Add(-growthWindow)})
		return err
	})
	g.Go(func() (err error) {
		st.TotalConfessions, err = s.store.Confessions.Count(gctx, repository.ConfessionQuery{})
		return err
	})
	g.Go(func() (err error) {
		st.TotalComments, err = s.store.Comments.Count(gctx, repository.CommentFilter{})
		return err
	})
	g.Go(func() (err error) {
		st.TotalLikes, err = s.store.Engagement.CountLikes(gctx, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		st.TotalBookmarks, err = s.store.Engagement.CountBookmarks(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		st.PendingReports, err = s.store.Reports.Count(gctx, models.ReportPending)
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivity, err = s.store.Audit.RecentActivity(gctx, nil, 10)
		return err
	})
	g.Go(func() (err error) {
		out.RecentUsers, _, err = s.store.Users.List(gctx, repository.UserFilter{}, recent)
		return err
	})
	g.Go(func() (err error) {
		out.RecentConfessions, _, err = s.store.Confessions.List(gctx, repository.ConfessionQuery{SortBy: repository.SortCreatedAt}, recent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, nil, "load platform stats")
	}
	return out, nil
}

func (s *AdminService) Users(ctx context.Context, actorID uuid.UUID, q dto.ListUsersQuery) (*dto.ListResponse[models.User], error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	filter := repository.UserFilter{Search: strings.TrimSpace(q.Search)}
	if q.Role != "" && q.Role != "all" {
		role := models.Role(q.Role)
		if !role.Valid() {
			return nil, invalid("role must be one of: user, member, moderator, admin")
		}
		filter.Role = role
	}
	switch q.Banned {
	case "banned", "true":
		b := true
		filter.Banned = &b
	case "active", "false":
		b := false
		filter.Banned = &b
	}

	window, page, limit := pageOf(q.Page, q.Limit, 20)
	users, total, err := s.store.Users.List(ctx, filter, window)
	if err != nil {
		return nil, storeErr(err, nil, "list users")
	}
	return &dto.ListResponse[models.User]{Data: users, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// target loads the user an admin is acting on, refusing self-targeting.
func (s *AdminService) target(ctx context.Context, actor *models.User, targetID uuid.UUID, self *Error) (*models.User, error) {
	if actor.ID == targetID {
		return nil, self
	}
	user, err := s.store.Users.FindByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	return user, nil
}

func (s *AdminService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, req *dto.UpdateRoleRequest) (*models.User, error) {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.target(ctx, actor, targetID, ErrSelfRoleChange)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	previous := user.Role
	user.Role = models.Role(req.Role)
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "update role")
	}
	meta := datatypes.JSONMap{
		"previous_role": string(previous),
		"new_role":      string(user.Role),
	}
	s.audit.activity(ctx, actor.ID, "user_role_updated", "user", user.ID, meta)
	s.audit.moderation(ctx, actor.ID, "user_role_updated", "user", user.ID, "", meta)
	return user, nil
}

func (s *AdminService) SetBan(ctx context.Context, actorID, targetID uuid.UUID, req *dto.BanRequest) (*models.User, error) {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.target(ctx, actor, targetID, ErrSelfBan)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user.IsBanned = req.Banned
	user.BanReason = ""
	action := "user_unbanned"
	if req.Banned {
		user.BanReason = strings.TrimSpace(req.Reason)
		action = "user_banned"
	}
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "update ban")
	}
	s.audit.moderation(ctx, actor.ID, action, "user", user.ID, user.BanReason, datatypes.JSONMap{
		"username": user.Username,
	})
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return err
	}
	user, err := s.target(ctx, actor, targetID, ErrSelfDelete)
	if err != nil {
		return err
	}
	if err := s.store.Users.Delete(ctx, user.ID); err != nil {
		return storeErr(err, ErrUserNotFound, "delete user")
	}
	s.audit.moderation(ctx, actor.ID, "user_deleted", "user", user.ID, "", datatypes.JSONMap{
		"username": user.Username,
		"email":    user.Email,
	})
	return nil
}

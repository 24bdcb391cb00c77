package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"github.com/tausug-confession/confession-backend/internal/repository/memory"
)

type fixture struct {
	ctx   context.Context
	store *repository.Store
	cfg   *config.Config

	auth        *AuthService
	badges      *BadgeService
	confessions *ConfessionService
	comments    *CommentService
	engagement  *EngagementService
	users       *UserService
	admin       *AdminService
	moderator   *ModeratorService
	reports     *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	badges := NewBadgeService(store)
	return &fixture{
		ctx:         context.Background(),
		store:       store,
		cfg:         cfg,
		auth:        NewAuthService(store, cfg),
		badges:      badges,
		confessions: NewConfessionService(store, badges),
		comments:    NewCommentService(store, NewContentFilter()),
		engagement:  NewEngagementService(store, badges),
		users:       NewUserService(store),
		admin:       NewAdminService(store),
		moderator:   NewModeratorService(store, badges),
		reports:     NewReportService(store),
	}
}

func (f *fixture) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:    username + "@example.com",
		Password: "x",
		Username: username,
		FullName: username,
		Role:     role,
	}
	require.NoError(t, f.store.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) confession(t *testing.T, author *models.User, title string, status models.ConfessionStatus) *models.Confession {
	t.Helper()
	c := &models.Confession{
		AuthorID: author.ID,
		Title:    title,
		Category: "general",
		Status:   status,
	}
	require.NoError(t, f.store.Confessions.Create(f.ctx, c))
	return c
}

func (f *fixture) seedBadges(t *testing.T, yaml string) map[string]models.Badge {
	t.Helper()
	catalog, err := ParseBadgeCatalog([]byte(yaml))
	require.NoError(t, err)
	require.NoError(t, f.badges.Seed(f.ctx, catalog))
	all, err := f.store.Badges.List(f.ctx)
	require.NoError(t, err)
	byName := make(map[string]models.Badge, len(all))
	for _, b := range all {
		byName[b.Name] = b
	}
	return byName
}

func (f *fixture) heldBadges(t *testing.T, u *models.User) []string {
	t.Helper()
	owned, err := f.store.Badges.ListForUser(f.ctx, u.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(owned))
	for _, ub := range owned {
		if ub.Badge != nil {
			names = append(names, ub.Badge.Name)
		}
	}
	return names
}

func repositoryModerator(u *models.User) repository.ModerationLogFilter {
	return repository.ModerationLogFilter{ModeratorID: &u.ID}
}

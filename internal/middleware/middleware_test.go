package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type stubAuth map[uuid.UUID]*models.User

func (s stubAuth) Authenticate(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return u, nil
}

func sign(t *testing.T, secret string, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireRoles(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	mod := &models.User{ID: uuid.New(), Role: models.RoleModerator}
	member := &models.User{ID: uuid.New(), Role: models.RoleMember}
	users := stubAuth{mod.ID: mod, member.ID: member}

	app := fiber.New()
	app.Get("/", Auth(cfg, users), ModeratorOrAdmin(), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).ID.String())
	})

	assert.Equal(t, http.StatusOK, call(t, app, sign(t, cfg.JWTSecret, mod.ID.String())))
	assert.Equal(t, http.StatusForbidden, call(t, app, sign(t, cfg.JWTSecret, member.ID.String())))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, sign(t, cfg.JWTSecret, uuid.NewString())))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, sign(t, cfg.JWTSecret, "not-a-uuid")))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, ""))
}

func TestRequireRolesWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", AdminOnly(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, call(t, app, ""))
}

func TestOptionalAuthContinues(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	u := &models.User{ID: uuid.New(), Role: models.RoleUser}

	app := fiber.New()
	app.Get("/", OptionalAuth(cfg, stubAuth{u.ID: u}), func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.SendStatus(http.StatusNoContent)
		}
		return c.SendStatus(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, call(t, app, sign(t, cfg.JWTSecret, u.ID.String())))
	assert.Equal(t, http.StatusNoContent, call(t, app, ""))
	assert.Equal(t, http.StatusNoContent, call(t, app, "garbage"))
	assert.Equal(t, http.StatusNoContent, call(t, app, sign(t, "wrong-secret", u.ID.String())))
}

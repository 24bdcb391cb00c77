package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/services"
)

// RequireRoles gates a route on the role of the caller resolved by Auth.
// Services re-check the role against the stored account before writing.
func RequireRoles(allowed models.RoleSet, denied *services.Error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return deny(c, services.ErrTokenRequired)
		}
		if !allowed.Allows(user.Role) {
			return deny(c, denied)
		}
		return c.Next()
	}
}

func AdminOnly() fiber.Handler {
	return RequireRoles(models.AdminOnly, services.ErrAdminRequired)
}

func ModeratorOrAdmin() fiber.Handler {
	return RequireRoles(models.ModeratorOrAdmin, services.ErrModeratorRequired)
}

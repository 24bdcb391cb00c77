package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.users.Dashboard(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) ByUsername(c *fiber.Ctx) error {
	resp, err := h.users.ProfileByUsername(c.UserContext(), middleware.CurrentUser(c), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) ByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.ProfileByID(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) Confessions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.Confessions(c.UserContext(), middleware.CurrentUser(c), id,
		c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) Follow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.Follow(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.Unfollow(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) Followers(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.Followers(c.UserContext(), id, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *UserHandler) Following(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	resp, err := h.users.Following(c.UserContext(), id, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.admin.Dashboard(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	q := dto.ListUsersQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Banned: c.Query("status"),
	}
	resp, err := h.admin.Users(c.UserContext(), middleware.CurrentUser(c).ID, q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	user, err := h.admin.UpdateRole(c.UserContext(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User role updated", Data: dto.NewUserResponse(user)})
}

func (h *AdminHandler) Ban(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	user, err := h.admin.SetBan(c.UserContext(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return fail(c, err)
	}
	msg := "User unbanned"
	if user.IsBanned {
		msg = "User banned"
	}
	return c.JSON(dto.MessageResponse{Message: msg, Data: user})
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	if err := h.admin.DeleteUser(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted"})
}

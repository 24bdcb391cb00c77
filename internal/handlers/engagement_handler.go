package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type EngagementHandler struct {
	engagement *services.EngagementService
	badges     *services.BadgeService
	reports    *services.ReportService
}

func NewEngagementHandler(engagement *services.EngagementService, badges *services.BadgeService, reports *services.ReportService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement, badges: badges, reports: reports}
}

func (h *EngagementHandler) Like(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	resp, err := h.engagement.ToggleLike(c.UserContext(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *EngagementHandler) Bookmark(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	resp, err := h.engagement.ToggleBookmark(c.UserContext(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *EngagementHandler) Bookmarks(c *fiber.Ctx) error {
	resp, err := h.engagement.Bookmarks(c.UserContext(), middleware.CurrentUser(c).ID,
		c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *EngagementHandler) Badges(c *fiber.Ctx) error {
	badges, err := h.badges.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": badges})
}

func (h *EngagementHandler) UserBadges(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return invalidParam(c, "user id")
	}
	owned, err := h.badges.ForUser(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": owned})
}

func (h *EngagementHandler) AwardBadge(c *fiber.Ctx) error {
	var req dto.AwardBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	award, err := h.badges.Award(c.UserContext(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(award)
}

func (h *EngagementHandler) Report(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	report, err := h.reports.Create(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

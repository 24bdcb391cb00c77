package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

// ModerationHandler serves the moderator review queue and report triage.
type ModerationHandler struct {
	moderator *services.ModeratorService
	reports   *services.ReportService
}

func NewModerationHandler(moderator *services.ModeratorService, reports *services.ReportService) *ModerationHandler {
	return &ModerationHandler{moderator: moderator, reports: reports}
}

func (h *ModerationHandler) Queue(c *fiber.Ctx) error {
	q := dto.ModerationQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
		Type:   c.Query("type", "comments"),
		Status: c.Query("status"),
	}
	resp, err := h.moderator.Queue(c.UserContext(), middleware.CurrentUser(c).ID, q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ModerationHandler) ModerateComment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return invalidParam(c, "comment id")
	}
	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	comment, err := h.moderator.ModerateComment(c.UserContext(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(comment)
}

func (h *ModerationHandler) ModerateConfession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	confession, err := h.moderator.ModerateConfession(c.UserContext(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(confession)
}

func (h *ModerationHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.moderator.Dashboard(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	resp, err := h.reports.List(c.UserContext(), middleware.CurrentUser(c).ID,
		c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ModerationHandler) UpdateReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("reportId"))
	if err != nil {
		return invalidParam(c, "report id")
	}
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	report, err := h.reports.Update(c.UserContext(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

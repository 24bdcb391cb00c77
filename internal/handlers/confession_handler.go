package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type ConfessionHandler struct {
	confessions *services.ConfessionService
}

func NewConfessionHandler(confessions *services.ConfessionService) *ConfessionHandler {
	return &ConfessionHandler{confessions: confessions}
}

func (h *ConfessionHandler) List(c *fiber.Ctx) error {
	q := dto.ListConfessionsQuery{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy", c.Query("sort_by")),
		UserID:   c.Query("userId", c.Query("user_id")),
	}
	resp, err := h.confessions.List(c.UserContext(), middleware.CurrentUser(c), q)
	if err != nil {
		if services.KindOf(err) == services.KindSetupRequired && resp != nil {
			// first run: report an empty feed instead of an error
			return c.JSON(fiber.Map{
				"data":       resp.Data,
				"pagination": resp.Pagination,
				"message":    services.ErrSetupRequired.Message,
				"status":     "setup_required",
			})
		}
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ConfessionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	resp, err := h.confessions.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *ConfessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateConfessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	confession, err := h.confessions.Create(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(confession)
}

func (h *ConfessionHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	var req dto.UpdateConfessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	confession, err := h.confessions.Update(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(confession)
}

func (h *ConfessionHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	if err := h.confessions.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Confession deleted"})
}

func (h *ConfessionHandler) Chapters(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	chapters, err := h.confessions.Chapters(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": chapters})
}

func (h *ConfessionHandler) AddChapter(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	var req dto.CreateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	chapter, err := h.confessions.AddChapter(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chapter)
}

func (h *ConfessionHandler) UpdateChapter(c *fiber.Ctx) error {
	confessionID, err := uuid.Parse(c.Params("confessionId"))
	if err != nil {
		return invalidParam(c, "confession id")
	}
	chapterID, err := uuid.Parse(c.Params("chapterId"))
	if err != nil {
		return invalidParam(c, "chapter id")
	}
	var req dto.CreateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	chapter, err := h.confessions.UpdateChapter(c.UserContext(), middleware.CurrentUser(c), confessionID, chapterID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chapter)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// commentIDs parses :confessionId and, when withComment is set, :commentId.
func commentIDs(c *fiber.Ctx, withComment bool) (confessionID, commentID uuid.UUID, err error) {
	confessionID, err = uuid.Parse(c.Params("confessionId"))
	if err != nil || !withComment {
		return
	}
	commentID, err = uuid.Parse(c.Params("commentId"))
	return
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	confessionID, _, err := commentIDs(c, false)
	if err != nil {
		return invalidParam(c, "confession id")
	}
	q := dto.ListCommentsQuery{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 20),
		Sort:  c.Query("sort", "newest"),
	}
	resp, err := h.comments.Threads(c.UserContext(), middleware.CurrentUser(c), confessionID, q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	confessionID, _, err := commentIDs(c, false)
	if err != nil {
		return invalidParam(c, "confession id")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	comment, err := h.comments.Create(c.UserContext(), middleware.CurrentUser(c), confessionID, &req)
	if err != nil {
		return fail(c, err)
	}
	if !comment.IsApproved {
		return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
			Message: "Comment submitted for review",
			Data:    comment,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	confessionID, commentID, err := commentIDs(c, true)
	if err != nil {
		return invalidParam(c, "comment id")
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	comment, err := h.comments.Update(c.UserContext(), middleware.CurrentUser(c), confessionID, commentID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(comment)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	confessionID, commentID, err := commentIDs(c, true)
	if err != nil {
		return invalidParam(c, "comment id")
	}
	if err := h.comments.Delete(c.UserContext(), middleware.CurrentUser(c), confessionID, commentID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Comment deleted"})
}

func (h *CommentHandler) Like(c *fiber.Ctx) error {
	confessionID, commentID, err := commentIDs(c, true)
	if err != nil {
		return invalidParam(c, "comment id")
	}
	resp, err := h.comments.ToggleLike(c.UserContext(), middleware.CurrentUser(c), confessionID, commentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

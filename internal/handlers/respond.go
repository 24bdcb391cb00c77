package handlers

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/services"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindSetupRequired:
		return fiber.StatusBadRequest
	case services.KindAuthentication:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Internal failures are logged and
// reported to Sentry; their detail never reaches the client.
func fail(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Err: err}
	}
	body := dto.ErrorResponse{Error: true, Message: se.Message, Fields: se.Fields}

	switch se.Kind {
	case services.KindSetupRequired:
		body.Status = "setup_required"
	case services.KindInternal:
		slog.ErrorContext(c.UserContext(), "request failed",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		body.Message = "Internal server error"
		body.Fields = nil
	}
	return c.Status(StatusFor(se.Kind)).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

func invalidParam(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid " + what,
	})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/repository"
)

const probeTimeout = 3 * time.Second

type HealthHandler struct {
	probe       repository.Prober
	environment string
	store       string
}

func NewHealthHandler(probe repository.Prober, environment, store string) *HealthHandler {
	return &HealthHandler{probe: probe, environment: environment, store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	db := "ok"
	if err := h.probe.Ping(ctx); err != nil {
		db = "unhealthy"
	}
	return c.JSON(dto.HealthResponse{
		Success:     true,
		Message:     "Confession API is running",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.environment,
		Store:       h.store,
		DB:          db,
	})
}

// DBStatus reports whether the store is reachable and fully migrated.
func (h *HealthHandler) DBStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
	defer cancel()

	if err := h.probe.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.DBStatusResponse{
			Status:  "connection_error",
			Message: "Database is unreachable",
		})
	}
	missing, err := h.probe.MissingTables(ctx)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.DBStatusResponse{
			Status:  "connection_error",
			Message: "Could not inspect database tables",
		})
	}
	if len(missing) > 0 {
		return c.JSON(dto.DBStatusResponse{
			Status:        "setup_required",
			Message:       "Database tables are missing; run the server with --migrate-only",
			MissingTables: missing,
		})
	}
	return c.JSON(dto.DBStatusResponse{Status: "ready", Message: "Database is ready"})
}

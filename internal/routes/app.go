package routes

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/handlers"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"github.com/tausug-confession/confession-backend/internal/services"
)

// Services is the service graph over one store.
type Services struct {
	Auth        *services.AuthService
	Badges      *services.BadgeService
	Confessions *services.ConfessionService
	Comments    *services.CommentService
	Engagement  *services.EngagementService
	Users       *services.UserService
	Admin       *services.AdminService
	Moderator   *services.ModeratorService
	Reports     *services.ReportService
}

func NewServices(cfg *config.Config, store *repository.Store) *Services {
	badges := services.NewBadgeService(store)
	return &Services{
		Auth:        services.NewAuthService(store, cfg),
		Badges:      badges,
		Confessions: services.NewConfessionService(store, badges),
		Comments:    services.NewCommentService(store, services.NewContentFilter()),
		Engagement:  services.NewEngagementService(store, badges),
		Users:       services.NewUserService(store),
		Admin:       services.NewAdminService(store),
		Moderator:   services.NewModeratorService(store, badges),
		Reports:     services.NewReportService(store),
	}
}

func NewHandlers(cfg *config.Config, store *repository.Store, svc *Services) Handlers {
	return Handlers{
		Auth:        handlers.NewAuthHandler(svc.Auth, cfg.UploadDir, int64(cfg.MaxBodyBytes)),
		Health:      handlers.NewHealthHandler(store.Probe, cfg.AppEnv, cfg.StoreDriver),
		Confessions: handlers.NewConfessionHandler(svc.Confessions),
		Comments:    handlers.NewCommentHandler(svc.Comments),
		Engagement:  handlers.NewEngagementHandler(svc.Engagement, svc.Badges, svc.Reports),
		Users:       handlers.NewUserHandler(svc.Users),
		Admin:       handlers.NewAdminHandler(svc.Admin),
		Moderation:  handlers.NewModerationHandler(svc.Moderator, svc.Reports),
	}
}

// NewApp returns a fiber app with the global middleware stack installed.
// Extra middleware (such as Sentry) runs before the stack.
func NewApp(cfg *config.Config, first ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxBodyBytes,
		ErrorHandler: errorHandler,
	})
	for _, h := range first {
		app.Use(h)
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})
	app.Static("/uploads", cfg.UploadDir)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/handlers"
	"github.com/tausug-confession/confession-backend/internal/middleware"
)

// Handlers bundles every HTTP handler mounted under /api.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Confessions *handlers.ConfessionHandler
	Comments    *handlers.CommentHandler
	Engagement  *handlers.EngagementHandler
	Users       *handlers.UserHandler
	Admin       *handlers.AdminHandler
	Moderation  *handlers.ModerationHandler
}

func rateLimit(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: message,
			})
		},
	})
}

func Setup(app *fiber.App, cfg *config.Config, authn middleware.Authenticator, h Handlers) {
	api := app.Group("/api")

	if cfg.RateLimitMax > 0 {
		api.Use(rateLimit(cfg.RateLimitMax, cfg.RateLimitWindow, "Too many requests, please try again later"))
	}

	requireAuth := middleware.Auth(cfg, authn)
	optionalAuth := middleware.OptionalAuth(cfg, authn)

	// Probes
	api.Get("/health", h.Health.Check)
	api.Get("/db-status", h.Health.DBStatus)

	// Auth: stricter limit on credential endpoints
	auth := api.Group("/auth")
	credentials := rateLimit(cfg.AuthRateLimitMax, cfg.RateLimitWindow, "Too many authentication attempts, please try again later")
	auth.Post("/register", credentials, h.Auth.Register)
	auth.Post("/login", credentials, h.Auth.Login)
	auth.Post("/admin/login", credentials, h.Auth.AdminLogin)
	auth.Get("/profile", requireAuth, h.Auth.Profile)
	auth.Put("/profile", requireAuth, h.Auth.UpdateProfile)
	auth.Post("/upgrade", requireAuth, h.Auth.Upgrade)
	auth.Post("/avatar", requireAuth, h.Auth.Avatar)

	// Confessions
	confessions := api.Group("/confessions")
	confessions.Get("/", optionalAuth, h.Confessions.List)
	confessions.Post("/", requireAuth,
		rateLimit(cfg.ConfessionRateLimitMax, time.Hour, "Too many confessions created, please try again later"),
		h.Confessions.Create)
	confessions.Get("/:confessionId/chapters", optionalAuth, h.Confessions.Chapters)
	confessions.Post("/:confessionId/chapters", requireAuth, h.Confessions.AddChapter)
	confessions.Put("/:confessionId/chapters/:chapterId", requireAuth, h.Confessions.UpdateChapter)
	confessions.Post("/:confessionId/like", requireAuth, h.Engagement.Like)
	confessions.Get("/:id", optionalAuth, h.Confessions.Get)
	confessions.Put("/:id", requireAuth, h.Confessions.Update)
	confessions.Delete("/:id", requireAuth, h.Confessions.Delete)

	// Comments
	comments := api.Group("/comments")
	comments.Get("/:confessionId", optionalAuth, h.Comments.List)
	comments.Post("/:confessionId", requireAuth, h.Comments.Create)
	comments.Put("/:confessionId/:commentId", requireAuth, h.Comments.Update)
	comments.Delete("/:confessionId/:commentId", requireAuth, h.Comments.Delete)
	comments.Post("/:confessionId/:commentId/like", requireAuth, h.Comments.Like)

	// Engagement
	engagement := api.Group("/engagement", requireAuth)
	engagement.Post("/confessions/:confessionId/like", h.Engagement.Like)
	engagement.Post("/confessions/:confessionId/bookmark", h.Engagement.Bookmark)
	engagement.Get("/bookmarks", h.Engagement.Bookmarks)
	engagement.Get("/badges", h.Engagement.Badges)
	engagement.Get("/users/:userId/badges", h.Engagement.UserBadges)
	engagement.Post("/badges/award", middleware.ModeratorOrAdmin(), h.Engagement.AwardBadge)

	api.Post("/reports", requireAuth, h.Engagement.Report)

	// Users and follows
	users := api.Group("/users")
	users.Get("/profile", requireAuth, h.Users.Dashboard)
	users.Get("/bookmarks", requireAuth, h.Engagement.Bookmarks)
	users.Get("/username/:username", optionalAuth, h.Users.ByUsername)
	users.Get("/:id", optionalAuth, h.Users.ByID)
	users.Get("/:id/confessions", optionalAuth, h.Users.Confessions)
	users.Post("/:id/follow", requireAuth, h.Users.Follow)
	users.Delete("/:id/follow", requireAuth, h.Users.Unfollow)
	users.Get("/:id/followers", h.Users.Followers)
	users.Get("/:id/following", h.Users.Following)

	// Admin. Report triage is shared with moderators.
	admin := api.Group("/admin", requireAuth)
	admin.Get("/reports", middleware.ModeratorOrAdmin(), h.Moderation.ListReports)
	admin.Put("/reports/:reportId", middleware.ModeratorOrAdmin(), h.Moderation.UpdateReport)
	admin.Get("/stats", middleware.AdminOnly(), h.Admin.Stats)
	admin.Get("/users", middleware.AdminOnly(), h.Admin.Users)
	admin.Put("/users/:userId/role", middleware.AdminOnly(), h.Admin.UpdateRole)
	admin.Put("/users/:userId/ban", middleware.AdminOnly(), h.Admin.Ban)
	admin.Delete("/users/:userId", middleware.AdminOnly(), h.Admin.DeleteUser)

	// Moderator
	moderator := api.Group("/moderator", requireAuth, middleware.ModeratorOrAdmin())
	moderator.Get("/content", h.Moderation.Queue)
	moderator.Post("/comments/:commentId", h.Moderation.ModerateComment)
	moderator.Post("/confessions/:confessionId", h.Moderation.ModerateConfession)
	moderator.Get("/stats", h.Moderation.Stats)
}

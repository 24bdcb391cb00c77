package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/database"
	"github.com/tausug-confession/confession-backend/internal/logging"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"github.com/tausug-confession/confession-backend/internal/repository/memory"
	"github.com/tausug-confession/confession-backend/internal/repository/postgres"
	"github.com/tausug-confession/confession-backend/internal/routes"
	"github.com/tausug-confession/confession-backend/internal/services"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to a KEY=VALUE file loaded before reading the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "run database migrations and exit")
	badgesFile := pflag.String("badges", "", "badge catalog YAML (overrides BADGES_FILE)")
	pflag.Parse()

	config.LoadEnvFile(*envFile)
	cfg := config.Load()
	if *badgesFile != "" {
		cfg.BadgesFile = *badgesFile
	}

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	var (
		store        *repository.Store
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
	)
	cleanupDone := make(chan struct{})

	switch cfg.StoreDriver {
	case "memory":
		if *migrateOnly {
			slog.Info("memory store has nothing to migrate")
			return
		}
		slog.Warn("using in-memory store; data is lost on restart")
		store = memory.New()

	case "postgres":
		if cfg.DBPassword == "" && cfg.DatabaseURL == "" {
			slog.Error("DB_PASSWORD or DATABASE_URL environment variable is required")
			os.Exit(1)
		}
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		if *migrateOnly {
			slog.Info("migrations applied")
			return
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))
		logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)
		store = postgres.New(db)

	default:
		slog.Error("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	svc := routes.NewServices(cfg, store)
	seedBadges(svc, cfg.BadgesFile)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := routes.NewApp(cfg, sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	routes.Setup(app, cfg, svc.Auth, routes.NewHandlers(cfg, store, svc))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")
	shutdown(app, db, pgLogHandler, cleanupDone)
	slog.Info("server stopped")
}

func seedBadges(svc *routes.Services, path string) {
	catalog, err := services.LoadBadgeCatalog(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("badge catalog not found, automatic badges disabled", "path", path)
			return
		}
		slog.Error("badge catalog invalid", "path", path, "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Badges.Seed(ctx, catalog); err != nil {
		slog.Error("badge seeding failed", "error", err)
	}
}

func shutdown(app *fiber.App, db *gorm.DB, pgLogHandler *logging.PGHandler, cleanupDone chan struct{}) {
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	// Close database connections
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}
}

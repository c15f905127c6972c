package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"ham-backend/internal/config"
	"ham-backend/internal/handler"
	"ham-backend/internal/middleware"
	"ham-backend/internal/pkg/i18n"
	"ham-backend/internal/pkg/logger"
	"ham-backend/internal/repository"
	"ham-backend/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.InitStructured(cfg.Environment)
	log := logger.GetLogger()

	if envErr != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	if err := i18n.LoadTranslations(cfg.LocalePath); err != nil {
		log.Warn().Err(err).Str("path", cfg.LocalePath).Msg("Failed to load translations, e-mail subjects fall back to keys")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, db, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	if db != nil {
		defer db.Close()
	}

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if redis != nil {
		defer redis.Close()
	}

	services := service.NewServices(repos, redis, cfg)
	if services.Bridge != nil {
		if err := services.Bridge.Start(ctx); err != nil {
			log.Fatal().Err(err).Str("channel", cfg.EventsChannel).Msg("Failed to subscribe to notification events")
		}
	}
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(func(c *fiber.Ctx) bool {
		return c.Path() == "/health"
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	handler.SetupRoutes(app, handlers,
		middleware.AuthRequired(services.Auth, services.Contacts),
		middleware.APIKeyAuth(cfg.InternalAPIKey),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, *sqlx.DB, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return repository.NewMemoryRepositories(), nil, nil
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.MigrateOnStart {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return repository.NewRepositories(db), db, nil
}

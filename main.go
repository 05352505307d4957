package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// NewApp assembles the Fiber application from its collaborators. Kept
// separate from main so tests can build the same app against a test
// database and a mock publisher.
func NewApp(cfg *config.Config, db *gorm.DB, publisher rabbitmq.Publisher) *fiber.App {
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, publisher)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigin,
	}))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}

func main() {
	// --- Configuration ---
	// Missing required settings are fatal before any listener starts.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// --- Database (GORM) ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	// --- Event Publisher (optional) ---
	// Lifecycle events are published when a broker URL is configured;
	// without one the service runs standalone.
	var publisher rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	app := NewApp(cfg, db, publisher)

	// --- Start HTTP Server ---
	log.Info().Str("port", cfg.AppPort).Msg("Starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}

	log.Info().Msg("Server gracefully stopped")
}

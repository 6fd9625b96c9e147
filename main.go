package main

import (
	"context"
	"log"
	"os"
	"time"

	"nurtura/channel"
	"nurtura/config"
	"nurtura/middleware"
	"nurtura/nurture"
	"nurtura/routes"
	"nurtura/worker"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "NURTURE: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Failed to initialize sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Optional redis client for the processor lock
	var redisClient *redis.Client
	if config.AppConfig.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
	}

	// Initialize the nurture engine
	registry := channel.NewRegistry(config.DB)
	nurtureService := nurture.NewService(config.DB, registry, logrus.StandardLogger())

	// Initialize and start the nurture worker
	interval := time.Duration(config.AppConfig.NurtureIntervalSeconds) * time.Second
	nurtureWorker := worker.NewNurtureWorker(nurtureService, redisClient, logger, interval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go nurtureWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, nurtureService)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

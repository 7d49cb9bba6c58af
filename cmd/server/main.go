package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/GringoXY/4-gamers-mailing/internal/config"
	"github.com/GringoXY/4-gamers-mailing/internal/consumer"
	"github.com/GringoXY/4-gamers-mailing/internal/database"
	"github.com/GringoXY/4-gamers-mailing/internal/docsapi"
	"github.com/GringoXY/4-gamers-mailing/internal/handlers"
	"github.com/GringoXY/4-gamers-mailing/internal/inbox"
	"github.com/GringoXY/4-gamers-mailing/internal/logger"
	"github.com/GringoXY/4-gamers-mailing/internal/mailer"
	"github.com/GringoXY/4-gamers-mailing/internal/rabbitmq"
	"github.com/GringoXY/4-gamers-mailing/internal/routes"
	"github.com/GringoXY/4-gamers-mailing/internal/scheduler"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(logger.Logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to PostgreSQL
	db, err := database.Connect(&cfg.Database, logger.Logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger.Logger); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.RunMigrations(&cfg.Database, logger.Logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to RabbitMQ
	rmq := rabbitmq.NewConnection(&cfg.RabbitMQ, logger.Logger)
	if err := rmq.Connect(); err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rmq.Close()

	// Wire the notification pipeline
	store := inbox.NewGormStore(db)

	renderer, err := mailer.NewRenderer()
	if err != nil {
		logger.Fatal("Failed to load email templates", zap.Error(err))
	}

	builder := mailer.NewBuilder(renderer, docsapi.NewClient(&cfg.DocsAPI))
	sender := mailer.NewSMTPSender(&cfg.SMTP)

	// Start the broker consumer
	cons := consumer.NewConsumer(&cfg.RabbitMQ, rmq, store, logger.Logger)
	if err := cons.Start(); err != nil {
		logger.Fatal("Failed to start consumer", zap.Error(err))
	}

	// Start the dispatch scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(store, builder, sender, cfg.Scheduler.Interval, logger.Logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Mailing Service",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Setup routes
	healthHandler := handlers.NewHealthHandler(db, rmq, store, logger.Logger)
	routes.SetupRoutes(app, healthHandler)

	// Start server in a goroutine
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	// Stop the scheduler first: a wait is aborted immediately, a running
	// cycle completes before Run returns.
	cancel()
	wg.Wait()

	if err := cons.Stop(); err != nil {
		logger.Error("Error stopping consumer", zap.Error(err))
	}

	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

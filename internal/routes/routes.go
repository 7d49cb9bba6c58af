package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GringoXY/4-gamers-mailing/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(app *fiber.App, healthHandler *handlers.HealthHandler) {
	// Health check endpoint
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

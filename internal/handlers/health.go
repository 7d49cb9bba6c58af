package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GringoXY/4-gamers-mailing/internal/database"
	"github.com/GringoXY/4-gamers-mailing/internal/inbox"
	"github.com/GringoXY/4-gamers-mailing/internal/rabbitmq"
)

// HealthHandler reports readiness of the service's collaborators
type HealthHandler struct {
	DB     *gorm.DB
	RMQ    *rabbitmq.Connection
	Store  inbox.Store
	Logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, rmq *rabbitmq.Connection, store inbox.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		DB:     db,
		RMQ:    rmq,
		Store:  store,
		Logger: logger,
	}
}

// HealthCheck handles GET /health
// Reports Postgres and RabbitMQ health plus the current pending inbox depth;
// returns 503 when either collaborator is down.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbStatus := "up"
	if err := database.HealthCheck(ctx, h.DB); err != nil {
		h.Logger.Warn("Database health check failed", zap.Error(err))
		dbStatus = "down"
		status = fiber.StatusServiceUnavailable
	}

	rmqStatus := "up"
	if !h.RMQ.IsHealthy() {
		rmqStatus = "down"
		status = fiber.StatusServiceUnavailable
	}

	var pending interface{}
	if dbStatus == "up" {
		count, err := h.Store.CountPending(ctx)
		if err != nil {
			h.Logger.Warn("Failed to count pending inbox messages", zap.Error(err))
		} else {
			pending = count
		}
	}

	overall := "healthy"
	if status != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":        overall,
		"database":      dbStatus,
		"rabbitmq":      rmqStatus,
		"pending_inbox": pending,
	})
}

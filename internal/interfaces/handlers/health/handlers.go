package health

import (
	"github.com/mayanksahu17/binary-system-sub001/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// GET /health — dependency connectivity for the scheduler/operator.
func (h *Handlers) Status(c *fiber.Ctx) error {
	deps := map[string]string{
		"database": "disconnected",
		"redis":    "disconnected",
	}

	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil && sqlDB.Ping() == nil {
			deps["database"] = "connected"
		}
	}
	if h.Rdb != nil {
		if err := h.Rdb.Ping(c.Context()).Err(); err == nil {
			deps["redis"] = "connected"
		}
	}

	status := "ok"
	if deps["database"] != "connected" {
		status = "issue"
	}

	return response.Success(c, "Health status", map[string]interface{}{
		"status":       status,
		"dependencies": deps,
	}, nil)
}

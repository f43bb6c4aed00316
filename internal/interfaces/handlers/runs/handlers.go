package runs

import (
	"errors"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/application/dailyrun"
	"github.com/mayanksahu17/binary-system-sub001/internal/domain"
	"github.com/mayanksahu17/binary-system-sub001/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handlers struct {
	Runner *dailyrun.Runner
	DB     *gorm.DB
}

type triggerRequest struct {
	// Date in YYYY-MM-DD; defaults to today (UTC).
	Date string `json:"date"`
}

// POST /api/v1/runs/trigger — idempotent manual trigger for the daily cycle.
// Re-triggering a completed date returns its stored summary unchanged.
func (h *Handlers) Trigger(c *fiber.Ctx) error {
	var req triggerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}

	day := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return response.Error(c, "Invalid date, expected YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		day = parsed
	}

	summary, err := h.Runner.RunDailyCycle(c.Context(), day)
	if err != nil {
		if errors.Is(err, dailyrun.ErrRunInProgress) {
			return response.Error(c, "A run for this date is already in progress", fiber.StatusConflict, nil)
		}
		return response.Error(c, "Daily run failed", fiber.StatusInternalServerError, map[string]interface{}{
			"reason": err.Error(),
		})
	}

	return response.Success(c, "Daily run completed", summary, nil)
}

// GET /api/v1/runs — recent run summaries, newest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	var runs []domain.DailyRun
	if err := h.DB.WithContext(c.Context()).Order("run_date DESC").Limit(30).Find(&runs).Error; err != nil {
		return response.Error(c, "Failed to fetch runs", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Runs fetched successfully", runs, map[string]interface{}{
		"count": len(runs),
	})
}

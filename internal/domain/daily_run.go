package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DailyRun is one orchestrator execution per calendar day. The unique RunDate
// makes the whole cycle idempotent: a completed run for a date is returned
// as-is instead of being executed again.
type DailyRun struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RunDate time.Time `gorm:"column:run_date;uniqueIndex;not null" json:"run_date"`
	Status  RunStatus `gorm:"column:status;type:varchar(10);not null" json:"status"`

	Expired int `gorm:"column:expired;not null;default:0" json:"expired"`
	Matched int `gorm:"column:matched;not null;default:0" json:"matched"`
	Accrued int `gorm:"column:accrued;not null;default:0" json:"accrued"`
	Errors  int `gorm:"column:errors;not null;default:0" json:"errors"`

	TotalBonusPaid decimal.Decimal `gorm:"column:total_bonus_paid;type:decimal(20,4);not null;default:0" json:"total_bonus_paid"`
	TotalRoiPaid   decimal.Decimal `gorm:"column:total_roi_paid;type:decimal(20,4);not null;default:0" json:"total_roi_paid"`

	StartedAt  time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at"`
}

func (DailyRun) TableName() string {
	return "daily_runs"
}

func (r *DailyRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

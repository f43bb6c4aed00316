package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment is one funding event. Principal is fixed at creation and never
// mutated by ROI; renewable ROI accumulates on the wallet, not here.
// While active, DaysElapsed + DaysRemaining == DurationDays. IsActive flips
// to false exactly when DaysElapsed reaches DurationDays or EndDate passes,
// and is never set back to true.
type Investment struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID  `gorm:"column:account_id;type:uuid;index;not null" json:"account_id"`
	PackageID *uuid.UUID `gorm:"column:package_id;type:uuid;index" json:"package_id"`

	Principal      decimal.Decimal `gorm:"column:principal;type:decimal(20,4);not null" json:"principal"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(20,4);not null" json:"amount"`
	TotalOutputPct decimal.Decimal `gorm:"column:total_output_pct;type:decimal(6,2);not null" json:"total_output_pct"`
	DurationDays   int             `gorm:"column:duration_days;not null" json:"duration_days"`
	// DailyRoiRate = TotalOutputPct/100 / DurationDays, e.g. 0.015.
	DailyRoiRate decimal.Decimal `gorm:"column:daily_roi_rate;type:decimal(12,8);not null" json:"daily_roi_rate"`

	StartDate       time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	DaysElapsed     int             `gorm:"column:days_elapsed;not null;default:0" json:"days_elapsed"`
	DaysRemaining   int             `gorm:"column:days_remaining;not null;default:0" json:"days_remaining"`
	LastAccrualDate *time.Time      `gorm:"column:last_accrual_date" json:"last_accrual_date"`
	TotalRoiEarned  decimal.Decimal `gorm:"column:total_roi_earned;type:decimal(20,4);not null;default:0" json:"total_roi_earned"`
	TotalReinvested decimal.Decimal `gorm:"column:total_reinvested;type:decimal(20,4);not null;default:0" json:"total_reinvested"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

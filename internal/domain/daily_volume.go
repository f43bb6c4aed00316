package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyVolume is the explicit per-day accrual record: one row per
// (investment, day). The unique index is the primary idempotence guard for
// volume accrual — a duplicate insert means the investment already contributed
// today, independent of any date-equality check on the investment itself.
type DailyVolume struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InvestmentID uuid.UUID       `gorm:"column:investment_id;type:uuid;not null;uniqueIndex:idx_volume_investment_date,priority:1" json:"investment_id"`
	RunDate      time.Time       `gorm:"column:run_date;not null;uniqueIndex:idx_volume_investment_date,priority:2" json:"run_date"`
	NodeID       uuid.UUID       `gorm:"column:node_id;type:uuid;index;not null" json:"node_id"`
	Leg          Leg             `gorm:"column:leg;type:varchar(5);not null" json:"leg"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,4);not null" json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (DailyVolume) TableName() string {
	return "daily_volumes"
}

func (v *DailyVolume) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

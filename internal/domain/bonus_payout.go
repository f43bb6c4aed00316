package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BonusPayout records one binary bonus paid to a node owner, with the terms
// that produced it.
type BonusPayout struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	NodeID    uuid.UUID `gorm:"column:node_id;type:uuid;index;not null" json:"node_id"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;index;not null" json:"account_id"`
	RunID     uuid.UUID `gorm:"column:run_id;type:uuid;index;not null" json:"run_id"`

	MatchedAmount decimal.Decimal `gorm:"column:matched_amount;type:decimal(20,4);not null" json:"matched_amount"`
	CappedAmount  decimal.Decimal `gorm:"column:capped_amount;type:decimal(20,4);not null" json:"capped_amount"`
	BonusAmount   decimal.Decimal `gorm:"column:bonus_amount;type:decimal(20,4);not null" json:"bonus_amount"`
	BinaryPct     decimal.Decimal `gorm:"column:binary_pct;type:decimal(5,2);not null" json:"binary_pct"`
	PowerCapacity decimal.Decimal `gorm:"column:power_capacity;type:decimal(20,4);not null" json:"power_capacity"`

	CreatedAt time.Time `json:"created_at"`
}

func (BonusPayout) TableName() string {
	return "bonus_payouts"
}

func (p *BonusPayout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

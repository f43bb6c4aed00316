package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Package is a funding package. Its BinaryPct/PowerCapacity govern matching
// for the nodes funded through it.
type Package struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"column:name;uniqueIndex;not null" json:"name"`
	BinaryPct      decimal.Decimal `gorm:"column:binary_pct;type:decimal(5,2);not null" json:"binary_pct"`
	PowerCapacity  decimal.Decimal `gorm:"column:power_capacity;type:decimal(20,4);not null" json:"power_capacity"`
	TotalOutputPct decimal.Decimal `gorm:"column:total_output_pct;type:decimal(6,2);not null" json:"total_output_pct"`
	DurationDays   int             `gorm:"column:duration_days;not null" json:"duration_days"`
	RenewablePct   decimal.Decimal `gorm:"column:renewable_pct;type:decimal(5,2);not null" json:"renewable_pct"`
	MinAmount      decimal.Decimal `gorm:"column:min_amount;type:decimal(20,4);not null;default:0" json:"min_amount"`
	MaxAmount      decimal.Decimal `gorm:"column:max_amount;type:decimal(20,4);not null;default:0" json:"max_amount"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Package) TableName() string {
	return "packages"
}

func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

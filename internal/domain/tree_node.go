package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TreeNode is one node of the binary compensation tree, one per account.
//
// LeftBusiness/RightBusiness and LeftMatched/RightMatched are cumulative and
// monotonically non-decreasing, with *Matched <= *Business per leg at all
// times. LeftCarry/RightCarry hold the deferred slice of (Business - Matched)
// waiting for the opposite leg to catch up; the matcher is the only writer of
// Matched and Carry, the accrual step the only writer of Business.
type TreeNode struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AccountID    uuid.UUID  `gorm:"column:account_id;type:uuid;uniqueIndex;not null" json:"account_id"`
	LeftChildID  *uuid.UUID `gorm:"column:left_child_id;type:uuid" json:"left_child_id"`
	RightChildID *uuid.UUID `gorm:"column:right_child_id;type:uuid" json:"right_child_id"`

	LeftBusiness  decimal.Decimal `gorm:"column:left_business;type:decimal(20,4);not null;default:0" json:"left_business"`
	RightBusiness decimal.Decimal `gorm:"column:right_business;type:decimal(20,4);not null;default:0" json:"right_business"`
	LeftMatched   decimal.Decimal `gorm:"column:left_matched;type:decimal(20,4);not null;default:0" json:"left_matched"`
	RightMatched  decimal.Decimal `gorm:"column:right_matched;type:decimal(20,4);not null;default:0" json:"right_matched"`
	LeftCarry     decimal.Decimal `gorm:"column:left_carry;type:decimal(20,4);not null;default:0" json:"left_carry"`
	RightCarry    decimal.Decimal `gorm:"column:right_carry;type:decimal(20,4);not null;default:0" json:"right_carry"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TreeNode) TableName() string {
	return "tree_nodes"
}

func (n *TreeNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

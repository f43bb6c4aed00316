package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LedgerEntryType string

const (
	LedgerBinaryBonus  LedgerEntryType = "binary_bonus"
	LedgerRoiCashable  LedgerEntryType = "roi_cashable"
	LedgerRoiRenewable LedgerEntryType = "roi_renewable"
	LedgerCredit       LedgerEntryType = "credit"
	LedgerDebit        LedgerEntryType = "debit"
)

// LedgerEntry is the append-only audit trail: one record per wallet mutation,
// with the balance before and after and a JSON reference back to the entity
// (investment, node, run) that triggered it. Entries are never updated.
type LedgerEntry struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	WalletID  uuid.UUID       `gorm:"column:wallet_id;type:uuid;index;not null" json:"wallet_id"`
	AccountID uuid.UUID       `gorm:"column:account_id;type:uuid;index;not null" json:"account_id"`
	Type      LedgerEntryType `gorm:"column:type;type:varchar(20);not null" json:"type"`

	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,4);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:decimal(20,4);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:decimal(20,4);not null" json:"balance_after"`

	RunID     *uuid.UUID     `gorm:"column:run_id;type:uuid;index" json:"run_id"`
	Reference datatypes.JSON `gorm:"column:reference;type:jsonb" json:"reference"`

	CreatedAt time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

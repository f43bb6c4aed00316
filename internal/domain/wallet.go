package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletCategory partitions balances per purpose; one wallet exists per
// (account, category) pair, created lazily on first credit.
type WalletCategory string

const (
	WalletInvestment WalletCategory = "investment"
	WalletROI        WalletCategory = "roi"
	WalletBinary     WalletCategory = "binary"
	WalletReferral   WalletCategory = "referral"
	WalletWithdrawal WalletCategory = "withdrawal"
)

// Wallet holds a cashable balance plus, on the ROI wallet, the non-withdrawable
// renewable-principal accumulator. Balance never goes below zero; a debit that
// would do so is rejected without mutation.
type Wallet struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID      `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_wallet_account_category,priority:1" json:"account_id"`
	Category  WalletCategory `gorm:"column:category;type:varchar(15);not null;uniqueIndex:idx_wallet_account_category,priority:2" json:"category"`

	Balance            decimal.Decimal `gorm:"column:balance;type:decimal(20,4);not null;default:0" json:"balance"`
	RenewablePrincipal decimal.Decimal `gorm:"column:renewable_principal;type:decimal(20,4);not null;default:0" json:"renewable_principal"`
	Reserved           decimal.Decimal `gorm:"column:reserved;type:decimal(20,4);not null;default:0" json:"reserved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

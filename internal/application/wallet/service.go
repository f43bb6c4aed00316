package wallet

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Credit atomically adds amount to the (account, category) wallet and appends
// a ledger entry carrying the balance before/after. The wallet is created on
// first credit. Must be called inside the caller's transaction so the wallet
// mutation commits together with the triggering entity update.
func Credit(tx *gorm.DB, accountID uuid.UUID, category domain.WalletCategory, amount decimal.Decimal, entryType domain.LedgerEntryType, runID *uuid.UUID, ref map[string]interface{}) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	w, err := getOrCreate(tx, accountID, category)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&domain.Wallet{}).Where("id = ?", w.ID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("credit wallet %s: %w", w.ID, err)
	}

	var after domain.Wallet
	if err := tx.Where("id = ?", w.ID).First(&after).Error; err != nil {
		return nil, err
	}

	return appendEntry(tx, &after, accountID, entryType, amount, after.Balance.Sub(amount), after.Balance, runID, ref)
}

// CreditRenewable adds amount to the ROI wallet's renewable-principal
// accumulator (non-withdrawable; distinct from the cashable balance). The
// ledger entry's before/after track the accumulator, not the balance.
func CreditRenewable(tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, runID *uuid.UUID, ref map[string]interface{}) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	w, err := getOrCreate(tx, accountID, domain.WalletROI)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&domain.Wallet{}).Where("id = ?", w.ID).
		Update("renewable_principal", gorm.Expr("renewable_principal + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("credit renewable principal %s: %w", w.ID, err)
	}

	var after domain.Wallet
	if err := tx.Where("id = ?", w.ID).First(&after).Error; err != nil {
		return nil, err
	}

	return appendEntry(tx, &after, accountID, domain.LedgerRoiRenewable, amount,
		after.RenewablePrincipal.Sub(amount), after.RenewablePrincipal, runID, ref)
}

// Debit atomically subtracts amount from the wallet balance. A debit that
// would take the balance below zero is rejected with ErrInsufficientFunds and
// leaves the wallet unchanged.
func Debit(tx *gorm.DB, accountID uuid.UUID, category domain.WalletCategory, amount decimal.Decimal, entryType domain.LedgerEntryType, runID *uuid.UUID, ref map[string]interface{}) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	var w domain.Wallet
	if err := tx.Where("account_id = ? AND category = ?", accountID, category).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	res := tx.Model(&domain.Wallet{}).Where("id = ? AND balance >= ?", w.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("debit wallet %s: %w", w.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientFunds
	}

	var after domain.Wallet
	if err := tx.Where("id = ?", w.ID).First(&after).Error; err != nil {
		return nil, err
	}

	return appendEntry(tx, &after, accountID, entryType, amount.Neg(), after.Balance.Add(amount), after.Balance, runID, ref)
}

func getOrCreate(tx *gorm.DB, accountID uuid.UUID, category domain.WalletCategory) (*domain.Wallet, error) {
	var w domain.Wallet
	err := tx.Where("account_id = ? AND category = ?", accountID, category).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = domain.Wallet{AccountID: accountID, Category: category}
		if err := tx.Create(&w).Error; err != nil {
			return nil, fmt.Errorf("create %s wallet for account %s: %w", category, accountID, err)
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func appendEntry(tx *gorm.DB, w *domain.Wallet, accountID uuid.UUID, entryType domain.LedgerEntryType, amount, before, after decimal.Decimal, runID *uuid.UUID, ref map[string]interface{}) (*domain.LedgerEntry, error) {
	var refJSON datatypes.JSON
	if ref != nil {
		b, err := json.Marshal(ref)
		if err != nil {
			return nil, err
		}
		refJSON = datatypes.JSON(b)
	}

	entry := domain.LedgerEntry{
		WalletID:      w.ID,
		AccountID:     accountID,
		Type:          entryType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		RunID:         runID,
		Reference:     refJSON,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return &entry, nil
}

package wallet

import (
	"testing"

	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWalletTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.LedgerEntry{}))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCredit_CreatesWalletLazily(t *testing.T) {
	db := setupWalletTest(t)
	accountID := uuid.New()

	entry, err := Credit(db, accountID, domain.WalletBinary, dec("250"), domain.LedgerBinaryBonus, nil, nil)
	require.NoError(t, err)

	var w domain.Wallet
	require.NoError(t, db.Where("account_id = ? AND category = ?", accountID, domain.WalletBinary).First(&w).Error)
	assert.True(t, w.Balance.Equal(dec("250")), "balance = %s", w.Balance)

	assert.True(t, entry.BalanceBefore.IsZero())
	assert.True(t, entry.BalanceAfter.Equal(dec("250")))
	assert.Equal(t, domain.LedgerBinaryBonus, entry.Type)
}

func TestCredit_AppendsLedgerPerMutation(t *testing.T) {
	db := setupWalletTest(t)
	accountID := uuid.New()
	runID := uuid.New()

	_, err := Credit(db, accountID, domain.WalletROI, dec("10"), domain.LedgerRoiCashable, &runID, map[string]interface{}{"investment_id": uuid.New().String()})
	require.NoError(t, err)
	_, err = Credit(db, accountID, domain.WalletROI, dec("5"), domain.LedgerRoiCashable, &runID, nil)
	require.NoError(t, err)

	var entries []domain.LedgerEntry
	require.NoError(t, db.Where("account_id = ?", accountID).Order("created_at").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].BalanceBefore.Equal(dec("10")))
	assert.True(t, entries[1].BalanceAfter.Equal(dec("15")))
	require.NotNil(t, entries[0].RunID)
	assert.Equal(t, runID, *entries[0].RunID)
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	db := setupWalletTest(t)

	_, err := Credit(db, uuid.New(), domain.WalletROI, decimal.Zero, domain.LedgerCredit, nil, nil)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = Credit(db, uuid.New(), domain.WalletROI, dec("-1"), domain.LedgerCredit, nil, nil)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestCreditRenewable_SeparateAccumulator(t *testing.T) {
	db := setupWalletTest(t)
	accountID := uuid.New()

	_, err := Credit(db, accountID, domain.WalletROI, dec("7.5"), domain.LedgerRoiCashable, nil, nil)
	require.NoError(t, err)
	entry, err := CreditRenewable(db, accountID, dec("7.5"), nil, nil)
	require.NoError(t, err)

	var w domain.Wallet
	require.NoError(t, db.Where("account_id = ? AND category = ?", accountID, domain.WalletROI).First(&w).Error)
	assert.True(t, w.Balance.Equal(dec("7.5")), "cashable balance untouched by renewable credit")
	assert.True(t, w.RenewablePrincipal.Equal(dec("7.5")), "renewable = %s", w.RenewablePrincipal)

	assert.Equal(t, domain.LedgerRoiRenewable, entry.Type)
	assert.True(t, entry.BalanceBefore.IsZero())
	assert.True(t, entry.BalanceAfter.Equal(dec("7.5")))
}

func TestDebit_Overdraft(t *testing.T) {
	db := setupWalletTest(t)
	accountID := uuid.New()

	_, err := Credit(db, accountID, domain.WalletBinary, dec("100"), domain.LedgerCredit, nil, nil)
	require.NoError(t, err)

	_, err = Debit(db, accountID, domain.WalletBinary, dec("150"), domain.LedgerDebit, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Balance unchanged and no debit entry appended.
	var w domain.Wallet
	require.NoError(t, db.Where("account_id = ?", accountID).First(&w).Error)
	assert.True(t, w.Balance.Equal(dec("100")))

	var count int64
	require.NoError(t, db.Model(&domain.LedgerEntry{}).Where("type = ?", domain.LedgerDebit).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDebit_Success(t *testing.T) {
	db := setupWalletTest(t)
	accountID := uuid.New()

	_, err := Credit(db, accountID, domain.WalletBinary, dec("100"), domain.LedgerCredit, nil, nil)
	require.NoError(t, err)

	entry, err := Debit(db, accountID, domain.WalletBinary, dec("40"), domain.LedgerDebit, nil, nil)
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(dec("-40")))
	assert.True(t, entry.BalanceBefore.Equal(dec("100")))
	assert.True(t, entry.BalanceAfter.Equal(dec("60")))

	var w domain.Wallet
	require.NoError(t, db.Where("account_id = ?", accountID).First(&w).Error)
	assert.True(t, w.Balance.Equal(dec("60")))
}

func TestDebit_MissingWallet(t *testing.T) {
	db := setupWalletTest(t)

	_, err := Debit(db, uuid.New(), domain.WalletBinary, dec("1"), domain.LedgerDebit, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

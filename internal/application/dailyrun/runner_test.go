package dailyrun

import (
	"context"
	"testing"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupRunnerTest(t *testing.T) (*Runner, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection to :memory: would open a second, empty database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Account{}, &domain.TreeNode{}, &domain.Package{}, &domain.Investment{},
		&domain.Wallet{}, &domain.LedgerEntry{}, &domain.DailyVolume{},
		&domain.BonusPayout{}, &domain.DailyRun{},
	))

	runner := NewRunner(db, &LocalLocker{}, Settings{
		BinaryPct:     dec("10"),
		PowerCapacity: dec("10000"),
		RenewablePct:  dec("50"),
		Workers:       1,
		EntityRetries: 1,
	})
	return runner, db
}

func seedTree(t *testing.T, db *gorm.DB) (referrer, left, right domain.Account) {
	referrer = domain.Account{ExternalID: uuid.New().String(), Kind: domain.AccountKindRegular, Status: domain.AccountStatusActive}
	require.NoError(t, db.Create(&referrer).Error)
	require.NoError(t, db.Create(&domain.TreeNode{AccountID: referrer.ID}).Error)

	left = domain.Account{ExternalID: uuid.New().String(), Kind: domain.AccountKindRegular, Status: domain.AccountStatusActive, ReferrerID: &referrer.ID, Position: domain.LegLeft}
	require.NoError(t, db.Create(&left).Error)
	require.NoError(t, db.Create(&domain.TreeNode{AccountID: left.ID}).Error)

	right = domain.Account{ExternalID: uuid.New().String(), Kind: domain.AccountKindRegular, Status: domain.AccountStatusActive, ReferrerID: &referrer.ID, Position: domain.LegRight}
	require.NoError(t, db.Create(&right).Error)
	require.NoError(t, db.Create(&domain.TreeNode{AccountID: right.ID}).Error)
	return
}

// seedFunding creates an investment whose 150-day term spans the run dates
// used across this file (2026-08-26 and the day after), so the expire step
// leaves it active.
func seedFunding(t *testing.T, db *gorm.DB, accountID uuid.UUID, principal string) domain.Investment {
	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	inv := domain.Investment{
		AccountID:     accountID,
		Principal:     dec(principal),
		Amount:        dec(principal),
		DurationDays:  150,
		DaysRemaining: 150,
		DailyRoiRate:  dec("0.015"),
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 150),
		IsActive:      true,
	}
	require.NoError(t, db.Create(&inv).Error)
	return inv
}

func walletOf(t *testing.T, db *gorm.DB, accountID uuid.UUID, cat domain.WalletCategory) decimal.Decimal {
	var w domain.Wallet
	err := db.Where("account_id = ? AND category = ?", accountID, cat).First(&w).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero
	}
	require.NoError(t, err)
	return w.Balance
}

func TestRunDailyCycle_FullCycle(t *testing.T) {
	runner, db := setupRunnerTest(t)
	referrer, left, right := seedTree(t, db)
	seedFunding(t, db, left.ID, "6000")
	seedFunding(t, db, right.ID, "5000")

	day := time.Date(2026, 8, 26, 6, 0, 0, 0, time.UTC)
	summary, err := runner.RunDailyCycle(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Expired)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 2, summary.Accrued)
	assert.Equal(t, 0, summary.Errors)
	assert.True(t, summary.TotalBonusPaid.Equal(dec("500")), "bonus = %s", summary.TotalBonusPaid)
	// 6000*0.015 + 5000*0.015 = 90 + 75.
	assert.True(t, summary.TotalRoiPaid.Equal(dec("165")), "roi = %s", summary.TotalRoiPaid)

	assert.True(t, walletOf(t, db, referrer.ID, domain.WalletBinary).Equal(dec("500")))
	assert.True(t, walletOf(t, db, left.ID, domain.WalletROI).Equal(dec("45")))
	assert.True(t, walletOf(t, db, right.ID, domain.WalletROI).Equal(dec("37.5")))

	var node domain.TreeNode
	require.NoError(t, db.Where("account_id = ?", referrer.ID).First(&node).Error)
	assert.True(t, node.LeftBusiness.Equal(dec("6000")))
	assert.True(t, node.RightBusiness.Equal(dec("5000")))
	assert.True(t, node.LeftMatched.Equal(dec("5000")))
	assert.True(t, node.LeftCarry.Equal(dec("1000")))
}

// Invoking the cycle twice for the same date must not move a single counter
// or balance the second time.
func TestRunDailyCycle_Idempotent(t *testing.T) {
	runner, db := setupRunnerTest(t)
	referrer, left, right := seedTree(t, db)
	seedFunding(t, db, left.ID, "6000")
	seedFunding(t, db, right.ID, "5000")

	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	first, err := runner.RunDailyCycle(context.Background(), day)
	require.NoError(t, err)

	second, err := runner.RunDailyCycle(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID, "completed run is returned, not re-executed")
	assert.True(t, second.TotalBonusPaid.Equal(first.TotalBonusPaid))

	assert.True(t, walletOf(t, db, referrer.ID, domain.WalletBinary).Equal(dec("500")))
	assert.True(t, walletOf(t, db, left.ID, domain.WalletROI).Equal(dec("45")))

	var node domain.TreeNode
	require.NoError(t, db.Where("account_id = ?", referrer.ID).First(&node).Error)
	assert.True(t, node.LeftBusiness.Equal(dec("6000")), "no double accrual")
	assert.True(t, node.LeftMatched.Equal(dec("5000")), "no double match")

	var runCount int64
	require.NoError(t, db.Model(&domain.DailyRun{}).Count(&runCount).Error)
	assert.Equal(t, int64(1), runCount)
}

func TestRunDailyCycle_NextDayAccruesAgain(t *testing.T) {
	runner, db := setupRunnerTest(t)
	referrer, left, right := seedTree(t, db)
	seedFunding(t, db, left.ID, "6000")
	seedFunding(t, db, right.ID, "5000")

	day1 := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	_, err := runner.RunDailyCycle(context.Background(), day1)
	require.NoError(t, err)
	summary, err := runner.RunDailyCycle(context.Background(), day2)
	require.NoError(t, err)

	// Day 2: left has 1000 carry + 6000 fresh, right 5000 fresh; match 5000.
	assert.True(t, summary.TotalBonusPaid.Equal(dec("500")), "bonus = %s", summary.TotalBonusPaid)
	assert.True(t, walletOf(t, db, referrer.ID, domain.WalletBinary).Equal(dec("1000")))

	var node domain.TreeNode
	require.NoError(t, db.Where("account_id = ?", referrer.ID).First(&node).Error)
	assert.True(t, node.LeftBusiness.Equal(dec("12000")))
	assert.True(t, node.LeftMatched.Equal(dec("10000")))
	assert.True(t, node.LeftCarry.Equal(dec("2000")), "leftCarry = %s", node.LeftCarry)
	assert.True(t, node.RightCarry.IsZero())
}

func TestRunDailyCycle_LeaseConflict(t *testing.T) {
	runner, _ := setupRunnerTest(t)
	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	release, err := runner.Locker.Acquire(context.Background(), runLeaseKey, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = runner.RunDailyCycle(context.Background(), day)
	assert.ErrorIs(t, err, ErrRunInProgress)
}

// The lease guards the shared tree, not a calendar date: while one run holds
// it, a run invoked for any other date must be refused too.
func TestRunDailyCycle_LeaseBlocksOtherDates(t *testing.T) {
	runner, db := setupRunnerTest(t)
	_, left, right := seedTree(t, db)
	seedFunding(t, db, left.ID, "6000")
	seedFunding(t, db, right.ID, "5000")

	release, err := runner.Locker.Acquire(context.Background(), runLeaseKey, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = runner.RunDailyCycle(context.Background(), time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrRunInProgress)

	var runCount int64
	require.NoError(t, db.Model(&domain.DailyRun{}).Count(&runCount).Error)
	assert.Equal(t, int64(0), runCount, "refused run must not touch the store")
}

func TestRunDailyCycle_ExpiresBeforeAccruing(t *testing.T) {
	runner, db := setupRunnerTest(t)
	_, left, right := seedTree(t, db)
	seedFunding(t, db, right.ID, "5000")

	spent := seedFunding(t, db, left.ID, "6000")
	require.NoError(t, db.Model(&domain.Investment{}).Where("id = ?", spent.ID).
		Update("days_elapsed", 150).Error)

	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	summary, err := runner.RunDailyCycle(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Expired)
	// The expired investment contributes no volume and earns no ROI.
	assert.Equal(t, 1, summary.Accrued)
	assert.True(t, walletOf(t, db, left.ID, domain.WalletROI).IsZero())

	var node domain.TreeNode
	var ref domain.Account
	require.NoError(t, db.Where("id = ?", *left.ReferrerID).First(&ref).Error)
	require.NoError(t, db.Where("account_id = ?", ref.ID).First(&node).Error)
	assert.True(t, node.LeftBusiness.IsZero())
	assert.True(t, node.RightBusiness.Equal(dec("5000")))
}

package database

import (
	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when running behind a connection pooler.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all engine models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Account{},
		&domain.TreeNode{},
		&domain.Package{},
		&domain.Investment{},
		&domain.Wallet{},
		&domain.LedgerEntry{},
		&domain.DailyVolume{},
		&domain.BonusPayout{},
		&domain.DailyRun{},
	)
}

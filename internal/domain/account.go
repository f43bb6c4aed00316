package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountKind distinguishes reserved root accounts from regular participants.
// Root accounts accrue volume but never receive binary bonuses.
type AccountKind string

const (
	AccountKindRegular AccountKind = "regular"
	AccountKindRoot    AccountKind = "root"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Leg is one of the two binary-tree branches under an account.
type Leg string

const (
	LegLeft  Leg = "left"
	LegRight Leg = "right"
	// LegNone marks volume recorded for accounts without a binary parent.
	LegNone Leg = "none"
)

type Account struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExternalID string        `gorm:"column:external_id;uniqueIndex;not null" json:"external_id"`
	Kind       AccountKind   `gorm:"column:kind;type:varchar(10);not null;default:'regular'" json:"kind"`
	Status     AccountStatus `gorm:"column:status;type:varchar(10);not null;default:'active'" json:"status"`
	ReferrerID *uuid.UUID    `gorm:"column:referrer_id;type:uuid;index" json:"referrer_id"`
	// Position is the leg under the referrer; fixed at creation, never reassigned.
	Position  Leg       `gorm:"column:position;type:varchar(5)" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

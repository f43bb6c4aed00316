package accrual

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrMissingTreeNode means an account that should have a tree node does not.
// A configuration error: the entity is skipped and the run continues.
var ErrMissingTreeNode = errors.New("tree node missing for account")

// Service adds each active investment's principal to the correct leg of the
// referrer's tree node, once per calendar day. Only *Business counters are
// mutated here; Matched and Carry belong to the matcher.
type Service struct {
	DB *gorm.DB
}

// Outcome summarizes one accrual pass.
type Outcome struct {
	Accrued int
	Skipped int
	Errors  int
}

// AccrueAll records today's volume contribution for every active investment.
// The per-day daily_volumes record (unique per investment and date) is the
// idempotence guard: an investment that already contributed today is skipped,
// so a crashed run can be resumed without double-adding volume.
func (s *Service) AccrueAll(ctx context.Context, today time.Time) Outcome {
	out := Outcome{}

	var investments []domain.Investment
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).Find(&investments).Error; err != nil {
		log.Error().Err(err).Msg("accrual: loading active investments failed")
		out.Errors++
		return out
	}

	for _, inv := range investments {
		accrued, err := s.accrueOne(ctx, inv, today)
		switch {
		case err != nil:
			log.Error().Err(err).Str("investment_id", inv.ID.String()).Str("account_id", inv.AccountID.String()).Msg("accrual: investment skipped")
			out.Errors++
		case accrued:
			out.Accrued++
		default:
			out.Skipped++
		}
	}
	return out
}

// accrueOne returns false without error when the investment already
// contributed today.
func (s *Service) accrueOne(ctx context.Context, inv domain.Investment, today time.Time) (bool, error) {
	accrued := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.DailyVolume
		err := tx.Where("investment_id = ? AND run_date = ?", inv.ID, today).First(&existing).Error
		if err == nil {
			return nil // already recorded for today
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var owner domain.Account
		if err := tx.Where("id = ?", inv.AccountID).First(&owner).Error; err != nil {
			return fmt.Errorf("load owner account: %w", err)
		}

		// Accounts without a binary parent (root accounts and orphans):
		// volume is recorded against their own node but propagates nowhere.
		if owner.ReferrerID == nil {
			node, err := nodeFor(tx, owner.ID)
			if err != nil {
				return err
			}
			if err := tx.Create(&domain.DailyVolume{
				InvestmentID: inv.ID,
				RunDate:      today,
				NodeID:       node.ID,
				Leg:          domain.LegNone,
				Amount:       inv.Principal,
			}).Error; err != nil {
				return err
			}
			accrued = true
			return nil
		}

		node, err := nodeFor(tx, *owner.ReferrerID)
		if err != nil {
			return err
		}

		leg := owner.Position
		column := "left_business"
		if leg == domain.LegRight {
			column = "right_business"
		}

		if err := tx.Create(&domain.DailyVolume{
			InvestmentID: inv.ID,
			RunDate:      today,
			NodeID:       node.ID,
			Leg:          leg,
			Amount:       inv.Principal,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.TreeNode{}).Where("id = ?", node.ID).
			Update(column, gorm.Expr(column+" + ?", inv.Principal)).Error; err != nil {
			return err
		}

		accrued = true
		return nil
	})

	return accrued, err
}

func nodeFor(tx *gorm.DB, accountID uuid.UUID) (*domain.TreeNode, error) {
	var node domain.TreeNode
	if err := tx.Where("account_id = ?", accountID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %s", ErrMissingTreeNode, accountID)
		}
		return nil, err
	}
	return &node, nil
}

package matching

import (
	"context"
	"errors"

	"github.com/mayanksahu17/binary-system-sub001/internal/application/wallet"
	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Terms are the matching parameters in effect for one node.
type Terms struct {
	BinaryPct     decimal.Decimal
	PowerCapacity decimal.Decimal
}

// Service drives MatchNode over every node with pending volume. The node
// state write, the wallet credit and the payout record commit as one
// transaction per node; a failure anywhere rolls the node back untouched so
// it is retried on the next run.
type Service struct {
	DB *gorm.DB
	// Defaults apply when the node owner has no active packaged investment.
	Defaults Terms
}

// Outcome summarizes one MatchAll pass.
type Outcome struct {
	NodesMatched int
	TotalBonus   decimal.Decimal
	Errors       int
}

// MatchAll runs the matching engine once for every node with available volume
// on either leg. Root-kind owners are skipped: their legs accumulate volume
// that never pays out. Per-node failures are logged and counted; the pass
// continues.
func (s *Service) MatchAll(ctx context.Context, runID uuid.UUID) Outcome {
	out := Outcome{TotalBonus: decimal.Zero}

	var nodes []domain.TreeNode
	err := s.DB.WithContext(ctx).
		Where("(left_business - left_matched) > 0 OR (right_business - right_matched) > 0").
		Find(&nodes).Error
	if err != nil {
		log.Error().Err(err).Msg("matching: loading candidate nodes failed")
		out.Errors++
		return out
	}

	for _, node := range nodes {
		bonus, err := s.matchOne(ctx, node.ID, runID)
		if err != nil {
			log.Error().Err(err).Str("node_id", node.ID.String()).Str("run_id", runID.String()).Msg("matching: node skipped")
			out.Errors++
			continue
		}
		if bonus.IsPositive() {
			out.NodesMatched++
			out.TotalBonus = out.TotalBonus.Add(bonus)
		}
	}
	return out
}

func (s *Service) matchOne(ctx context.Context, nodeID, runID uuid.UUID) (decimal.Decimal, error) {
	bonus := decimal.Zero

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var node domain.TreeNode
		if err := tx.Where("id = ?", nodeID).First(&node).Error; err != nil {
			return err
		}

		var owner domain.Account
		if err := tx.Where("id = ?", node.AccountID).First(&owner).Error; err != nil {
			return err
		}
		if owner.Kind == domain.AccountKindRoot {
			return nil
		}

		terms := s.resolveTerms(tx, owner.ID)

		result, err := MatchNode(NodeState{
			LeftBusiness:  node.LeftBusiness,
			RightBusiness: node.RightBusiness,
			LeftMatched:   node.LeftMatched,
			RightMatched:  node.RightMatched,
			LeftCarry:     node.LeftCarry,
			RightCarry:    node.RightCarry,
		}, terms.BinaryPct, terms.PowerCapacity)
		if err != nil {
			return err
		}

		if err := tx.Model(&domain.TreeNode{}).Where("id = ?", node.ID).Updates(map[string]interface{}{
			"left_matched":  result.State.LeftMatched,
			"right_matched": result.State.RightMatched,
			"left_carry":    result.State.LeftCarry,
			"right_carry":   result.State.RightCarry,
		}).Error; err != nil {
			return err
		}

		if !result.Capped.IsPositive() {
			return nil
		}

		if _, err := wallet.Credit(tx, owner.ID, domain.WalletBinary, result.Bonus, domain.LedgerBinaryBonus, &runID, map[string]interface{}{
			"node_id":        node.ID.String(),
			"capped_matched": result.Capped.String(),
		}); err != nil {
			return err
		}

		payout := domain.BonusPayout{
			NodeID:        node.ID,
			AccountID:     owner.ID,
			RunID:         runID,
			MatchedAmount: result.Matched,
			CappedAmount:  result.Capped,
			BonusAmount:   result.Bonus,
			BinaryPct:     terms.BinaryPct,
			PowerCapacity: terms.PowerCapacity,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		bonus = result.Bonus
		return nil
	})

	return bonus, err
}

// resolveTerms sources binaryPct/powerCapacity from the package behind the
// owner's most recent active investment, falling back to the configured
// defaults when no package context exists.
func (s *Service) resolveTerms(tx *gorm.DB, accountID uuid.UUID) Terms {
	var inv domain.Investment
	err := tx.Where("account_id = ? AND is_active = ? AND package_id IS NOT NULL", accountID, true).
		Order("created_at DESC").First(&inv).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("account_id", accountID.String()).Msg("matching: package lookup failed, using defaults")
		}
		return s.Defaults
	}

	var pkg domain.Package
	if err := tx.Where("id = ? AND is_active = ?", *inv.PackageID, true).First(&pkg).Error; err != nil {
		return s.Defaults
	}
	return Terms{BinaryPct: pkg.BinaryPct, PowerCapacity: pkg.PowerCapacity}
}

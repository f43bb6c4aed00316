package roi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/application/wallet"
	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service accrues daily ROI for every active investment. Each investment's
// counter advancement and its two wallet credits commit as one transaction;
// investments are independent, so they are processed by a small worker pool.
type Service struct {
	DB           *gorm.DB
	RenewablePct decimal.Decimal
	Workers      int // pool size; values < 1 mean sequential
	Retries      int // bounded retries for transient store failures
}

// Outcome summarizes one AccrueAll pass.
type Outcome struct {
	Accrued      int
	Skipped      int
	Errors       int
	TotalRoiPaid decimal.Decimal

	mu sync.Mutex
}

// Expire deactivates investments whose term has elapsed (by day count or end
// date), returning how many flipped. Terminal: nothing reactivates them.
func (s *Service) Expire(ctx context.Context, today time.Time) (int, error) {
	res := s.DB.WithContext(ctx).Model(&domain.Investment{}).
		Where("is_active = ? AND (days_elapsed >= duration_days OR end_date < ?)", true, domain.Day(today)).
		Update("is_active", false)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// AccrueAll runs the day's ROI accrual for all active investments not yet
// accrued today. Per-entity failures are logged and counted without aborting
// the pass.
func (s *Service) AccrueAll(ctx context.Context, runID uuid.UUID, today time.Time) *Outcome {
	out := &Outcome{TotalRoiPaid: decimal.Zero}

	var ids []uuid.UUID
	if err := s.DB.WithContext(ctx).Model(&domain.Investment{}).
		Where("is_active = ?", true).Pluck("id", &ids).Error; err != nil {
		log.Error().Err(err).Msg("roi: loading active investments failed")
		out.Errors++
		return out
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers <= 1 {
		for _, id := range ids {
			s.accrueWithRetry(ctx, id, runID, today, out)
		}
		return out
	}

	jobs := make(chan uuid.UUID)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				s.accrueWithRetry(ctx, id, runID, today, out)
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()
	return out
}

func (s *Service) accrueWithRetry(ctx context.Context, id, runID uuid.UUID, today time.Time, out *Outcome) {
	var paid decimal.Decimal
	var err error
	for attempt := 0; ; attempt++ {
		paid, err = s.accrueOne(ctx, id, runID, today)
		if err == nil || permanent(err) || attempt >= s.Retries {
			break
		}
		log.Warn().Err(err).Str("investment_id", id.String()).Int("attempt", attempt+1).Msg("roi: transient failure, retrying")
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	switch {
	case err == nil:
		out.Accrued++
		out.TotalRoiPaid = out.TotalRoiPaid.Add(paid)
	case errors.Is(err, ErrAlreadyAccrued) || errors.Is(err, ErrInactive):
		out.Skipped++
	case errors.Is(err, ErrZeroRoiRate):
		log.Error().Str("investment_id", id.String()).Msg("roi: zero daily rate, investment skipped")
		out.Errors++
	default:
		log.Error().Err(err).Str("investment_id", id.String()).Str("run_id", runID.String()).Msg("roi: investment deferred to next run")
		out.Errors++
	}
}

func (s *Service) accrueOne(ctx context.Context, id, runID uuid.UUID, today time.Time) (decimal.Decimal, error) {
	paid := decimal.Zero

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv domain.Investment
		if err := tx.Where("id = ?", id).First(&inv).Error; err != nil {
			return err
		}

		step, err := AccrueStep(inv, s.RenewablePct, today)
		if err != nil {
			return err
		}

		ref := map[string]interface{}{
			"investment_id": inv.ID.String(),
			"daily_roi":     step.Daily.String(),
		}
		if step.Cashable.IsPositive() {
			if _, err := wallet.Credit(tx, inv.AccountID, domain.WalletROI, step.Cashable, domain.LedgerRoiCashable, &runID, ref); err != nil {
				return err
			}
		}
		if step.Renewable.IsPositive() {
			if _, err := wallet.CreditRenewable(tx, inv.AccountID, step.Renewable, &runID, ref); err != nil {
				return err
			}
		}

		upd := step.Investment
		if err := tx.Model(&domain.Investment{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"last_accrual_date": upd.LastAccrualDate,
			"total_roi_earned":  upd.TotalRoiEarned,
			"total_reinvested":  upd.TotalReinvested,
			"days_elapsed":      upd.DaysElapsed,
			"days_remaining":    upd.DaysRemaining,
			"is_active":         upd.IsActive,
		}).Error; err != nil {
			return err
		}

		paid = step.Daily
		return nil
	})

	return paid, err
}

// permanent reports whether err is a per-entity condition that retrying
// cannot fix.
func permanent(err error) bool {
	return errors.Is(err, ErrAlreadyAccrued) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrZeroRoiRate) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

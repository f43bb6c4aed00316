package dailyrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/application/accrual"
	"github.com/mayanksahu17/binary-system-sub001/internal/application/matching"
	"github.com/mayanksahu17/binary-system-sub001/internal/application/roi"
	"github.com/mayanksahu17/binary-system-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const leaseTTL = 15 * time.Minute

// The lease key is global, not per date: runs for different dates still
// read-modify-write the same tree nodes and investments, so only one
// orchestrator run may execute at a time.
const runLeaseKey = "dailyrun"

// ErrRunInProgress means another orchestrator run currently holds the lease.
var ErrRunInProgress = errors.New("daily run already in progress")

// Settings are the engine parameters for one run, resolved once at start and
// passed down explicitly — nothing is looked up ad hoc per entity.
type Settings struct {
	BinaryPct     decimal.Decimal // default bonus pct when a node has no package context
	PowerCapacity decimal.Decimal // default per-node matched-volume cap
	RenewablePct  decimal.Decimal // ROI share retained as renewable principal
	Workers       int
	EntityRetries int
}

// Summary is the outcome of one daily cycle, also persisted as the daily_runs
// row for the date.
type Summary struct {
	RunID          uuid.UUID       `json:"run_id"`
	RunDate        time.Time       `json:"run_date"`
	Status         string          `json:"status"`
	Expired        int             `json:"expired"`
	Matched        int             `json:"matched"`
	Accrued        int             `json:"accrued"`
	Errors         int             `json:"errors"`
	TotalBonusPaid decimal.Decimal `json:"total_bonus_paid"`
	TotalRoiPaid   decimal.Decimal `json:"total_roi_paid"`
}

// Runner executes the daily cycle in fixed order: expire investments, accrue
// business volume, match nodes, accrue ROI. Matching must see today's volume
// before ROI timestamps advance.
type Runner struct {
	DB       *gorm.DB
	Locker   Locker
	Settings Settings

	accrual  *accrual.Service
	matching *matching.Service
	roi      *roi.Service
}

func NewRunner(db *gorm.DB, locker Locker, settings Settings) *Runner {
	return &Runner{
		DB:       db,
		Locker:   locker,
		Settings: settings,
		accrual:  &accrual.Service{DB: db},
		matching: &matching.Service{DB: db, Defaults: matching.Terms{
			BinaryPct:     settings.BinaryPct,
			PowerCapacity: settings.PowerCapacity,
		}},
		roi: &roi.Service{
			DB:           db,
			RenewablePct: settings.RenewablePct,
			Workers:      settings.Workers,
			Retries:      settings.EntityRetries,
		},
	}
}

// RunDailyCycle runs the cycle for today's date exactly once. A completed run
// for the date is returned as-is without touching any counter or wallet; a
// concurrent run returns ErrRunInProgress. Entity-level errors are counted in
// the summary and never abort the run; only a store-unavailable condition
// does, and the run is then safely re-executable.
func (r *Runner) RunDailyCycle(ctx context.Context, today time.Time) (Summary, error) {
	day := domain.Day(today)

	release, err := r.Locker.Acquire(ctx, runLeaseKey, leaseTTL)
	if err != nil {
		if errors.Is(err, ErrLeaseHeld) {
			return Summary{}, ErrRunInProgress
		}
		return Summary{}, fmt.Errorf("acquire run lease: %w", err)
	}
	defer release()

	run, done, err := r.openRun(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	if done {
		log.Info().Str("run_date", day.Format("2006-01-02")).Msg("dailyrun: already completed, returning stored summary")
		return summaryOf(run), nil
	}

	log.Info().Str("run_id", run.ID.String()).Str("run_date", day.Format("2006-01-02")).Msg("dailyrun: starting cycle")

	expired, err := r.roi.Expire(ctx, day)
	if err != nil {
		r.closeRun(ctx, run, domain.RunStatusFailed)
		return Summary{}, fmt.Errorf("expire investments: %w", err)
	}
	run.Expired = expired

	acc := r.accrual.AccrueAll(ctx, day)
	match := r.matching.MatchAll(ctx, run.ID)
	roiOut := r.roi.AccrueAll(ctx, run.ID, day)

	run.Matched = match.NodesMatched
	run.Accrued = roiOut.Accrued
	run.Errors = acc.Errors + match.Errors + roiOut.Errors
	run.TotalBonusPaid = match.TotalBonus
	run.TotalRoiPaid = roiOut.TotalRoiPaid

	if err := r.closeRun(ctx, run, domain.RunStatusCompleted); err != nil {
		return Summary{}, fmt.Errorf("persist run summary: %w", err)
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("expired", run.Expired).
		Int("volume_accruals", acc.Accrued).
		Int("matched", run.Matched).
		Int("roi_accrued", run.Accrued).
		Int("errors", run.Errors).
		Str("bonus_paid", run.TotalBonusPaid.String()).
		Str("roi_paid", run.TotalRoiPaid.String()).
		Msg("dailyrun: cycle finished")

	return summaryOf(run), nil
}

// openRun finds or creates the daily_runs row for day. done is true when the
// date already completed; a running or failed row is resumed (the per-entity
// guards make resumption safe).
func (r *Runner) openRun(ctx context.Context, day time.Time) (*domain.DailyRun, bool, error) {
	var run domain.DailyRun
	err := r.DB.WithContext(ctx).Where("run_date = ?", day).First(&run).Error
	switch {
	case err == nil:
		if run.Status == domain.RunStatusCompleted {
			return &run, true, nil
		}
		run.Status = domain.RunStatusRunning
		run.StartedAt = time.Now().UTC()
		if err := r.DB.WithContext(ctx).Save(&run).Error; err != nil {
			return nil, false, err
		}
		return &run, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		run = domain.DailyRun{
			RunDate:        day,
			Status:         domain.RunStatusRunning,
			StartedAt:      time.Now().UTC(),
			TotalBonusPaid: decimal.Zero,
			TotalRoiPaid:   decimal.Zero,
		}
		if err := r.DB.WithContext(ctx).Create(&run).Error; err != nil {
			return nil, false, err
		}
		return &run, false, nil
	default:
		return nil, false, err
	}
}

func (r *Runner) closeRun(ctx context.Context, run *domain.DailyRun, status domain.RunStatus) error {
	now := time.Now().UTC()
	run.Status = status
	run.FinishedAt = &now
	return r.DB.WithContext(ctx).Save(run).Error
}

func summaryOf(run *domain.DailyRun) Summary {
	return Summary{
		RunID:          run.ID,
		RunDate:        run.RunDate,
		Status:         string(run.Status),
		Expired:        run.Expired,
		Matched:        run.Matched,
		Accrued:        run.Accrued,
		Errors:         run.Errors,
		TotalBonusPaid: run.TotalBonusPaid,
		TotalRoiPaid:   run.TotalRoiPaid,
	}
}

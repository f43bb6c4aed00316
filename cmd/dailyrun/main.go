package main

import (
	"context"
	"flag"
	"time"

	"github.com/mayanksahu17/binary-system-sub001/internal/application/dailyrun"
	"github.com/mayanksahu17/binary-system-sub001/internal/config"
	"github.com/mayanksahu17/binary-system-sub001/internal/infrastructure/database"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// One-shot batch entrypoint for an external scheduler: runs the daily cycle
// for today (or -date) and exits non-zero on run failure. Re-invocation for a
// completed date is a no-op.
func main() {
	dateFlag := flag.String("date", "", "run date as YYYY-MM-DD (default: today, UTC)")
	flag.Parse()

	day := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatal().Err(err).Str("date", *dateFlag).Msg("invalid -date")
		}
		day = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	var locker dailyrun.Locker = &dailyrun.LocalLocker{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		locker = &dailyrun.RedisLocker{Rdb: redis.NewClient(opts)}
	}

	runner := dailyrun.NewRunner(db, locker, dailyrun.Settings{
		BinaryPct:     cfg.BinaryPctDefault,
		PowerCapacity: cfg.PowerCapacityDefault,
		RenewablePct:  cfg.RenewablePct,
		Workers:       cfg.RunWorkers,
		EntityRetries: cfg.EntityRetries,
	})

	summary, err := runner.RunDailyCycle(context.Background(), day)
	if err != nil {
		log.Fatal().Err(err).Msg("daily run failed")
	}

	log.Info().
		Str("run_id", summary.RunID.String()).
		Str("run_date", summary.RunDate.Format("2006-01-02")).
		Int("expired", summary.Expired).
		Int("matched", summary.Matched).
		Int("accrued", summary.Accrued).
		Int("errors", summary.Errors).
		Str("bonus_paid", summary.TotalBonusPaid.String()).
		Str("roi_paid", summary.TotalRoiPaid.String()).
		Msg("daily run finished")
}

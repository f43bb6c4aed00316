package router

import (
	"github.com/mayanksahu17/binary-system-sub001/internal/application/dailyrun"
	"github.com/mayanksahu17/binary-system-sub001/internal/config"
	"github.com/mayanksahu17/binary-system-sub001/internal/infrastructure/database"
	"github.com/mayanksahu17/binary-system-sub001/internal/interfaces/handlers/health"
	"github.com/mayanksahu17/binary-system-sub001/internal/interfaces/handlers/runs"
	"github.com/mayanksahu17/binary-system-sub001/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration, opening the store and Redis from config.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health", healthHandlers.Status)

	if db != nil {
		var locker dailyrun.Locker = &dailyrun.LocalLocker{}
		if rdb != nil {
			locker = &dailyrun.RedisLocker{Rdb: rdb}
		}
		runner := dailyrun.NewRunner(db, locker, dailyrun.Settings{
			BinaryPct:     cfg.BinaryPctDefault,
			PowerCapacity: cfg.PowerCapacityDefault,
			RenewablePct:  cfg.RenewablePct,
			Workers:       cfg.RunWorkers,
			EntityRetries: cfg.EntityRetries,
		})

		runHandlers := &runs.Handlers{Runner: runner, DB: db}
		runGroup := app.Group("/api/v1/runs", middleware.RequireAdminKey(cfg.AdminKeyHash))
		runGroup.Post("/trigger", runHandlers.Trigger)
		runGroup.Get("/", runHandlers.List)
	}

	return app, db, rdb, nil
}

package main

import (
	"context"
	"fmt"

	"github.com/mayanksahu17/binary-system-sub001/internal/config"
	"github.com/mayanksahu17/binary-system-sub001/internal/interfaces/router"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create failed")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("get underlying DB failed")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Postgres connection failed")
		}
		fmt.Println("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		fmt.Println("Redis connected")
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("admin API listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package db

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"process-platform/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool is the single process-wide connection pool. AppDb is gorm running on
// top of the same pool.
var (
	Pool  *pgxpool.Pool
	AppDb *gorm.DB
)

func ConnectDb(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(config.AppConfig.DSN())
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	if config.AppConfig.DBMaxConns > 0 {
		poolConfig.MaxConns = config.AppConfig.DBMaxConns
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("open gorm: %w", err)
	}

	Pool = pool
	AppDb = gormDB
	log.Info().Int32("max_conns", poolConfig.MaxConns).Msg("connected to database")

	return nil
}

// newGormLogger routes gorm's output through zerolog.
func newGormLogger() logger.Interface {
	level := logger.Info
	if config.AppConfig.IsProduction() {
		level = logger.Error
	}
	return logger.New(
		stdlog.New(log.Logger, "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func CloseDb() {
	if AppDb != nil {
		if sqlDB, err := AppDb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close gorm connection")
			}
		}
	}
	if Pool != nil {
		Pool.Close()
	}
	log.Info().Msg("database closed")
}

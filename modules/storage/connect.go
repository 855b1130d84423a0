package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// opener opens a database handle. Tests replace it to simulate outages.
type opener func(cfg config.Database) (*gorm.DB, error)

type connector struct {
	cfg   config.Database
	open  opener
	sleep func(context.Context, time.Duration) error
}

// Connect opens the configured database and pings it. Failed attempts are
// retried cfg.Retries times, waiting cfg.RetryDelay between attempts.
func Connect(ctx context.Context, cfg config.Database) (*gorm.DB, error) {
	c := connector{cfg: cfg, open: Open, sleep: sleepContext}
	return c.connect(ctx)
}

func (c connector) connect(ctx context.Context) (*gorm.DB, error) {
	attempts := c.cfg.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := c.open(c.cfg)
		if err == nil {
			if err = ping(ctx, db); err != nil {
				closeDB(db)
			}
		}
		if err == nil {
			log.Printf("[storage] Connected to %s database", c.cfg.Driver)
			return db, nil
		}
		lastErr = err
		log.Printf("[storage] Database connection attempt %d/%d failed: %v", attempt, attempts, err)

		if attempt == attempts {
			break
		}
		log.Printf("[storage] Retrying database connection in %s...", c.cfg.RetryDelay)
		if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
			return nil, fmt.Errorf("database connection aborted: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// Open opens a gorm handle for the configured driver.
func Open(cfg config.Database) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return gorm.Open(postgres.Open(cfg.URL), gormCfg)
	case config.DriverSQLite, "":
		return gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

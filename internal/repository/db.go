package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

// Open connects to the configured database, applies pool settings and runs
// migrations. The URL shape picks the driver: postgres DSNs start with
// postgres:// / postgresql:// or use key=value form, anything else is a
// sqlite file path.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	logger.Info("connecting to database", "url", cfg.URL)

	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(dialectorFor(cfg.URL), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		})
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.ConnectTimeout
	if err := backoff.Retry(connect, backoff.WithContext(bo, ctx)); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Company{},
		&entity.SourceDocument{},
		&entity.FinancialRecord{},
	); err != nil {
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

func dialectorFor(url string) gorm.Dialector {
	if strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://") ||
		strings.Contains(url, "host=") {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

// Close closes the underlying connection pool gracefully.
func Close(db *gorm.DB, logger *slog.Logger) {
	logger.Info("closing database connections")
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to access connection pool", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch connection issues early.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithTransaction runs fn inside one transaction; any error rolls the whole
// batch back.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// mapErr translates gorm errors into the application's sentinel errors so
// callers never import gorm for error checks.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return common.ErrDuplicate
	default:
		return err
	}
}

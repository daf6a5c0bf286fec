package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/classbill/classbill/internal/config"
	feedomain "github.com/classbill/classbill/internal/fee/domain"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Run brings the schema up to date. Postgres uses the versioned SQL
// migrations under an advisory lock so concurrent deploys cannot race;
// sqlite (tests, local demos) auto-migrates the models directly.
func Run(ctx context.Context, db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DB.Driver == "sqlite" {
		return runSQLite(db, log)
	}
	return runPostgres(ctx, db, log)
}

func runSQLite(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&studentdomain.Student{}, &feedomain.Fee{}, &feedomain.Payment{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// Partial unique index backing the one-monthly-fee-per-period guarantee.
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fees_monthly_period
		ON fees (teacher_id, student_id, month, year) WHERE type = 'monthly'`).Error
	if err != nil {
		return fmt.Errorf("create monthly period index: %w", err)
	}
	log.Info("schema migrated", zap.String("driver", "sqlite"))
	return nil
}

func runPostgres(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	unlock, err := acquireAdvisoryLock(ctx, sqlDB)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := unlock(ctx); unlockErr != nil {
			log.Warn("release advisory lock", zap.Error(unlockErr))
		}
	}()

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Info("schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

package infra

import (
	"fmt"

	"mata/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and migrates the schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the tables and applies the idempotent
// patches AutoMigrate cannot express. Also used by tests on SQLite.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Vente{},
		&model.PaiementCash{},
		&model.Reconciliation{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs DDL statements that are safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// sales are always read per day and point of sale
		{"idx_ventes_date_pdv",
			`CREATE INDEX IF NOT EXISTS idx_ventes_date_pdv ON ventes (date, point_de_vente)`},
		{"idx_paiements_cash_date_ref",
			`CREATE INDEX IF NOT EXISTS idx_paiements_cash_date_ref ON paiements_cash (date, reference)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

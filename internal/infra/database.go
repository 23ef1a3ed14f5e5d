package infra

import (
	"fmt"

	"opticpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the reporting/catalog tables, then applies the idempotent SQL patches
// AutoMigrate cannot express.
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
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the remote-store schema. Shared with
// integration tests so they run against the same DDL as production.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.InvoiceRecord{},
		&model.RefundRecord{},
		&model.DailySalesSummary{},
		&model.PaymentMethodSummary{},
		&model.InvoiceTypeSummary{},
		&model.MonthlySalesSummary{},
		&model.Frame{},
		&model.LensType{},
		&model.LensCoating{},
		&model.LensThickness{},
		&model.LensCombination{},
		&model.ContactLens{},
		&model.ServiceItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express —
// the composite date+location indexes backing the aggregation queries.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_invoice_records_date_location') THEN
		    CREATE INDEX idx_invoice_records_date_location
		        ON invoice_records (date, location_id);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_refund_records_date_location') THEN
		    CREATE INDEX idx_refund_records_date_location
		        ON refund_records (date, location_id);
		  END IF;
		END $$`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}

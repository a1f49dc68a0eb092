package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/config"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg config.DatabaseConfig, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn := cfg.DSN()

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates the full schema. The unique index on
// lot.canonical_id backs the insert-if-absent contract of lot resolution;
// the lot_id indexes on the three record tables keep the consolidated view
// proportional to the lot, not the database.
func AutoMigrateAll(gdb *gorm.DB, log *logger.Logger) error {
	log.Info("Auto migrating tables...")
	err := gdb.AutoMigrate(
		&types.ProductionLine{},
		&types.DefectType{},
		&types.Lot{},
		&types.ProductionRecord{},
		&types.QualityRecord{},
		&types.ShippingRecord{},
		&types.NormalizationAudit{},
		&types.Discrepancy{},
		&types.ImportBatch{},
	)
	if err != nil {
		log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db, s.log)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

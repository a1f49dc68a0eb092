package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lotsight/lotsight-backend/internal/config"
	"github.com/lotsight/lotsight-backend/internal/db"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/validation"
)

// lotsight-validate runs the cross-source validation pass once and prints
// the report. Safe to re-run: known discrepancies are not duplicated.
func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on process environment")
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"), log)
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}

	postgresService, err := db.NewPostgresService(cfg.Database, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	lotRepo := repos.NewLotRepo(thePG, log)
	prodRepo := repos.NewProductionRecordRepo(thePG, log)
	qualityRepo := repos.NewQualityRecordRepo(thePG, log)
	shippingRepo := repos.NewShippingRecordRepo(thePG, log)
	discrepancyRepo := repos.NewDiscrepancyRepo(thePG, log)
	auditRepo := repos.NewNormalizationAuditRepo(thePG, log)

	validationService := validation.NewService(thePG, log, lotRepo, prodRepo, qualityRepo, shippingRepo, discrepancyRepo, auditRepo)

	report, err := validationService.ValidateAll(context.Background())
	if err != nil {
		log.Fatal("Validation failed", "error", err)
	}

	log.Info("Validation finished",
		"valid", report.Valid,
		"new_discrepancies", len(report.NewDiscrepancies),
		"total_open", report.TotalOpen,
		"flagged_identifiers", report.FlaggedIdentifiers,
	)
	for _, d := range report.NewDiscrepancies {
		log.Warn("Discrepancy", "lot", d.LotID, "missing_in", d.MissingInSource, "description", d.Description)
	}
	for _, e := range report.Errors {
		log.Warn("Validation error", "error", e)
	}
	if !report.Valid {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/lotsight/lotsight-backend/internal/config"
	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/db"
	"github.com/lotsight/lotsight-backend/internal/handlers"
	"github.com/lotsight/lotsight-backend/internal/ingestion"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/reporting"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/server"
	"github.com/lotsight/lotsight-backend/internal/validation"
)

func main() {
	// Logger
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

	// Env + config
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on process environment")
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"), log)
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}

	// Tracing
	if cfg.Tracing.Enabled {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Fatal("Could not init trace exporter", "error", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("Tracer shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Database, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	lotRepo := repos.NewLotRepo(thePG, log)
	lineRepo := repos.NewProductionLineRepo(thePG, log)
	defectRepo := repos.NewDefectTypeRepo(thePG, log)
	prodRepo := repos.NewProductionRecordRepo(thePG, log)
	qualityRepo := repos.NewQualityRecordRepo(thePG, log)
	shippingRepo := repos.NewShippingRecordRepo(thePG, log)
	auditRepo := repos.NewNormalizationAuditRepo(thePG, log)
	discrepancyRepo := repos.NewDiscrepancyRepo(thePG, log)
	batchRepo := repos.NewImportBatchRepo(thePG, log)

	// Lot index
	lotIndex := consolidation.NewLotIndex(log, lotRepo)
	if err := lotIndex.Rebuild(context.Background()); err != nil {
		log.Fatal("Could not rebuild lot index", "error", err)
	}
	log.Info("Lot index ready", "lots", lotIndex.Len())

	// Services
	log.Info("Setting up Services from main...")
	normalizationService := normalization.NewService(thePG, log, auditRepo)
	importService := ingestion.NewService(thePG, log, normalizationService, lotIndex, lotRepo, lineRepo, defectRepo, prodRepo, qualityRepo, shippingRepo, batchRepo)
	consolidationService := consolidation.NewService(thePG, log, lotRepo, prodRepo, qualityRepo, shippingRepo)
	validationService := validation.NewService(thePG, log, lotRepo, prodRepo, qualityRepo, shippingRepo, discrepancyRepo, auditRepo)
	reportingService := reporting.NewService(thePG, log, lotIndex, lotRepo, prodRepo, qualityRepo, shippingRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	importHandler := handlers.NewImportHandler(importService, batchRepo, cfg.Server.MaxUploadMB)
	lotHandler := handlers.NewLotHandler(consolidationService, reportingService, normalizationService)
	validationHandler := handlers.NewValidationHandler(validationService)
	reportHandler := handlers.NewReportHandler(reportingService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		ImportHandler:     importHandler,
		LotHandler:        lotHandler,
		ValidationHandler: validationHandler,
		ReportHandler:     reportHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

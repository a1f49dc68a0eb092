package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lotsight/lotsight-backend/internal/config"
	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/db"
	"github.com/lotsight/lotsight-backend/internal/ingestion"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// lotsight-import loads CSV or XLSX files into the database from the
// command line:
//
//	lotsight-import -production prod.csv -quality qa.xlsx -shipping ship.csv
func main() {
	productionPath := flag.String("production", "", "production CSV/XLSX file")
	qualityPath := flag.String("quality", "", "quality CSV/XLSX file")
	shippingPath := flag.String("shipping", "", "shipping CSV/XLSX file")
	flag.Parse()

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

	if *productionPath == "" && *qualityPath == "" && *shippingPath == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	lineRepo := repos.NewProductionLineRepo(thePG, log)
	defectRepo := repos.NewDefectTypeRepo(thePG, log)
	prodRepo := repos.NewProductionRecordRepo(thePG, log)
	qualityRepo := repos.NewQualityRecordRepo(thePG, log)
	shippingRepo := repos.NewShippingRecordRepo(thePG, log)
	auditRepo := repos.NewNormalizationAuditRepo(thePG, log)
	batchRepo := repos.NewImportBatchRepo(thePG, log)

	lotIndex := consolidation.NewLotIndex(log, lotRepo)
	if err := lotIndex.Rebuild(context.Background()); err != nil {
		log.Fatal("Could not rebuild lot index", "error", err)
	}

	normalizationService := normalization.NewService(thePG, log, auditRepo)
	importService := ingestion.NewService(thePG, log, normalizationService, lotIndex, lotRepo, lineRepo, defectRepo, prodRepo, qualityRepo, shippingRepo, batchRepo)

	type job struct {
		source types.SourceType
		path   string
	}
	jobs := []job{}
	if *productionPath != "" {
		jobs = append(jobs, job{types.SourceProduction, *productionPath})
	}
	if *qualityPath != "" {
		jobs = append(jobs, job{types.SourceQuality, *qualityPath})
	}
	if *shippingPath != "" {
		jobs = append(jobs, job{types.SourceShipping, *shippingPath})
	}

	var mu sync.Mutex
	results := map[types.SourceType]*ingestion.ImportResult{}

	g, ctx := errgroup.WithContext(context.Background())
	for _, j := range jobs {
		g.Go(func() error {
			result, err := importService.ImportFile(ctx, j.source, j.path)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", j.source, j.path, err)
			}
			mu.Lock()
			results[j.source] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("Import failed", "error", err)
	}

	exitCode := 0
	for source, result := range results {
		log.Info("Import finished",
			"source", source,
			"status", result.Status,
			"imported", result.RowsImported,
			"failed", result.RowsFailed,
			"warnings", result.Warnings,
		)
		if result.Status != types.ImportSucceeded {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

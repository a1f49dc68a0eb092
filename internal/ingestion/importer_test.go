package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/testdb"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type fixture struct {
	db        *gorm.DB
	lotRepo   repos.LotRepo
	prodRepo  repos.ProductionRecordRepo
	shipRepo  repos.ShippingRecordRepo
	auditRepo repos.NormalizationAuditRepo
	batchRepo repos.ImportBatchRepo
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testdb.Open(t)
	nop := logger.NewNop()
	f := &fixture{
		db:        gdb,
		lotRepo:   repos.NewLotRepo(gdb, nop),
		prodRepo:  repos.NewProductionRecordRepo(gdb, nop),
		shipRepo:  repos.NewShippingRecordRepo(gdb, nop),
		auditRepo: repos.NewNormalizationAuditRepo(gdb, nop),
		batchRepo: repos.NewImportBatchRepo(gdb, nop),
	}
	normalizer := normalization.NewService(gdb, nop, f.auditRepo)
	index := consolidation.NewLotIndex(nop, f.lotRepo)
	f.svc = NewService(
		gdb, nop, normalizer, index,
		f.lotRepo,
		repos.NewProductionLineRepo(gdb, nop),
		repos.NewDefectTypeRepo(gdb, nop),
		f.prodRepo,
		repos.NewQualityRecordRepo(gdb, nop),
		f.shipRepo,
		f.batchRepo,
	)
	return f
}

const productionCSV = "lot_id,production_date,production_line,timestamp,quantity_produced,status,issue_description\n" +
	"LOT-20260112-001,2026-01-12,Line 1,2026-01-12 08:00:00,500,completed,\n" +
	"lot 20260112 001,2026-01-12,Line 1,2026-01-12 14:00:00,250,completed,misalignment\n" +
	"LOT-20260113-002,2026-01-13,Line 2,2026-01-13 08:00:00,300,completed,\n"

func TestImportReaderProductionCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.ImportReader(ctx, types.SourceProduction, "prod.csv", strings.NewReader(productionCSV))
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if result.Status != types.ImportSucceeded || result.RowsImported != 3 || result.RowsFailed != 0 {
		t.Fatalf("result = %+v", result)
	}

	// Both spellings of the first identifier landed on one lot.
	lots, err := f.lotRepo.ListAll(ctx, nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(lots))
	}
	lot, err := f.lotRepo.GetByCanonicalID(ctx, nil, "LOT-20260112-001")
	if err != nil {
		t.Fatalf("GetByCanonicalID: %v", err)
	}
	records, err := f.prodRepo.ListByLotID(ctx, nil, lot.ID)
	if err != nil {
		t.Fatalf("ListByLotID: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 production records, got %d", len(records))
	}
	if lot.ProductionDate == nil {
		t.Fatalf("production context not set on lot")
	}

	// Every raw spelling appended its own audit row.
	trail, err := f.auditRepo.ListByNormalized(ctx, nil, "LOT-20260112-001")
	if err != nil {
		t.Fatalf("ListByNormalized: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(trail))
	}

	batches, err := f.batchRepo.ListRecent(ctx, nil, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(batches) != 1 || batches[0].Status != types.ImportSucceeded {
		t.Fatalf("batches = %+v", batches)
	}
}

func TestImportRowsSchemaMismatchAborts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	headers := []string{"lot_id", "production_date"}
	rows := []Row{{"lot_id": "LOT-20260112-001", "production_date": "2026-01-12"}}
	_, err := f.svc.ImportRows(ctx, types.SourceProduction, headers, rows, "bad.csv", "csv")

	var se *types.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	// Nothing was touched: no lots, no batch record.
	lots, err := f.lotRepo.ListAll(ctx, nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(lots) != 0 {
		t.Fatalf("schema mismatch must not create lots, got %d", len(lots))
	}
	batches, err := f.batchRepo.ListRecent(ctx, nil, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("schema mismatch must not record a batch, got %d", len(batches))
	}
}

func TestImportRowsBadRowContinues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	csvInput := "lot_id,shipment_date,shipment_status,carrier_info,destination\n" +
		"LOT-20260112-001,2026-01-17,Delivered,ACME,Berlin\n" +
		",2026-01-18,Delivered,,\n" +
		"LOT-20260113-002,not-a-date,In Transit,,\n" +
		"LOT-20260114-003,2026-01-19,In Transit,,\n"

	result, err := f.svc.ImportReader(ctx, types.SourceShipping, "ship.csv", strings.NewReader(csvInput))
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if result.Status != types.ImportPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if result.RowsImported != 2 || result.RowsFailed != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("row errors = %+v", result.RowErrors)
	}
	// Row numbers count from the line after the header.
	if result.RowErrors[0].RowNumber != 3 || result.RowErrors[1].RowNumber != 4 {
		t.Fatalf("row errors = %+v", result.RowErrors)
	}

	records, err := f.shipRepo.ListAll(ctx, nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 shipping records, got %d", len(records))
	}
}

func TestImportRowsNegativeQuantityFailsValidation(t *testing.T) {
	f := newFixture(t)

	headers := []string{"lot_id", "production_date", "production_line", "timestamp", "quantity_produced", "status"}
	rows := []Row{{
		"lot_id":            "LOT-20260112-001",
		"production_date":   "2026-01-12",
		"production_line":   "Line 1",
		"timestamp":         "2026-01-12 08:00:00",
		"quantity_produced": "-5",
		"status":            "completed",
	}}
	result, err := f.svc.ImportRows(context.Background(), types.SourceProduction, headers, rows, "prod.csv", "csv")
	if err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if result.Status != types.ImportFailed || result.RowsFailed != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestImportReaderUnsupportedFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportReader(context.Background(), types.SourceShipping, "ship.txt", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestImportRowsAmbiguousIdentifierWarns(t *testing.T) {
	f := newFixture(t)

	headers := []string{"lot_id", "shipment_date", "shipment_status"}
	rows := []Row{{
		"lot_id":          "A7",
		"shipment_date":   "2026-01-17",
		"shipment_status": "Delivered",
	}}
	result, err := f.svc.ImportRows(context.Background(), types.SourceShipping, headers, rows, "ship.csv", "csv")
	if err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if result.Status != types.ImportSucceeded || result.Warnings != 1 {
		t.Fatalf("result = %+v", result)
	}
}

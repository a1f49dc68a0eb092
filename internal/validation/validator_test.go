package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/testdb"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type fixture struct {
	db          *gorm.DB
	lotRepo     repos.LotRepo
	lineRepo    repos.ProductionLineRepo
	defectRepo  repos.DefectTypeRepo
	prodRepo    repos.ProductionRecordRepo
	qualityRepo repos.QualityRecordRepo
	shipRepo    repos.ShippingRecordRepo
	discRepo    repos.DiscrepancyRepo
	svc         Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testdb.Open(t)
	nop := logger.NewNop()
	f := &fixture{
		db:          gdb,
		lotRepo:     repos.NewLotRepo(gdb, nop),
		lineRepo:    repos.NewProductionLineRepo(gdb, nop),
		defectRepo:  repos.NewDefectTypeRepo(gdb, nop),
		prodRepo:    repos.NewProductionRecordRepo(gdb, nop),
		qualityRepo: repos.NewQualityRecordRepo(gdb, nop),
		shipRepo:    repos.NewShippingRecordRepo(gdb, nop),
		discRepo:    repos.NewDiscrepancyRepo(gdb, nop),
	}
	auditRepo := repos.NewNormalizationAuditRepo(gdb, nop)
	f.svc = NewService(gdb, nop, f.lotRepo, f.prodRepo, f.qualityRepo, f.shipRepo, f.discRepo, auditRepo)
	return f
}

var testDay = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

func (f *fixture) lot(t *testing.T, canonical string) *types.Lot {
	t.Helper()
	lot, _, err := f.lotRepo.ResolveOrCreate(context.Background(), nil, canonical, false)
	if err != nil {
		t.Fatalf("ResolveOrCreate(%q): %v", canonical, err)
	}
	return lot
}

func (f *fixture) addProduction(t *testing.T, lotID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	line, err := f.lineRepo.GetOrCreate(ctx, nil, "Line 1")
	if err != nil {
		t.Fatalf("GetOrCreate line: %v", err)
	}
	_, err = f.prodRepo.Create(ctx, nil, []*types.ProductionRecord{{
		ID:               uuid.New(),
		LotID:            lotID,
		ProductionLineID: line.ID,
		ProductionDate:   testDay,
		RecordTimestamp:  testDay.Add(8 * time.Hour),
		QuantityProduced: 100,
		Status:           "completed",
	}})
	if err != nil {
		t.Fatalf("Create production record: %v", err)
	}
}

func (f *fixture) addQuality(t *testing.T, lotID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	dt, err := f.defectRepo.GetOrCreate(ctx, nil, "scratch")
	if err != nil {
		t.Fatalf("GetOrCreate defect type: %v", err)
	}
	_, err = f.qualityRepo.Create(ctx, nil, []*types.QualityRecord{{
		ID:               uuid.New(),
		LotID:            lotID,
		InspectionDate:   testDay,
		DefectTypeID:     dt.ID,
		DefectCount:      2,
		InspectionStatus: "Pass",
	}})
	if err != nil {
		t.Fatalf("Create quality record: %v", err)
	}
}

func (f *fixture) addShipping(t *testing.T, lotID uuid.UUID, status string) {
	t.Helper()
	day := testDay.AddDate(0, 0, 5)
	_, err := f.shipRepo.Create(context.Background(), nil, []*types.ShippingRecord{{
		ID:             uuid.New(),
		LotID:          lotID,
		ShipmentDate:   &day,
		ShipmentStatus: status,
	}})
	if err != nil {
		t.Fatalf("Create shipping record: %v", err)
	}
}

func findByLot(discrepancies []*types.Discrepancy, lotID uuid.UUID) []*types.Discrepancy {
	var out []*types.Discrepancy
	for _, d := range discrepancies {
		if d.LotID == lotID {
			out = append(out, d)
		}
	}
	return out
}

func TestValidateAllShippedWithoutProduction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "LOT-20260112-001")
	f.addShipping(t, lot.ID, "Delivered")

	report, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	found := findByLot(report.NewDiscrepancies, lot.ID)
	if len(found) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d", len(found))
	}
	if found[0].MissingInSource != types.MissingProduction {
		t.Fatalf("missing_in_source = %q, want production", found[0].MissingInSource)
	}

	got, err := f.lotRepo.GetByID(ctx, nil, lot.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DataFlag != types.DataFlagMissingSource {
		t.Fatalf("lot flag = %q, want missing-source", got.DataFlag)
	}
}

func TestValidateAllQualityWithoutProduction(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "LOT-20260112-001")
	f.addQuality(t, lot.ID)

	report, err := f.svc.ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	found := findByLot(report.NewDiscrepancies, lot.ID)
	if len(found) != 1 || found[0].MissingInSource != types.MissingProduction {
		t.Fatalf("unexpected discrepancies: %+v", found)
	}
}

func TestValidateAllPendingShipmentIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "LOT-20260112-001")
	f.addProduction(t, lot.ID)

	report, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	found := findByLot(report.NewDiscrepancies, lot.ID)
	if len(found) != 1 || found[0].MissingInSource != types.MissingShipping {
		t.Fatalf("unexpected discrepancies: %+v", found)
	}

	// Pending shipment is informational: the lot itself stays unflagged.
	got, err := f.lotRepo.GetByID(ctx, nil, lot.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DataFlag != types.DataFlagNone {
		t.Fatalf("lot flag = %q, want none", got.DataFlag)
	}
}

func TestValidateAllConflictingShipmentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "LOT-20260112-001")
	f.addProduction(t, lot.ID)
	f.addShipping(t, lot.ID, "Delivered")
	f.addShipping(t, lot.ID, "In Transit")

	report, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	found := findByLot(report.NewDiscrepancies, lot.ID)
	if len(found) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d: %+v", len(found), found)
	}
	if found[0].MissingInSource != types.MissingNone {
		t.Fatalf("missing_in_source = %q, want none", found[0].MissingInSource)
	}
	// Distinct statuses listed sorted so reruns produce the same text.
	if found[0].Description != "inconsistent shipment status: Delivered, In Transit" {
		t.Fatalf("description = %q", found[0].Description)
	}

	got, err := f.lotRepo.GetByID(ctx, nil, lot.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.DataFlag != types.DataFlagInconsistent {
		t.Fatalf("lot flag = %q, want inconsistent", got.DataFlag)
	}
}

func TestValidateAllIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "LOT-20260112-001")
	f.addShipping(t, lot.ID, "Delivered")

	first, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if len(first.NewDiscrepancies) != 1 {
		t.Fatalf("first run: expected 1 new discrepancy, got %d", len(first.NewDiscrepancies))
	}

	second, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll (rerun): %v", err)
	}
	if len(second.NewDiscrepancies) != 0 {
		t.Fatalf("rerun created %d duplicates", len(second.NewDiscrepancies))
	}
	if second.TotalOpen != first.TotalOpen {
		t.Fatalf("rerun changed open count: %d vs %d", second.TotalOpen, first.TotalOpen)
	}
}

func TestValidateAllCleanDataIsValid(t *testing.T) {
	f := newFixture(t)
	lot := f.lot(t, "LOT-20260112-001")
	f.addProduction(t, lot.ID)
	f.addQuality(t, lot.ID)
	f.addShipping(t, lot.ID, "Delivered")

	report, err := f.svc.ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if !report.Valid || len(report.NewDiscrepancies) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
}

func TestResolveDiscrepancy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "LOT-20260112-001")
	f.addShipping(t, lot.ID, "Delivered")

	report, err := f.svc.ValidateAll(ctx)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	d := report.NewDiscrepancies[0]

	if err := f.svc.Resolve(ctx, d.ID, types.ResolutionResolved); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	open, err := f.svc.ListDiscrepancies(ctx, types.ResolutionOpen, 10)
	if err != nil {
		t.Fatalf("ListDiscrepancies: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open discrepancies, got %d", len(open))
	}
	resolved, err := f.svc.ListDiscrepancies(ctx, types.ResolutionResolved, 10)
	if err != nil {
		t.Fatalf("ListDiscrepancies (resolved): %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != d.ID {
		t.Fatalf("unexpected resolved set: %+v", resolved)
	}

	// Unknown ids surface not-found.
	err = f.svc.Resolve(ctx, uuid.New(), types.ResolutionReviewed)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

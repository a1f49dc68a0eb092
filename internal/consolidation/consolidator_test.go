package consolidation

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
	}
	f.svc = NewService(gdb, nop, f.lotRepo, f.prodRepo, f.qualityRepo, f.shipRepo)
	return f
}

func (f *fixture) lot(t *testing.T, canonical string) *types.Lot {
	t.Helper()
	lot, _, err := f.lotRepo.ResolveOrCreate(context.Background(), nil, canonical, false)
	if err != nil {
		t.Fatalf("ResolveOrCreate(%q): %v", canonical, err)
	}
	return lot
}

func (f *fixture) addProduction(t *testing.T, lotID uuid.UUID, line string, day time.Time, qty int, status string) {
	t.Helper()
	ctx := context.Background()
	pl, err := f.lineRepo.GetOrCreate(ctx, nil, line)
	if err != nil {
		t.Fatalf("GetOrCreate line: %v", err)
	}
	_, err = f.prodRepo.Create(ctx, nil, []*types.ProductionRecord{{
		ID:               uuid.New(),
		LotID:            lotID,
		ProductionLineID: pl.ID,
		ProductionDate:   day,
		RecordTimestamp:  day.Add(8 * time.Hour),
		QuantityProduced: qty,
		Status:           status,
	}})
	if err != nil {
		t.Fatalf("Create production record: %v", err)
	}
}

func (f *fixture) addQuality(t *testing.T, lotID uuid.UUID, defect string, day time.Time, count int, status string) {
	t.Helper()
	ctx := context.Background()
	dt, err := f.defectRepo.GetOrCreate(ctx, nil, defect)
	if err != nil {
		t.Fatalf("GetOrCreate defect type: %v", err)
	}
	_, err = f.qualityRepo.Create(ctx, nil, []*types.QualityRecord{{
		ID:               uuid.New(),
		LotID:            lotID,
		InspectionDate:   day,
		DefectTypeID:     dt.ID,
		DefectCount:      count,
		InspectionStatus: status,
	}})
	if err != nil {
		t.Fatalf("Create quality record: %v", err)
	}
}

func (f *fixture) addShipping(t *testing.T, lotID uuid.UUID, status string, day time.Time) {
	t.Helper()
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

func TestBuildConsolidatedView(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	lot := f.lot(t, "LOT-20260112-001")

	f.addProduction(t, lot.ID, "Line 1", day, 500, "completed")
	f.addProduction(t, lot.ID, "Line 1", day, 250, "completed")
	f.addQuality(t, lot.ID, "scratch", day.AddDate(0, 0, 1), 3, "Pass")
	f.addQuality(t, lot.ID, "dent", day.AddDate(0, 0, 1), 7, "Fail")
	f.addShipping(t, lot.ID, "Delivered", day.AddDate(0, 0, 5))

	// Raw spelling resolves to the same view as the canonical form.
	view, err := f.svc.BuildConsolidatedView(context.Background(), "lot 20260112 001")
	if err != nil {
		t.Fatalf("BuildConsolidatedView: %v", err)
	}
	if view.Lot.ID != lot.ID {
		t.Fatalf("resolved wrong lot")
	}
	s := view.Summary
	if s.TotalProductionRecords != 2 || s.TotalQuantityProduced != 750 {
		t.Fatalf("production summary: %+v", s)
	}
	if s.TotalQualityRecords != 2 || s.TotalDefects != 10 || s.PassCount != 1 || s.FailCount != 1 {
		t.Fatalf("quality summary: %+v", s)
	}
	if !s.HasShippingRecord || s.ShipmentStatus != "Delivered" {
		t.Fatalf("shipping summary: %+v", s)
	}
}

func TestBuildConsolidatedViewNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BuildConsolidatedView(context.Background(), "LOT-DOES-NOT-EXIST")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeriveShipmentStatus(t *testing.T) {
	mk := func(statuses ...string) []*types.ShippingRecord {
		records := make([]*types.ShippingRecord, len(statuses))
		for i, s := range statuses {
			records[i] = &types.ShippingRecord{ID: uuid.New(), ShipmentStatus: s}
		}
		return records
	}
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"no records", nil, types.ShipmentNotShipped},
		{"single record", []string{"In Transit"}, "In Transit"},
		{"agreeing records", []string{"Delivered", "Delivered"}, "Delivered"},
		{"disagreeing records", []string{"Delivered", "In Transit"}, types.ShipmentConflicting},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveShipmentStatus(mk(tc.statuses...)); got != tc.want {
				t.Fatalf("DeriveShipmentStatus = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLotIndexResolve(t *testing.T) {
	f := newFixture(t)
	ix := NewLotIndex(logger.NewNop(), f.lotRepo)
	ctx := context.Background()

	id1, created, err := ix.Resolve(ctx, nil, "LOT-20260112-001", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !created {
		t.Fatalf("expected creation on first resolve")
	}
	id2, created, err := ix.Resolve(ctx, nil, "LOT-20260112-001", false)
	if err != nil {
		t.Fatalf("Resolve (repeat): %v", err)
	}
	if created || id2 != id1 {
		t.Fatalf("repeat resolve diverged: %s vs %s (created=%v)", id2, id1, created)
	}

	// A fresh index rebuilt from the table sees the same mapping.
	fresh := NewLotIndex(logger.NewNop(), f.lotRepo)
	if err := fresh.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	got, ok := fresh.Lookup("LOT-20260112-001")
	if !ok || got != id1 {
		t.Fatalf("Lookup after rebuild = %s, %v", got, ok)
	}
	if fresh.Len() != 1 {
		t.Fatalf("Len = %d, want 1", fresh.Len())
	}
}

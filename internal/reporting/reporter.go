package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// LineIssueRow summarizes one production line over the requested range.
type LineIssueRow struct {
	ProductionLine string `json:"production_line"`
	TotalRecords   int    `json:"total_records"`
	IssueCount     int    `json:"issue_count"`
	AffectedLots   int    `json:"affected_lots"`
	TotalQuantity  int    `json:"total_quantity"`
}

// TrendRow is one (bucket, defect type) cell of the defect trend.
type TrendRow struct {
	BucketStart      time.Time `json:"bucket_start"`
	DefectType       string    `json:"defect_type"`
	DefectCount      int       `json:"defect_count"`
	InspectionEvents int       `json:"inspection_events"`
}

// ShipmentStatusView is the per-lot shipment lookup result.
type ShipmentStatusView struct {
	LotNumber      string     `json:"lot_number"`
	ProductionDate *time.Time `json:"production_date,omitempty"`
	ProductionLine string     `json:"production_line,omitempty"`
	ShipmentStatus string     `json:"shipment_status"`
	ShipmentDate   *time.Time `json:"shipment_date,omitempty"`
	CarrierInfo    string     `json:"carrier_info,omitempty"`
	Destination    string     `json:"destination,omitempty"`
	HasRecord      bool       `json:"has_record"`
	DataFlag       string     `json:"data_flag"`
}

// ShipmentSummary is the fleet-wide status breakdown.
type ShipmentSummary struct {
	StatusCounts   []repos.ShipmentStatusCount `json:"status_counts"`
	NotShippedLots int                         `json:"not_shipped_lots"`
}

// Service is the read-only aggregation layer. Every query is recomputed
// fresh per call; nothing is cached incrementally.
type Service interface {
	LineIssues(ctx context.Context, from, to time.Time) ([]LineIssueRow, error)
	DefectTrends(ctx context.Context, from, to time.Time, g Granularity) ([]TrendRow, error)
	DefectSummary(ctx context.Context) ([]repos.DefectTypeTotal, error)
	ShipmentStatus(ctx context.Context, lotID string) (*ShipmentStatusView, error)
	ShipmentSummary(ctx context.Context) (*ShipmentSummary, error)
}

type service struct {
	db           *gorm.DB
	log          *logger.Logger
	index        *consolidation.LotIndex
	lotRepo      repos.LotRepo
	prodRepo     repos.ProductionRecordRepo
	qualityRepo  repos.QualityRecordRepo
	shippingRepo repos.ShippingRecordRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	index *consolidation.LotIndex,
	lotRepo repos.LotRepo,
	prodRepo repos.ProductionRecordRepo,
	qualityRepo repos.QualityRecordRepo,
	shippingRepo repos.ShippingRecordRepo,
) Service {
	serviceLog := baseLog.With("service", "ReportingService")
	return &service{
		db:           db,
		log:          serviceLog,
		index:        index,
		lotRepo:      lotRepo,
		prodRepo:     prodRepo,
		qualityRepo:  qualityRepo,
		shippingRepo: shippingRepo,
	}
}

// LineIssues groups production records over [from, to) by line. Sorted by
// issue count descending, ties broken by line name ascending.
func (s *service) LineIssues(ctx context.Context, from, to time.Time) ([]LineIssueRow, error) {
	records, err := s.prodRepo.ListByDateRange(ctx, nil, from, to)
	if err != nil {
		return nil, fmt.Errorf("load production records: %w", err)
	}

	type acc struct {
		row  LineIssueRow
		lots map[uuid.UUID]bool
	}
	byLine := make(map[string]*acc)
	for _, rec := range records {
		name := "Unknown"
		if rec.ProductionLine != nil {
			name = rec.ProductionLine.Name
		}
		a := byLine[name]
		if a == nil {
			a = &acc{row: LineIssueRow{ProductionLine: name}, lots: make(map[uuid.UUID]bool)}
			byLine[name] = a
		}
		a.row.TotalRecords++
		a.row.TotalQuantity += rec.QuantityProduced
		a.lots[rec.LotID] = true
		if rec.IssueDescription != "" {
			a.row.IssueCount++
		}
	}

	rows := make([]LineIssueRow, 0, len(byLine))
	for _, a := range byLine {
		a.row.AffectedLots = len(a.lots)
		rows = append(rows, a.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].IssueCount != rows[j].IssueCount {
			return rows[i].IssueCount > rows[j].IssueCount
		}
		return rows[i].ProductionLine < rows[j].ProductionLine
	})
	return rows, nil
}

// DefectTrends buckets quality records over [from, to). Rows are ordered
// by bucket start ascending, then defect type ascending.
func (s *service) DefectTrends(ctx context.Context, from, to time.Time, g Granularity) ([]TrendRow, error) {
	records, err := s.qualityRepo.ListByDateRange(ctx, nil, from, to)
	if err != nil {
		return nil, fmt.Errorf("load quality records: %w", err)
	}

	type key struct {
		bucket     time.Time
		defectType string
	}
	cells := make(map[key]*TrendRow)
	for _, rec := range records {
		name := "Unknown"
		if rec.DefectType != nil {
			name = rec.DefectType.Name
		}
		k := key{bucket: BucketStart(g, rec.InspectionDate), defectType: name}
		cell := cells[k]
		if cell == nil {
			cell = &TrendRow{BucketStart: k.bucket, DefectType: k.defectType}
			cells[k] = cell
		}
		cell.DefectCount += rec.DefectCount
		cell.InspectionEvents++
	}

	rows := make([]TrendRow, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, *cell)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].BucketStart.Equal(rows[j].BucketStart) {
			return rows[i].BucketStart.Before(rows[j].BucketStart)
		}
		return rows[i].DefectType < rows[j].DefectType
	})
	return rows, nil
}

func (s *service) DefectSummary(ctx context.Context) ([]repos.DefectTypeTotal, error) {
	return s.qualityRepo.TotalsByDefectType(ctx, nil)
}

// ShipmentStatus looks up one lot by raw or canonical identifier. The lot
// index makes the lookup O(1) amortized; a miss falls through to the table
// in case the index is stale.
func (s *service) ShipmentStatus(ctx context.Context, lotID string) (*ShipmentStatusView, error) {
	canonical, err := normalization.Normalize(lotID)
	if err != nil {
		return nil, err
	}

	var lot *types.Lot
	if id, ok := s.index.Lookup(canonical); ok {
		lot, err = s.lotRepo.GetByID(ctx, nil, id)
	} else {
		lot, err = s.lotRepo.GetByCanonicalID(ctx, nil, canonical)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lot %q: %w", canonical, types.ErrNotFound)
		}
		return nil, fmt.Errorf("load lot %q: %w", canonical, err)
	}

	shipping, err := s.shippingRepo.ListByLotID(ctx, nil, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("load shipping records: %w", err)
	}

	view := &ShipmentStatusView{
		LotNumber:      lot.CanonicalID,
		ProductionDate: lot.ProductionDate,
		ShipmentStatus: consolidation.DeriveShipmentStatus(shipping),
		HasRecord:      len(shipping) > 0,
		DataFlag:       string(lot.DataFlag),
	}
	if lot.ProductionLine != nil {
		view.ProductionLine = lot.ProductionLine.Name
	}
	if len(shipping) == 1 {
		view.ShipmentDate = shipping[0].ShipmentDate
		view.CarrierInfo = shipping[0].CarrierInfo
		view.Destination = shipping[0].Destination
	}
	return view, nil
}

func (s *service) ShipmentSummary(ctx context.Context) (*ShipmentSummary, error) {
	counts, err := s.shippingRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count shipment statuses: %w", err)
	}
	lots, err := s.lotRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}
	shipped, err := s.shippingRepo.DistinctLotIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load shipped lot ids: %w", err)
	}
	return &ShipmentSummary{
		StatusCounts:   counts,
		NotShippedLots: len(lots) - len(shipped),
	}, nil
}

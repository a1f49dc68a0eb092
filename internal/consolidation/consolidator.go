package consolidation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// Summary is the derived roll-up for one consolidated lot.
type Summary struct {
	TotalProductionRecords int    `json:"total_production_records"`
	TotalQualityRecords    int    `json:"total_quality_records"`
	TotalDefects           int    `json:"total_defects"`
	TotalQuantityProduced  int    `json:"total_quantity_produced"`
	PassCount              int    `json:"pass_count"`
	FailCount              int    `json:"fail_count"`
	HasShippingRecord      bool   `json:"has_shipping_record"`
	ShipmentStatus         string `json:"shipment_status"`
}

// ConsolidatedLot is the read-only unified view of everything attached to
// one canonical lot.
type ConsolidatedLot struct {
	Lot               *types.Lot                `json:"lot"`
	ProductionRecords []*types.ProductionRecord `json:"production_records"`
	QualityRecords    []*types.QualityRecord    `json:"quality_records"`
	ShippingRecords   []*types.ShippingRecord   `json:"shipping_records"`
	Summary           Summary                   `json:"summary"`
}

type Service interface {
	// BuildConsolidatedView accepts a raw or canonical identifier, performs
	// no writes, and runs in time proportional to the records of that one
	// lot.
	BuildConsolidatedView(ctx context.Context, lotID string) (*ConsolidatedLot, error)
}

type service struct {
	db           *gorm.DB
	log          *logger.Logger
	lotRepo      repos.LotRepo
	prodRepo     repos.ProductionRecordRepo
	qualityRepo  repos.QualityRecordRepo
	shippingRepo repos.ShippingRecordRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lotRepo repos.LotRepo,
	prodRepo repos.ProductionRecordRepo,
	qualityRepo repos.QualityRecordRepo,
	shippingRepo repos.ShippingRecordRepo,
) Service {
	serviceLog := baseLog.With("service", "ConsolidationService")
	return &service{
		db:           db,
		log:          serviceLog,
		lotRepo:      lotRepo,
		prodRepo:     prodRepo,
		qualityRepo:  qualityRepo,
		shippingRepo: shippingRepo,
	}
}

func (s *service) BuildConsolidatedView(ctx context.Context, lotID string) (*ConsolidatedLot, error) {
	canonical, err := normalization.Normalize(lotID)
	if err != nil {
		return nil, err
	}

	lot, err := s.lotRepo.GetByCanonicalID(ctx, nil, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lot %q: %w", canonical, types.ErrNotFound)
		}
		return nil, fmt.Errorf("load lot %q: %w", canonical, err)
	}

	prod, err := s.prodRepo.ListByLotID(ctx, nil, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("load production records: %w", err)
	}
	quality, err := s.qualityRepo.ListByLotID(ctx, nil, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("load quality records: %w", err)
	}
	shipping, err := s.shippingRepo.ListByLotID(ctx, nil, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("load shipping records: %w", err)
	}

	view := &ConsolidatedLot{
		Lot:               lot,
		ProductionRecords: prod,
		QualityRecords:    quality,
		ShippingRecords:   shipping,
	}
	view.Summary = summarize(view)
	return view, nil
}

func summarize(view *ConsolidatedLot) Summary {
	s := Summary{
		TotalProductionRecords: len(view.ProductionRecords),
		TotalQualityRecords:    len(view.QualityRecords),
		HasShippingRecord:      len(view.ShippingRecords) > 0,
		ShipmentStatus:         DeriveShipmentStatus(view.ShippingRecords),
	}
	for _, pr := range view.ProductionRecords {
		s.TotalQuantityProduced += pr.QuantityProduced
	}
	for _, qr := range view.QualityRecords {
		s.TotalDefects += qr.DefectCount
		switch qr.InspectionStatus {
		case "Pass":
			s.PassCount++
		case "Fail":
			s.FailCount++
		}
	}
	return s
}

// DeriveShipmentStatus reduces a lot's shipping records to one status:
// "not shipped" when there are none, the single status when they all
// agree, "conflicting" when more than one record disagrees.
func DeriveShipmentStatus(records []*types.ShippingRecord) string {
	if len(records) == 0 {
		return types.ShipmentNotShipped
	}
	status := records[0].ShipmentStatus
	for _, rec := range records[1:] {
		if rec.ShipmentStatus != status {
			return types.ShipmentConflicting
		}
	}
	return status
}

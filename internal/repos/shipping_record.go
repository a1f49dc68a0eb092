package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// ShipmentStatusCount is one row of the shipment status breakdown.
type ShipmentStatusCount struct {
	ShipmentStatus string `json:"shipment_status"`
	LotCount       int    `json:"lot_count"`
}

type ShippingRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.ShippingRecord) ([]*types.ShippingRecord, error)
	ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.ShippingRecord, error)
	// ListAll is the validator's full scan input: every shipping record,
	// lot_id and status only.
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ShippingRecord, error)
	DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) ([]ShipmentStatusCount, error)
}

type shippingRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShippingRecordRepo(db *gorm.DB, baseLog *logger.Logger) ShippingRecordRepo {
	repoLog := baseLog.With("repo", "ShippingRecordRepo")
	return &shippingRecordRepo{db: db, log: repoLog}
}

func (r *shippingRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.ShippingRecord) ([]*types.ShippingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.ShippingRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *shippingRecordRepo) ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.ShippingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ShippingRecord
	if err := transaction.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shippingRecordRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ShippingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ShippingRecord
	if err := transaction.WithContext(ctx).
		Select("id", "lot_id", "shipment_status").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shippingRecordRepo) DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.ShippingRecord{}).
		Distinct("lot_id").
		Pluck("lot_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *shippingRecordRepo) CountByStatus(ctx context.Context, tx *gorm.DB) ([]ShipmentStatusCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var counts []ShipmentStatusCount
	if err := transaction.WithContext(ctx).
		Model(&types.ShippingRecord{}).
		Select("shipment_status, COUNT(DISTINCT lot_id) AS lot_count").
		Group("shipment_status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

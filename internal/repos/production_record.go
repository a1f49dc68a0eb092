package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type ProductionRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.ProductionRecord) ([]*types.ProductionRecord, error)
	ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.ProductionRecord, error)
	// ListByDateRange covers the half-open interval [from, to) on
	// production_date.
	ListByDateRange(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*types.ProductionRecord, error)
	DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
}

type productionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductionRecordRepo(db *gorm.DB, baseLog *logger.Logger) ProductionRecordRepo {
	repoLog := baseLog.With("repo", "ProductionRecordRepo")
	return &productionRecordRepo{db: db, log: repoLog}
}

func (r *productionRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.ProductionRecord) ([]*types.ProductionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.ProductionRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *productionRecordRepo) ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.ProductionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProductionRecord
	if err := transaction.WithContext(ctx).
		Preload("ProductionLine").
		Where("lot_id = ?", lotID).
		Order("record_timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productionRecordRepo) ListByDateRange(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*types.ProductionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProductionRecord
	if err := transaction.WithContext(ctx).
		Preload("ProductionLine").
		Where("production_date >= ? AND production_date < ?", from, to).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productionRecordRepo) DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.ProductionRecord{}).
		Distinct("lot_id").
		Pluck("lot_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// DefectTypeTotal is the per-type aggregate behind the defect summary.
type DefectTypeTotal struct {
	DefectType   string `json:"defect_type"`
	TotalDefects int    `json:"total_defects"`
	AffectedLots int    `json:"affected_lots"`
}

type QualityRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.QualityRecord) ([]*types.QualityRecord, error)
	ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.QualityRecord, error)
	// ListByDateRange covers the half-open interval [from, to) on
	// inspection_date.
	ListByDateRange(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*types.QualityRecord, error)
	DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	TotalsByDefectType(ctx context.Context, tx *gorm.DB) ([]DefectTypeTotal, error)
}

type qualityRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQualityRecordRepo(db *gorm.DB, baseLog *logger.Logger) QualityRecordRepo {
	repoLog := baseLog.With("repo", "QualityRecordRepo")
	return &qualityRecordRepo{db: db, log: repoLog}
}

func (r *qualityRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.QualityRecord) ([]*types.QualityRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.QualityRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *qualityRecordRepo) ListByLotID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) ([]*types.QualityRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QualityRecord
	if err := transaction.WithContext(ctx).
		Preload("DefectType").
		Where("lot_id = ?", lotID).
		Order("inspection_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *qualityRecordRepo) ListByDateRange(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*types.QualityRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QualityRecord
	if err := transaction.WithContext(ctx).
		Preload("DefectType").
		Where("inspection_date >= ? AND inspection_date < ?", from, to).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *qualityRecordRepo) DistinctLotIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QualityRecord{}).
		Distinct("lot_id").
		Pluck("lot_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *qualityRecordRepo) TotalsByDefectType(ctx context.Context, tx *gorm.DB) ([]DefectTypeTotal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var totals []DefectTypeTotal
	if err := transaction.WithContext(ctx).
		Table("quality_record qr").
		Select("dt.name AS defect_type, COALESCE(SUM(qr.defect_count), 0) AS total_defects, COUNT(DISTINCT qr.lot_id) AS affected_lots").
		Joins("JOIN defect_type dt ON dt.id = qr.defect_type_id").
		Group("dt.name").
		Order("total_defects DESC").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

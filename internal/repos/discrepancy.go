package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type DiscrepancyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, discrepancies []*types.Discrepancy) ([]*types.Discrepancy, error)
	ListOpen(ctx context.Context, tx *gorm.DB) ([]*types.Discrepancy, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status types.ResolutionStatus, limit int) ([]*types.Discrepancy, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.ResolutionStatus) error
}

type discrepancyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscrepancyRepo(db *gorm.DB, baseLog *logger.Logger) DiscrepancyRepo {
	repoLog := baseLog.With("repo", "DiscrepancyRepo")
	return &discrepancyRepo{db: db, log: repoLog}
}

func (r *discrepancyRepo) Create(ctx context.Context, tx *gorm.DB, discrepancies []*types.Discrepancy) ([]*types.Discrepancy, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(discrepancies) == 0 {
		return []*types.Discrepancy{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&discrepancies).Error; err != nil {
		return nil, err
	}
	return discrepancies, nil
}

func (r *discrepancyRepo) ListOpen(ctx context.Context, tx *gorm.DB) ([]*types.Discrepancy, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Discrepancy
	if err := transaction.WithContext(ctx).
		Where("resolution_status = ?", types.ResolutionOpen).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *discrepancyRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status types.ResolutionStatus, limit int) ([]*types.Discrepancy, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Preload("Lot").
		Where("resolution_status = ?", status).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Discrepancy
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *discrepancyRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.ResolutionStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Discrepancy{}).
		Where("id = ?", id).
		Update("resolution_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
